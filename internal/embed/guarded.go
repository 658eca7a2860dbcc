package embed

import (
	"context"

	"github.com/templeobijnr/easy-islanders-router/internal/resilience"
)

// Guarded wraps the embedding client in the resilience policy: circuit
// breaker, bounded retry and per-call timeout. Embedding lookups are
// idempotent, so retrying is safe.
type Guarded struct {
	client *Client
	guard  *resilience.Guard
}

// NewGuarded wraps a client with a guard.
func NewGuarded(client *Client, guard *resilience.Guard) *Guarded {
	return &Guarded{
		client: client,
		guard:  guard,
	}
}

// Embed fetches the embedding under the guard. While the breaker is open
// the provider call is skipped entirely and the error is returned
// immediately.
func (g *Guarded) Embed(ctx context.Context, text string) ([]float64, error) {
	var vec []float64
	err := g.guard.Do(ctx, func(ctx context.Context) error {
		v, err := g.client.Embed(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}
