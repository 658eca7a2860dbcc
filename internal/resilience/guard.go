// Package resilience wraps external dependencies with a circuit breaker,
// bounded retries and a per-call timeout. A tripped breaker fails fast
// without attempting I/O; callers convert the failure to a degraded signal
// rather than failing the request.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrOpen is returned without attempting the call while the breaker is in
// cool-down.
var ErrOpen = errors.New("circuit breaker open")

const (
	retryBaseDelay = 100 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// Guard protects one external dependency. Retries only wrap idempotent,
// side-effect-free calls; this router uses guards for embedding lookups
// and remote inference only.
type Guard struct {
	name          string
	failThreshold int
	cooldown      time.Duration
	maxRetries    int
	timeout       time.Duration
	logger        *zap.Logger

	now func() time.Time

	mu               sync.Mutex
	consecutiveFails int
	openUntil        time.Time
}

// NewGuard creates a guard. failThreshold consecutive failures open the
// breaker for cooldown; each attempt runs under timeout; failures retry at
// most maxRetries times with exponential backoff and jitter.
func NewGuard(name string, failThreshold int, cooldown time.Duration, maxRetries int, timeout time.Duration, logger *zap.Logger) *Guard {
	return &Guard{
		name:          name,
		failThreshold: failThreshold,
		cooldown:      cooldown,
		maxRetries:    maxRetries,
		timeout:       timeout,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (g *Guard) SetClock(now func() time.Time) {
	g.now = now
}

// Open reports whether the breaker is currently rejecting calls.
func (g *Guard) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.openUntil)
}

// Do runs fn under the guard's policy. While the breaker is open it fails
// fast with ErrOpen. Context cancellation from the caller is never retried.
func (g *Guard) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if g.Open() {
		return fmt.Errorf("%s: %w", g.name, ErrOpen)
	}

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(g.backoff(attempt)):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		err := fn(callCtx)
		cancel()

		if err == nil {
			g.recordSuccess()
			return nil
		}

		lastErr = err
		g.recordFailure()

		// The caller's own deadline or cancellation ends the attempt loop.
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return fmt.Errorf("%s: retries exhausted: %w", g.name, lastErr)
}

func (g *Guard) backoff(attempt int) time.Duration {
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	// Half fixed, half jitter, so synchronized retries spread out.
	half := delay / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func (g *Guard) recordSuccess() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.consecutiveFails = 0
	g.openUntil = time.Time{}
}

func (g *Guard) recordFailure() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.consecutiveFails++
	if g.consecutiveFails >= g.failThreshold {
		g.openUntil = g.now().Add(g.cooldown)
		g.consecutiveFails = 0
		g.logger.Warn("circuit breaker opened",
			zap.String("dependency", g.name),
			zap.Duration("cooldown", g.cooldown),
		)
	}
}
