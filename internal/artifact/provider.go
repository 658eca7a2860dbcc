package artifact

import (
	"context"
	"sync"
	"sync/atomic"
)

// Source is the read-only store the router loads snapshots from. The
// active generation is a pointer the offline promotion job swaps; the
// serving side never writes.
type Source interface {
	// ActiveGeneration returns the currently promoted generation id.
	ActiveGeneration(ctx context.Context) (string, error)

	// Load fetches the full snapshot document for a generation.
	Load(ctx context.Context, generation string) (*Snapshot, error)
}

// Provider publishes the active snapshot to request handlers. Readers
// dereference the current pointer without locking and always observe a
// fully-formed generation; the mutex only coordinates concurrent writers
// (startup load and the background refresher).
type Provider struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
}

// NewProvider creates an empty provider. A snapshot must be published
// before the router serves requests.
func NewProvider() *Provider {
	return &Provider{}
}

// Current returns the active snapshot, or nil when none has been published.
func (p *Provider) Current() *Snapshot {
	return p.current.Load()
}

// Publish atomically replaces the active snapshot.
func (p *Provider) Publish(s *Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current.Store(s)
}
