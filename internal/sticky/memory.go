package sticky

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the in-process sticky store: a mutex-guarded map with
// lazy expiry on read.
type MemoryStore struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	entries map[string]State
}

// NewMemoryStore creates an in-process store with the given TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]State),
	}
}

// SetClock overrides the time source. Test hook.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.now = now
}

// GetIfFresh implements Store.
func (s *MemoryStore) GetIfFresh(_ context.Context, threadID string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.entries[threadID]
	if !ok {
		return nil, nil
	}

	// t >= decided_at+ttl is expired; strictly before is valid.
	if !s.now().Before(st.DecidedAt.Add(s.ttl)) {
		delete(s.entries, threadID)
		return nil, nil
	}

	out := st
	return &out, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, threadID, domain string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[threadID]; ok && existing.DecidedAt.After(at) {
		return nil
	}

	s.entries[threadID] = State{
		Domain:    domain,
		DecidedAt: at,
	}
	return nil
}

// Invalidate implements Store.
func (s *MemoryStore) Invalidate(_ context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, threadID)
	return nil
}
