// Package sticky holds the per-thread routing context used to short-circuit
// classification for follow-up utterances.
//
// All expiry logic lives behind GetIfFresh: an entry older than the TTL is
// treated as absent regardless of when it is physically deleted, so read
// sites cannot drift on the TTL check.
package sticky

import (
	"context"
	"time"
)

// State is the sticky routing context for one thread.
type State struct {
	Domain    string    `json:"domain"`
	DecidedAt time.Time `json:"decided_at"`
}

// Store is the keyed sticky-state store. Writes race only across concurrent
// turns of the same thread; the newest decision wins by timestamp.
type Store interface {
	// GetIfFresh returns the thread's state if it exists and has not
	// logically expired, otherwise nil.
	GetIfFresh(ctx context.Context, threadID string) (*State, error)

	// Put records a routing decision for the thread, refreshing the TTL.
	// A write older than the stored state is discarded (last write wins
	// by timestamp, not by arrival order).
	Put(ctx context.Context, threadID, domain string, at time.Time) error

	// Invalidate removes the thread's state. Used by the conversation
	// layer when context is explicitly reset.
	Invalidate(ctx context.Context, threadID string) error
}
