package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

func newTestGuard(threshold, retries int) *Guard {
	return NewGuard("test-dep", threshold, 30*time.Second, retries, time.Second, zap.NewNop())
}

func TestGuardSuccess(t *testing.T) {
	g := newTestGuard(5, 1)

	calls := 0
	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, g.Open())
}

func TestGuardRetriesThenSucceeds(t *testing.T) {
	g := newTestGuard(5, 2)

	calls := 0
	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGuardRetriesExhausted(t *testing.T) {
	g := newTestGuard(10, 1)

	calls := 0
	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errBoom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 2, calls) // initial attempt plus one retry
}

// TestGuardOpensAfterThreshold verifies the breaker trips after the
// configured number of consecutive failures and then fails fast without
// touching the dependency at all.
func TestGuardOpensAfterThreshold(t *testing.T) {
	g := NewGuard("test-dep", 5, 30*time.Second, 0, time.Second, zap.NewNop())
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	g.SetClock(func() time.Time { return base })

	calls := 0
	fail := func(ctx context.Context) error {
		calls++
		return errBoom
	}

	for i := 0; i < 5; i++ {
		err := g.Do(context.Background(), fail)
		require.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, 5, calls)
	assert.True(t, g.Open())

	// While open, calls are rejected without invoking the function.
	err := g.Do(context.Background(), fail)
	require.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 5, calls)
}

func TestGuardCooldownExpiry(t *testing.T) {
	g := NewGuard("test-dep", 2, 30*time.Second, 0, time.Second, zap.NewNop())
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	now := base
	g.SetClock(func() time.Time { return now })

	fail := func(ctx context.Context) error { return errBoom }
	require.Error(t, g.Do(context.Background(), fail))
	require.Error(t, g.Do(context.Background(), fail))
	require.True(t, g.Open())

	now = base.Add(29 * time.Second)
	assert.True(t, g.Open())

	// Past the cool-down the breaker admits trial calls again.
	now = base.Add(31 * time.Second)
	assert.False(t, g.Open())

	calls := 0
	err := g.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, g.Open())
}

func TestGuardSuccessResetsFailureCount(t *testing.T) {
	g := NewGuard("test-dep", 3, 30*time.Second, 0, time.Second, zap.NewNop())

	fail := func(ctx context.Context) error { return errBoom }
	ok := func(ctx context.Context) error { return nil }

	require.Error(t, g.Do(context.Background(), fail))
	require.Error(t, g.Do(context.Background(), fail))
	require.NoError(t, g.Do(context.Background(), ok))

	// The streak restarted, so two more failures stay under the threshold.
	require.Error(t, g.Do(context.Background(), fail))
	require.Error(t, g.Do(context.Background(), fail))
	assert.False(t, g.Open())
}

func TestGuardCallerCancellationNotRetried(t *testing.T) {
	g := newTestGuard(10, 5)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := g.Do(ctx, func(c context.Context) error {
		calls++
		cancel()
		return errBoom
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestGuardAttemptTimeout(t *testing.T) {
	g := NewGuard("test-dep", 10, 30*time.Second, 0, 20*time.Millisecond, zap.NewNop())

	err := g.Do(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
