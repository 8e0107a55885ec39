package lock

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_ExclusiveUntilReleased(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker(clockwork.NewFakeClock())

	lease, err := locker.Acquire(ctx, "org-1", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "org-1", time.Minute)
	require.ErrorIs(t, err, ErrLocked)

	other, err := locker.Acquire(ctx, "org-2", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx))

	_, err = locker.Acquire(ctx, "org-1", time.Minute)
	assert.NoError(t, err)
}

func TestMemoryLocker_ExpiredLease(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	locker := NewMemoryLocker(clock)

	stale, err := locker.Acquire(ctx, "org-1", time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	fresh, err := locker.Acquire(ctx, "org-1", time.Minute)
	require.NoError(t, err)

	// The stale holder must not release the new lease.
	require.NoError(t, stale.Release(ctx))

	_, err = locker.Acquire(ctx, "org-1", time.Minute)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, fresh.Release(ctx))
}
