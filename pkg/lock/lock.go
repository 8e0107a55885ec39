// Package lock provides leases used to keep two sweeps from processing the
// same organization at once.
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked indicates the key is leased by someone else.
var ErrLocked = errors.New("lock is held by another owner")

// Lease is a held lock. Release is safe to call more than once.
type Lease interface {
	Release(ctx context.Context) error
}

// Locker hands out expiring leases per key.
type Locker interface {
	// Acquire returns ErrLocked when the key is already leased.
	Acquire(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}
