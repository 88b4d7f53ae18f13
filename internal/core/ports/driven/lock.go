package driven

import (
	"context"
	"time"
)

// DistributedLock coordinates exclusive work across instances. Used to
// keep the single-writer-per-session invariant when multiple replicas
// share a store backend.
type DistributedLock interface {
	// Acquire attempts to acquire a named lock with the given TTL.
	// Returns true if acquired, false if already held elsewhere.
	Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release releases a named lock if held by this instance
	Release(ctx context.Context, name string) error

	// Ping checks if the lock backend is healthy
	Ping(ctx context.Context) error
}
