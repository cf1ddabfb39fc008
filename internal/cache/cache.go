// Package cache provides the key/value store contract used to memoize
// per-location queue aggregates (wait estimate, open flag), plus a Redis
// implementation and an in-memory fallback. Correctness never depends on
// the cache hitting: a cold or broken cache only makes reads slower.
package cache

import (
	"context"
	"time"
)

// Store is the minimal TTL key/value contract the aggregates layer
// needs. Get reports a miss with ok=false; an expired key is a miss.
// Implementations return errors for backend faults only; callers are
// expected to fail open and recompute.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
