package cache

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"
)

// Default TTLs for the two memoized aggregates. The wait estimate goes
// stale with every queue mutation, so it lives briefly; the open flag
// only changes at window boundaries or on a settings update.
const (
	DefaultWaitTTL  = 30 * time.Second
	DefaultHoursTTL = 5 * time.Minute
)

// Aggregates memoizes per-location derived values behind a Store.
// Every method fails open: a backend fault is logged and reported as a
// miss (or ignored on write), never surfaced to the caller. The system
// must produce identical results with the cache absent entirely.
type Aggregates struct {
	store    Store
	waitTTL  time.Duration
	hoursTTL time.Duration
}

// NewAggregates builds the wrapper. Non-positive TTLs fall back to the
// defaults.
func NewAggregates(store Store, waitTTL, hoursTTL time.Duration) *Aggregates {
	if waitTTL <= 0 {
		waitTTL = DefaultWaitTTL
	}
	if hoursTTL <= 0 {
		hoursTTL = DefaultHoursTTL
	}
	return &Aggregates{store: store, waitTTL: waitTTL, hoursTTL: hoursTTL}
}

func waitKey(locationID uint64) string  { return fmt.Sprintf("wait:%d", locationID) }
func hoursKey(locationID uint64) string { return fmt.Sprintf("open:%d", locationID) }

// WaitMinutes returns the cached wait estimate for the location.
func (a *Aggregates) WaitMinutes(ctx context.Context, locationID uint64) (int, bool) {
	v, ok, err := a.store.Get(ctx, waitKey(locationID))
	if err != nil {
		log.Printf("cache: get %s failed: %v", waitKey(locationID), err)
		return 0, false
	}
	if !ok {
		return 0, false
	}
	n, convErr := strconv.Atoi(v)
	if convErr != nil {
		return 0, false
	}
	return n, true
}

// StoreWaitMinutes caches a freshly computed wait estimate.
func (a *Aggregates) StoreWaitMinutes(ctx context.Context, locationID uint64, minutes int) {
	if err := a.store.Set(ctx, waitKey(locationID), strconv.Itoa(minutes), a.waitTTL); err != nil {
		log.Printf("cache: set %s failed: %v", waitKey(locationID), err)
	}
}

// Open returns the cached open/closed flag for the location.
func (a *Aggregates) Open(ctx context.Context, locationID uint64) (bool, bool) {
	v, ok, err := a.store.Get(ctx, hoursKey(locationID))
	if err != nil {
		log.Printf("cache: get %s failed: %v", hoursKey(locationID), err)
		return false, false
	}
	if !ok {
		return false, false
	}
	return v == "1", true
}

// StoreOpen caches a freshly computed open/closed flag.
func (a *Aggregates) StoreOpen(ctx context.Context, locationID uint64, open bool) {
	v := "0"
	if open {
		v = "1"
	}
	if err := a.store.Set(ctx, hoursKey(locationID), v, a.hoursTTL); err != nil {
		log.Printf("cache: set %s failed: %v", hoursKey(locationID), err)
	}
}

// InvalidateLocation drops both aggregates for the location. Mutation
// paths call this strictly after their transaction commits, so a reader
// can never re-cache a value computed from data that was about to
// change.
func (a *Aggregates) InvalidateLocation(ctx context.Context, locationID uint64) {
	for _, key := range []string{waitKey(locationID), hoursKey(locationID)} {
		if err := a.store.Invalidate(ctx, key); err != nil {
			log.Printf("cache: invalidate %s failed: %v", key, err)
		}
	}
}

// Clear empties the aggregate namespace (startup, admin reset).
func (a *Aggregates) Clear(ctx context.Context) {
	if err := a.store.Clear(ctx); err != nil {
		log.Printf("cache: clear failed: %v", err)
	}
}
