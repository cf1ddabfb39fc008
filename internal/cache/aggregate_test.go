package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreBasics(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, m.Invalidate(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "k", "v", 10*time.Millisecond))

	_, ok, _ := m.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok, "expired key reads as a miss")
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "a", "1", 0)
	_ = m.Set(ctx, "b", "2", 0)
	require.NoError(t, m.Clear(ctx))
	_, ok, _ := m.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "b")
	assert.False(t, ok)
}

func TestAggregatesRoundTrip(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregates(NewMemory(), time.Minute, time.Minute)

	_, hit := agg.WaitMinutes(ctx, 1)
	assert.False(t, hit)

	agg.StoreWaitMinutes(ctx, 1, 75)
	got, hit := agg.WaitMinutes(ctx, 1)
	assert.True(t, hit)
	assert.Equal(t, 75, got)

	agg.StoreOpen(ctx, 1, true)
	open, hit := agg.Open(ctx, 1)
	assert.True(t, hit)
	assert.True(t, open)

	// other locations are unaffected
	_, hit = agg.WaitMinutes(ctx, 2)
	assert.False(t, hit)
}

func TestAggregatesInvalidateLocation(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregates(NewMemory(), time.Minute, time.Minute)

	agg.StoreWaitMinutes(ctx, 1, 30)
	agg.StoreOpen(ctx, 1, true)
	agg.StoreWaitMinutes(ctx, 2, 45)

	agg.InvalidateLocation(ctx, 1)

	_, hit := agg.WaitMinutes(ctx, 1)
	assert.False(t, hit)
	_, hit = agg.Open(ctx, 1)
	assert.False(t, hit)

	got, hit := agg.WaitMinutes(ctx, 2)
	assert.True(t, hit)
	assert.Equal(t, 45, got, "invalidation is scoped to one location")
}

// faultyStore simulates a broken backend on every call.
type faultyStore struct{}

var errBackend = errors.New("backend down")

func (faultyStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errBackend
}
func (faultyStore) Set(context.Context, string, string, time.Duration) error { return errBackend }
func (faultyStore) Invalidate(context.Context, string) error                 { return errBackend }
func (faultyStore) Clear(context.Context) error                              { return errBackend }

// Backend faults read as misses and writes are swallowed; the caller
// recomputes and never sees an error.
func TestAggregatesFailOpen(t *testing.T) {
	ctx := context.Background()
	agg := NewAggregates(faultyStore{}, time.Minute, time.Minute)

	_, hit := agg.WaitMinutes(ctx, 1)
	assert.False(t, hit)
	_, hit = agg.Open(ctx, 1)
	assert.False(t, hit)

	// none of these may panic or propagate the backend error
	agg.StoreWaitMinutes(ctx, 1, 10)
	agg.StoreOpen(ctx, 1, true)
	agg.InvalidateLocation(ctx, 1)
	agg.Clear(ctx)
}

func TestAggregatesCorruptValueIsMiss(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	agg := NewAggregates(m, time.Minute, time.Minute)

	require.NoError(t, m.Set(ctx, "wait:1", "not-a-number", time.Minute))
	_, hit := agg.WaitMinutes(ctx, 1)
	assert.False(t, hit)
}
