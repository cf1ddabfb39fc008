package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func entry(id uint64, tier model.Tier, arrivedOffset time.Duration) model.QueueEntry {
	return model.QueueEntry{
		ID:        id,
		Status:    model.StatusWaiting,
		Tier:      tier,
		ArrivedAt: t0.Add(arrivedOffset),
	}
}

func TestOrderFIFOIgnoresTier(t *testing.T) {
	// B is VIP but arrived later; with priority disabled arrival wins.
	a := entry(1, model.TierNormal, 0)
	b := entry(2, model.TierVIP, time.Second)

	ranked := Order([]model.QueueEntry{b, a}, false)
	require.Len(t, ranked, 2)
	assert.Equal(t, uint64(1), ranked[0].Entry.ID)
	assert.Equal(t, 1, ranked[0].Position)
	assert.Equal(t, uint64(2), ranked[1].Entry.ID)
	assert.Equal(t, 2, ranked[1].Position)
}

func TestOrderPriorityVIPJumpsAhead(t *testing.T) {
	a := entry(1, model.TierNormal, 0)
	b := entry(2, model.TierVIP, time.Second)

	ranked := Order([]model.QueueEntry{a, b}, true)
	assert.Equal(t, uint64(2), ranked[0].Entry.ID, "VIP arriving later ranks first")
	assert.Equal(t, uint64(1), ranked[1].Entry.ID)
	assert.Equal(t, 2, ranked[1].Position)
}

func TestOrderPriorityTierThenArrival(t *testing.T) {
	entries := []model.QueueEntry{
		entry(1, model.TierSilver, 3*time.Minute),
		entry(2, model.TierGold, 5*time.Minute),
		entry(3, model.TierSilver, time.Minute),
		entry(4, model.TierNormal, 0),
		entry(5, model.TierGold, 7*time.Minute),
	}
	ranked := Order(entries, true)

	got := make([]uint64, len(ranked))
	for i, r := range ranked {
		got[i] = r.Entry.ID
	}
	assert.Equal(t, []uint64{2, 5, 3, 1, 4}, got)
}

func TestOrderIdenticalArrivalsAreStrict(t *testing.T) {
	// Same tier, same timestamp: creation sequence (ID) decides.
	entries := []model.QueueEntry{
		entry(9, model.TierNormal, 0),
		entry(3, model.TierNormal, 0),
		entry(6, model.TierNormal, 0),
	}
	for _, priority := range []bool{false, true} {
		ranked := Order(entries, priority)
		assert.Equal(t, uint64(3), ranked[0].Entry.ID)
		assert.Equal(t, uint64(6), ranked[1].Entry.ID)
		assert.Equal(t, uint64(9), ranked[2].Entry.ID)
	}
}

func TestPositionsDenseAndUnique(t *testing.T) {
	entries := []model.QueueEntry{
		entry(1, model.TierVIP, 0),
		entry(2, model.TierVIP, 0),
		entry(3, model.TierGold, time.Minute),
		entry(4, model.TierNormal, time.Minute),
	}
	ranked := Order(entries, true)
	seen := map[int]bool{}
	for i, r := range ranked {
		assert.Equal(t, i+1, r.Position)
		assert.False(t, seen[r.Position])
		seen[r.Position] = true
	}
}

// The closed-form Rank must agree with the explicit sort for every entry,
// in both ordering modes, including tie-heavy sets.
func TestRankAgreesWithSort(t *testing.T) {
	sets := [][]model.QueueEntry{
		{},
		{entry(1, model.TierNormal, 0)},
		{
			entry(1, model.TierNormal, 0),
			entry(2, model.TierVIP, time.Second),
			entry(3, model.TierBronze, time.Second),
			entry(4, model.TierGold, 2*time.Minute),
			entry(5, model.TierVIP, 3*time.Minute),
		},
		{
			// identical timestamps inside and across tiers
			entry(1, model.TierSilver, 0),
			entry(2, model.TierSilver, 0),
			entry(3, model.TierSilver, time.Minute),
			entry(4, model.TierGold, 0),
			entry(5, model.TierNormal, 0),
			entry(6, model.TierGold, 0),
		},
	}
	for _, entries := range sets {
		for _, priority := range []bool{false, true} {
			ranked := Order(entries, priority)
			for _, r := range ranked {
				assert.Equal(t, r.Position, Rank(entries, r.Entry, priority),
					"entry %d priority=%v", r.Entry.ID, priority)
			}
		}
	}
}

// Scenario from the acceptance notes: A arrives at T0 as NORMAL, B one
// second later as VIP. Priority off: A=1, B=2. Priority on: B=1, A=2.
func TestScenarioPriorityToggle(t *testing.T) {
	a := entry(1, model.TierNormal, 0)
	b := entry(2, model.TierVIP, time.Second)
	set := []model.QueueEntry{a, b}

	assert.Equal(t, 1, Rank(set, a, false))
	assert.Equal(t, 2, Rank(set, b, false))
	assert.Equal(t, 2, Rank(set, a, true))
	assert.Equal(t, 1, Rank(set, b, true))
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	entries := []model.QueueEntry{
		entry(2, model.TierNormal, time.Minute),
		entry(1, model.TierVIP, 0),
	}
	Order(entries, true)
	assert.Equal(t, uint64(2), entries[0].ID, "input slice order preserved")
	assert.Equal(t, 0, entries[0].Position, "positions not written back")
}
