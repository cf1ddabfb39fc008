package queue

import (
	"sort"

	"github.com/iliyamo/barbershop-queue/internal/model"
)

// Ranked pairs a queue entry with its computed 1-based position.
type Ranked struct {
	Entry    model.QueueEntry
	Position int
}

// before reports whether a must be served before b. With priority
// queueing enabled the primary key is tier descending and the secondary
// key arrival time ascending; otherwise order is pure FIFO by arrival.
// The entry ID, assigned monotonically at creation, breaks arrival-time
// ties in both modes so the order is always strict.
func before(a, b *model.QueueEntry, priorityEnabled bool) bool {
	if priorityEnabled && a.Tier != b.Tier {
		return a.Tier > b.Tier
	}
	if !a.ArrivedAt.Equal(b.ArrivedAt) {
		return a.ArrivedAt.Before(b.ArrivedAt)
	}
	return a.ID < b.ID
}

// Order computes the strict total order of a location's WAITING set and
// assigns dense 1-based positions. It is a pure function of the snapshot:
// the input slice is not modified and nothing is persisted; the caller
// decides whether to store the positions. Order must be recomputed
// whenever the WAITING set changes (check-in, cancel, start, finish,
// no-show); querying it has no side effects.
func Order(entries []model.QueueEntry, priorityEnabled bool) []Ranked {
	ranked := make([]Ranked, len(entries))
	for i, e := range entries {
		ranked[i] = Ranked{Entry: e}
	}
	sort.Slice(ranked, func(i, j int) bool {
		return before(&ranked[i].Entry, &ranked[j].Entry, priorityEnabled)
	})
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

// Rank returns the closed-form 1-based position of target within the
// WAITING set: one plus the number of entries ranked strictly ahead of
// it. With priority enabled that is every entry of a strictly higher
// tier, plus same-tier entries with a strictly earlier arrival, plus
// same-tier same-instant entries with a lower ID. Rank always agrees
// with the position Order assigns to the same entry.
func Rank(entries []model.QueueEntry, target model.QueueEntry, priorityEnabled bool) int {
	pos := 1
	for i := range entries {
		e := &entries[i]
		if e.ID == target.ID {
			continue
		}
		if before(e, &target, priorityEnabled) {
			pos++
		}
	}
	return pos
}
