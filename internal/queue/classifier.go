// Package queue implements the walk-in queue domain engine: priority
// classification, the entry lifecycle state machine, strict queue
// ordering, wait-time estimation and operating-hours validation. Every
// function here is pure and synchronous: it operates on caller-supplied
// snapshots, performs no I/O and never self-synchronizes. Callers own
// persistence, locking and cache invalidation.
package queue

import "github.com/iliyamo/barbershop-queue/internal/model"

// Visit-count thresholds for the loyalty tiers. A manually granted VIP
// flag overrides all of them.
const (
	bronzeVisits = 5
	silverVisits = 10
	goldVisits   = 20
)

// ClassifyTier derives the priority tier from a client's loyalty
// snapshot. It is evaluated exactly once, at check-in; the result is
// stored on the entry and later changes to the client never reorder
// entries that already exist.
func ClassifyTier(visitCount int, isVIP bool) model.Tier {
	switch {
	case isVIP:
		return model.TierVIP
	case visitCount >= goldVisits:
		return model.TierGold
	case visitCount >= silverVisits:
		return model.TierSilver
	case visitCount >= bronzeVisits:
		return model.TierBronze
	default:
		return model.TierNormal
	}
}
