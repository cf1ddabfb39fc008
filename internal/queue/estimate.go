package queue

import "fmt"

// EstimateMinutes predicts the wait in whole minutes given the service
// durations of every entry ranked at or before the target entry
// (including the target's own duration) and the number of active agents.
// Zero active agents is a documented degenerate input, not an error: the
// shop is treated as having one agent rather than an infinite wait.
func EstimateMinutes(durations []int, activeAgents int) int {
	if len(durations) == 0 {
		return 0
	}
	agents := activeAgents
	if agents < 1 {
		agents = 1
	}
	total := 0
	for _, d := range durations {
		total += d
	}
	return total / agents
}

// FormatWait renders an estimate for display. Zero is the "no wait"
// sentinel; under an hour renders as minutes; otherwise hours and
// minutes, collapsing to hours alone (pluralized) when the remainder
// is exactly zero.
func FormatWait(minutes int) string {
	switch {
	case minutes <= 0:
		return "no wait"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return fmt.Sprintf("%dh %dmin", h, m)
}
