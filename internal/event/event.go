// Package event defines message payloads exchanged over the message
// broker. Delivery is best-effort by contract: the queue engine only
// decides that a notification is due, and a failed publish must never
// fail the mutation that triggered it.
package event

// Queue names on the broker.
const (
	QueueChangedName = "queue.changed"
	EntryStatusName  = "queue.entry_status"
)

// QueueChanged is published after any mutation of a location's WAITING
// set (check-in, cancel, start, finish, no-show, settings change). It
// carries enough for display boards and websocket fan-out to refresh
// without querying the primary database.
type QueueChanged struct {
	EventID         string `json:"event_id"`
	LocationID      uint64 `json:"location_id"`
	WaitingCount    int    `json:"waiting_count"`
	EstimatedWait   int    `json:"estimated_wait_min"`
	ActiveAgents    int    `json:"active_agents"`
	PriorityEnabled bool   `json:"priority_enabled"`
	OccurredAt      string `json:"occurred_at"`
}

// EntryStatusChanged is published after a successful lifecycle
// transition on a single entry.
type EntryStatusChanged struct {
	EventID    string  `json:"event_id"`
	EntryID    uint64  `json:"entry_id"`
	LocationID uint64  `json:"location_id"`
	ClientID   uint64  `json:"client_id"`
	AgentID    *uint64 `json:"agent_id,omitempty"`
	Status     string  `json:"status"`
	Position   int     `json:"position,omitempty"`
	OccurredAt string  `json:"occurred_at"`
}
