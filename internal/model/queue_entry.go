package model

import "time"

// EntryStatus enumerates the lifecycle states of a queue entry.
// WAITING is the initial state; COMPLETED, CANCELLED and NO_SHOW are
// terminal. Entries are never deleted by the application: a terminal
// status is the final marker and retention is a storage concern.
type EntryStatus string

const (
	StatusWaiting   EntryStatus = "WAITING"
	StatusInService EntryStatus = "IN_SERVICE"
	StatusCompleted EntryStatus = "COMPLETED"
	StatusCancelled EntryStatus = "CANCELLED"
	StatusNoShow    EntryStatus = "NO_SHOW"
)

// entryStatusLabels maps each status to its display name. The table is
// fixed at compile time; unknown values fall back to the raw string.
var entryStatusLabels = map[EntryStatus]string{
	StatusWaiting:   "Waiting",
	StatusInService: "In service",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
	StatusNoShow:    "No-show",
}

// Label returns the human-readable display name for the status.
func (s EntryStatus) Label() string {
	if l, ok := entryStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Terminal reports whether the status permits no further transitions.
func (s EntryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// Tier is the priority classification assigned to an entry when it is
// created. Higher values rank ahead when priority queueing is enabled.
// The tier is a snapshot of the client's loyalty state at check-in and
// never changes afterwards, even if the client's visit count does.
type Tier uint8

const (
	TierNormal Tier = iota
	TierBronze
	TierSilver
	TierGold
	TierVIP
)

var tierLabels = map[Tier]string{
	TierNormal: "Normal",
	TierBronze: "Bronze",
	TierSilver: "Silver",
	TierGold:   "Gold",
	TierVIP:    "VIP",
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	if l, ok := tierLabels[t]; ok {
		return l
	}
	return "Normal"
}

// QueueEntry records one client's place in a location's walk-in queue.
//
// Fields:
//  ID            – primary key; doubles as the creation sequence number
//                  used to break arrival-time ties.
//  LocationID    – queue the entry belongs to.
//  ClientID      – client who checked in.
//  ServiceTypeID – requested service.
//  AgentID       – agent serving the entry (nil until service starts).
//  Status        – lifecycle state, see EntryStatus.
//  Tier          – priority tier snapshot taken at check-in.
//  Position      – derived 1-based rank among WAITING peers. Display
//                  value only; the authoritative rank is recomputed from
//                  the WAITING set on every mutation.
//  ArrivedAt     – check-in timestamp, immutable after creation.
//  StartedAt     – when service began (nullable).
//  FinishedAt    – when the entry reached a terminal state (nullable).
//  Version       – optimistic locking counter guarding concurrent
//                  lifecycle transitions on the same entry.
type QueueEntry struct {
	ID            uint64      `json:"id"`
	LocationID    uint64      `json:"location_id"`
	ClientID      uint64      `json:"client_id"`
	ServiceTypeID uint64      `json:"service_type_id"`
	AgentID       *uint64     `json:"agent_id,omitempty"`
	Status        EntryStatus `json:"status"`
	Tier          Tier        `json:"tier"`
	Position      int         `json:"position"`
	ArrivedAt     time.Time   `json:"arrived_at"`
	StartedAt     *time.Time  `json:"started_at,omitempty"`
	FinishedAt    *time.Time  `json:"finished_at,omitempty"`
	Version       uint32      `json:"-"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}
