package model

import "time"

// AgentStatus enumerates the availability states of an agent (barber).
type AgentStatus string

const (
	AgentAvailable AgentStatus = "AVAILABLE"
	AgentBusy      AgentStatus = "BUSY"
	AgentOnBreak   AgentStatus = "ON_BREAK"
	AgentOffline   AgentStatus = "OFFLINE"
)

// Active reports whether the agent counts toward wait-time capacity.
// Available and busy agents are working the queue; agents on break or
// offline are not.
func (s AgentStatus) Active() bool {
	return s == AgentAvailable || s == AgentBusy
}

// ValidAgentStatus reports whether the string names a known status.
func ValidAgentStatus(s string) bool {
	switch AgentStatus(s) {
	case AgentAvailable, AgentBusy, AgentOnBreak, AgentOffline:
		return true
	}
	return false
}

// Agent is a barber working at a location.
//
// Fields:
//  ID         – primary key identifier.
//  LocationID – location the agent works at.
//  Name       – display name.
//  Status     – availability state, see AgentStatus.
type Agent struct {
	ID         uint64      `json:"id"`
	LocationID uint64      `json:"location_id"`
	Name       string      `json:"name"`
	Status     AgentStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}
