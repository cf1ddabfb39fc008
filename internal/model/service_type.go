package model

import "time"

// ServiceType is an offering of a location with a fixed duration used by
// the wait-time estimator. Popularity counts completed services.
//
// Fields:
//  ID          – primary key identifier.
//  LocationID  – owning location.
//  Name        – display name (e.g. "Haircut", "Beard trim").
//  DurationMin – fixed duration in minutes.
//  Popularity  – completed-service counter, incremented on finish.
type ServiceType struct {
	ID          uint64    `json:"id"`
	LocationID  uint64    `json:"location_id"`
	Name        string    `json:"name"`
	DurationMin int       `json:"duration_min"`
	Popularity  int       `json:"popularity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
