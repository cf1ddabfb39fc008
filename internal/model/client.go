package model

import "time"

// Client is a walk-in customer. Loyalty tier is always derived from
// VisitCount and IsVIP at the moment of check-in; it is never stored.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – display name.
//  Phone       – contact number, optional.
//  VisitCount  – completed visits; incremented when service finishes.
//  IsVIP       – manually granted VIP flag, overrides visit thresholds.
//  LastVisitAt – timestamp of the most recent completed visit (nullable).
type Client struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	VisitCount  int        `json:"visit_count"`
	IsVIP       bool       `json:"is_vip"`
	LastVisitAt *time.Time `json:"last_visit_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
