package model

import "time"

// Location is a single barbershop accepting walk-in clients. Operating
// hours are stored as minutes since local midnight and a weekday bitmask
// so the hours check needs no string parsing at request time.
//
// Fields:
//  ID              – primary key identifier.
//  OwnerID         – staff account that administers the location.
//  Name            – display name.
//  OpenMinute      – opening time, minutes since midnight (e.g. 540 = 09:00).
//  CloseMinute     – closing time, minutes since midnight; the interval is
//                    half-open, so a client arriving exactly at closing is
//                    turned away.
//  OperatingDays   – weekday bitmask, bit 0 = Monday … bit 6 = Sunday.
//  MaxWaiting      – capacity of the WAITING set; 0 means unlimited.
//  PriorityEnabled – when true the queue orders by tier before arrival.
type Location struct {
	ID              uint64    `json:"id"`
	OwnerID         uint64    `json:"owner_id"`
	Name            string    `json:"name"`
	OpenMinute      int       `json:"open_minute"`
	CloseMinute     int       `json:"close_minute"`
	OperatingDays   uint8     `json:"operating_days"`
	MaxWaiting      int       `json:"max_waiting"`
	PriorityEnabled bool      `json:"priority_enabled"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
