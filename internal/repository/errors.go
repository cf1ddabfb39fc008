// Package repository defines sentinel error values reused across the
// data access layer. Handlers compare against these with errors.Is to
// pick HTTP status codes.
package repository

import "errors"

// ErrLocationNotFound is returned when a location ID resolves to no row.
var ErrLocationNotFound = errors.New("location not found")

// ErrClientNotFound is returned when a client ID resolves to no row.
var ErrClientNotFound = errors.New("client not found")

// ErrServiceNotFound is returned when a service type ID resolves to no row.
var ErrServiceNotFound = errors.New("service type not found")

// ErrAgentNotFound is returned when an agent ID resolves to no row.
var ErrAgentNotFound = errors.New("agent not found")

// ErrEntryNotFound is returned when a queue entry ID resolves to no row.
var ErrEntryNotFound = errors.New("queue entry not found")

// ErrVersionConflict is returned when an optimistic-locked update finds
// the row's version already advanced: a concurrent lifecycle transition
// won the race. Handlers translate this into HTTP 409.
var ErrVersionConflict = errors.New("entry version conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")
