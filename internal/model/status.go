// Package model defines the ticket/plan identifier and metadata model:
// the Status/Priority/Type enums with textual round-trip, and the
// Ticket, Plan and Phase structs themselves.
package model

import "github.com/divmain/janus/internal/janus"

// Status is a ticket's lifecycle state.
type Status string

const (
	StatusNew        Status = "new"
	StatusNext       Status = "next"
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
)

// ParseStatus parses the textual form produced by String(), returning
// a ValidationError for anything else.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusNext, StatusInProgress, StatusComplete, StatusCancelled:
		return Status(s), nil
	default:
		return "", janus.NewValidationError("invalid status %q", s)
	}
}

func (s Status) String() string { return string(s) }

// IsTerminal reports whether the status represents finished work.
func (s Status) IsTerminal() bool {
	return s == StatusComplete || s == StatusCancelled
}

// IsNotStarted reports whether the status represents work that has
// not yet begun.
func (s Status) IsNotStarted() bool {
	return s == StatusNew || s == StatusNext
}

// Priority is P0 (highest) through P4 (lowest).
type Priority int

const (
	PriorityP0 Priority = 0
	PriorityP1 Priority = 1
	PriorityP2 Priority = 2
	PriorityP3 Priority = 3
	PriorityP4 Priority = 4
)

// ParsePriority parses an integer 0..4.
func ParsePriority(n int) (Priority, error) {
	if n < 0 || n > 4 {
		return 0, janus.NewValidationError("priority %d out of range 0..4", n)
	}
	return Priority(n), nil
}

func (p Priority) String() string { return "P" + string(rune('0'+p)) }

// TicketType is open-ended (task, bug, feature, ...); unlike Status and
// Priority it round-trips any non-empty lowercase token rather than a
// fixed set, so it is a bare string alias with validation.
type TicketType string

const (
	TypeTask    TicketType = "task"
	TypeBug     TicketType = "bug"
	TypeFeature TicketType = "feature"
)

// ParseTicketType validates that s is a non-empty token; any value is
// accepted (the "task, bug, feature, ..." shape in spec.md is
// illustrative, not exhaustive).
func ParseTicketType(s string) (TicketType, error) {
	if s == "" {
		return "", janus.NewValidationError("ticket type must not be empty")
	}
	return TicketType(s), nil
}
