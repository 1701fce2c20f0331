/*
store.go - Lookup interfaces for calendars and leave records

PURPOSE:
  The engine never fetches anything itself. The service resolves a
  developer's calendar and approved leaves through these interfaces before
  calling the engine. Implementations decide where the data lives.

KEY INTERFACES:
  CalendarSource: developer -> calendar configuration
  LeaveSource:    developer + window -> approved leave intervals
  Store:          Both, plus the writes the API exposes for dev/demo use

CONTRACT:
  - GetCalendar returns (nil, nil) when the developer has no calendar.
  - ApprovedLeaves returns only approved leaves overlapping [from, to).
    Status filtering is the store's job, not the engine's.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - sla/store/memory.go:    In-memory for tests and dev

SEE ALSO:
  - service.go: Consumes these interfaces
*/
package sla

import (
	"context"
	"time"

	"github.com/warp/sla-engine/workcal"
)

// =============================================================================
// READ SIDE - What the service needs
// =============================================================================

type CalendarSource interface {
	// GetCalendar returns the developer's calendar, or nil when none is assigned.
	GetCalendar(ctx context.Context, developerID string) (*workcal.CalendarConfig, error)
}

type LeaveSource interface {
	// ApprovedLeaves returns approved leaves overlapping [from, to).
	ApprovedLeaves(ctx context.Context, developerID string, from, to time.Time) ([]workcal.LeaveRecord, error)
}

// =============================================================================
// LEAVE RECORDS - As stored, with status
// =============================================================================

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "pending"
	LeaveApproved LeaveStatus = "approved"
	LeaveRejected LeaveStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s LeaveStatus) Valid() bool {
	switch s {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}

// Leave is a stored leave request.
type Leave struct {
	ID          string
	DeveloperID string
	Start       time.Time
	End         time.Time
	Status      LeaveStatus
	Reason      string
	CreatedAt   time.Time
}

// Overlaps reports whether the leave intersects [from, to).
func (l Leave) Overlaps(from, to time.Time) bool {
	return l.Start.Before(to) && l.End.After(from)
}

// Record converts to the engine's leave interval.
func (l Leave) Record() workcal.LeaveRecord {
	return workcal.LeaveRecord{Start: l.Start, End: l.End}
}

// =============================================================================
// STORE - Read side plus dev/demo writes
// =============================================================================

type Store interface {
	CalendarSource
	LeaveSource

	SaveCalendar(ctx context.Context, developerID string, cfg workcal.CalendarConfig) error
	// SaveLeave inserts a leave or replaces the developer's leave with the
	// same ID. An ID owned by another developer yields ErrLeaveConflict.
	SaveLeave(ctx context.Context, leave Leave) error
	ListLeaves(ctx context.Context, developerID string) ([]Leave, error)

	// Reset removes all calendars and leaves.
	Reset(ctx context.Context) error
}
