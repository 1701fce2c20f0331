/*
errors.go - Centralized error types for the working-calendar engine

PURPOSE:
  All engine error types in one place. The service boundary and the HTTP
  layer wrap or map these; they never invent their own calendar errors.

ERROR CATEGORIES:
  1. Lookup errors     - no calendar for a worker (404)
  2. Validation errors - malformed calendar, duration or range (400)
  3. Computation errors - step budget exhausted while walking (500)

USAGE:
  if errors.Is(err, workcal.ErrInvalidCalendar) {
      // surface as 400
  }

  var unsat *workcal.UnsatisfiableError
  if errors.As(err, &unsat) {
      log.Printf("gave up after %d days with %d minutes left", unsat.Budget, unsat.RemainingMinutes)
  }

SEE ALSO:
  - calendar.go: Produces InvalidCalendarError
  - deadline.go: Produces UnsatisfiableError
  - api/handlers.go: Maps errors to HTTP status codes
*/
package workcal

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrCalendarNotFound is returned when no calendar is resolvable for a worker.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrInvalidCalendar is returned when a calendar has no working days or a
	// shift with no effective duration.
	ErrInvalidCalendar = errors.New("invalid calendar")

	// ErrCalendarUnsatisfiable is returned when the forward walk exhausts its
	// step budget without accumulating the requested working minutes.
	ErrCalendarUnsatisfiable = errors.New("calendar unsatisfiable")

	// ErrInvalidTimeRange is returned by strict range measurements when the
	// end instant precedes the start instant.
	ErrInvalidTimeRange = errors.New("invalid time range: to before from")

	// ErrInvalidDuration is returned for negative SLA durations.
	ErrInvalidDuration = errors.New("invalid duration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidCalendarError names the calendar field that failed validation.
type InvalidCalendarError struct {
	Field  string
	Reason string
}

func (e *InvalidCalendarError) Error() string {
	return fmt.Sprintf("invalid calendar: %s: %s", e.Field, e.Reason)
}

func (e *InvalidCalendarError) Unwrap() error {
	return ErrInvalidCalendar
}

// UnsatisfiableError reports where the forward walk stopped.
type UnsatisfiableError struct {
	Budget           StepBudget
	RemainingMinutes int
	StoppedAt        time.Time
}

func (e *UnsatisfiableError) Error() string {
	return fmt.Sprintf("calendar unsatisfiable: %d minutes still required after walking %d days (stopped at %s)",
		e.RemainingMinutes, e.Budget, e.StoppedAt.Format(time.RFC3339))
}

func (e *UnsatisfiableError) Unwrap() error {
	return ErrCalendarUnsatisfiable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidCalendar) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidDuration)
}

// IsNotFound returns true if the error indicates a missing calendar.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCalendarNotFound)
}
