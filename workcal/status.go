package workcal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SLA STATUS - Remaining vs. overdue working time at a reference instant
// =============================================================================

// Status describes an SLA deadline as seen from a reference instant.
type Status struct {
	Overdue          bool
	RemainingMinutes int // working minutes before breach, 0 once overdue
	OverdueMinutes   int // working minutes since breach, 0 while on time
}

// Status measures remaining or overdue working time for deadline at now.
// now is always explicit; the engine never reads the system clock.
func (e Engine) Status(deadline, now time.Time, cal *Calendar, leaves []LeaveRecord) (Status, error) {
	if now.After(deadline) {
		over, err := e.WorkingMinutesBetween(deadline, now, cal, leaves)
		if err != nil {
			return Status{}, err
		}
		return Status{Overdue: true, OverdueMinutes: over}, nil
	}
	left, err := e.WorkingMinutesBetween(now, deadline, cal, leaves)
	if err != nil {
		return Status{}, err
	}
	return Status{RemainingMinutes: left}, nil
}

// =============================================================================
// HOUR/MINUTE CONVERSIONS
// =============================================================================

var sixty = decimal.NewFromInt(60)

// MinutesFromHours converts decimal hours to whole minutes, rounding half
// away from zero. Negative hours are rejected.
func MinutesFromHours(hours decimal.Decimal) (int, error) {
	if hours.IsNegative() {
		return 0, fmt.Errorf("%w: %s hours", ErrInvalidDuration, hours.String())
	}
	return int(hours.Mul(sixty).Round(0).IntPart()), nil
}

// ParseHours parses a decimal hour string such as "2", "1.5" or "0.25".
func ParseHours(s string) (int, error) {
	hours, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number of hours", ErrInvalidDuration, s)
	}
	return MinutesFromHours(hours)
}

// ShiftHours returns the primary shift length in hours, the default
// "working day" used to express overdue time in days.
func (c *Calendar) ShiftHours() decimal.Decimal {
	return decimal.NewFromInt(int64(c.primary.Minutes())).Div(sixty)
}

// OverdueDays expresses overdue minutes in working days of hoursPerDay
// hours: overdueMinutes / (hoursPerDay * 60), unrounded. A non-positive day
// length yields zero.
func OverdueDays(overdueMinutes int, hoursPerDay decimal.Decimal) decimal.Decimal {
	if !hoursPerDay.IsPositive() || overdueMinutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(overdueMinutes)).Div(hoursPerDay.Mul(sixty))
}

// FormatMinutes renders a minute count as "Xh Ym", dropping the hour part
// when it is zero.
func FormatMinutes(minutes int) string {
	if minutes < 0 {
		return "-" + FormatMinutes(-minutes)
	}
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
