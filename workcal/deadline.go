package workcal

import (
	"fmt"
	"time"
)

// Deadline returns the instant at which minutes working minutes have
// elapsed, counting from start and skipping non-working days, time outside
// the shift, and leave.
//
// A zero duration still snaps to the first working instant at or after
// start, so an SLA never starts counting outside working time. Wall minutes
// skipped by a daylight-saving jump are never working time, and a repeated
// hour is counted once.
func (e Engine) Deadline(start time.Time, minutes int, cal *Calendar, leaves []LeaveRecord) (time.Time, error) {
	if cal == nil {
		return time.Time{}, &InvalidCalendarError{Field: "calendar", Reason: "nil"}
	}
	if minutes < 0 {
		return time.Time{}, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, minutes)
	}

	loc := cal.Location()
	budget := e.budget()
	horizon := start.AddDate(0, 0, int(budget)+2)
	set := newLeaveSet(leaves, loc, skippedWindows(loc, start, horizon)...)
	floor := start.Truncate(time.Minute)

	cursor := ToWall(start, loc)
	lastDay := cursor.Day() + int64(budget)
	remaining := minutes

	for {
		win, ok := cal.shiftAtOrAfter(cursor, lastDay)
		if !ok {
			return time.Time{}, &UnsatisfiableError{
				Budget:           budget,
				RemainingMinutes: remaining,
				StoppedAt:        cursor.Instant(loc),
			}
		}

		seg := Window{Start: maxWall(cursor, win.Start), End: win.End}
		usable := seg.Minutes() - set.overlap(seg)
		if usable <= 0 {
			cursor = win.End
			continue
		}

		if remaining <= usable {
			return set.locate(seg, remaining).InstantNotBefore(loc, floor), nil
		}
		remaining -= usable
		cursor = win.End
	}
}

// DeadlineForHours is Deadline with the duration given in decimal hours.
func (e Engine) DeadlineForHours(start time.Time, hours string, cal *Calendar, leaves []LeaveRecord) (time.Time, error) {
	minutes, err := ParseHours(hours)
	if err != nil {
		return time.Time{}, err
	}
	return e.Deadline(start, minutes, cal, leaves)
}
