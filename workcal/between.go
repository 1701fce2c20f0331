package workcal

import (
	"fmt"
	"time"
)

// WorkingMinutesBetween sums the working minutes in [from, to) under the
// same shift and leave rules as Deadline. It returns 0 when to <= from.
//
// With now/deadline it measures time remaining before breach; with
// deadline/now it measures time overdue.
func (e Engine) WorkingMinutesBetween(from, to time.Time, cal *Calendar, leaves []LeaveRecord) (int, error) {
	if cal == nil {
		return 0, &InvalidCalendarError{Field: "calendar", Reason: "nil"}
	}
	if !to.After(from) {
		return 0, nil
	}

	loc := cal.Location()
	set := newLeaveSet(leaves, loc, skippedWindows(loc, from, to)...)
	cursor := ToWall(from, loc)
	end := ToWall(to, loc)

	total := 0
	for cursor < end {
		win, ok := cal.shiftAtOrAfter(cursor, end.Day())
		if !ok || win.Start >= end {
			break
		}
		seg := Window{Start: maxWall(cursor, win.Start), End: minWall(win.End, end)}
		total += seg.Minutes() - set.overlap(seg)
		cursor = win.End
	}
	return total, nil
}

// WorkingMinutesInRange is the strict form of WorkingMinutesBetween for
// direct callers: a range whose end precedes its start is an error rather
// than zero.
func (e Engine) WorkingMinutesInRange(from, to time.Time, cal *Calendar, leaves []LeaveRecord) (int, error) {
	if to.Before(from) {
		return 0, fmt.Errorf("%w: from %s, to %s", ErrInvalidTimeRange,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return e.WorkingMinutesBetween(from, to, cal, leaves)
}
