package workcal

import (
	"sort"
	"time"
)

// =============================================================================
// LEAVE - Approved unavailability, subtracted from shift time
// =============================================================================

// LeaveRecord is an approved leave interval [Start, End). Filtering by
// approval status is the caller's job.
type LeaveRecord struct {
	Start time.Time
	End   time.Time
}

// OverlapMinutes returns the total minutes of win covered by leaves. The
// window is expressed in the wall clock of loc and leaves are projected into
// the same zone first. Each leave contributes independently; overlapping
// leaves are counted twice.
func OverlapMinutes(win Window, leaves []LeaveRecord, loc *time.Location) int {
	total := 0
	for _, l := range leaves {
		lw := Window{Start: ToWall(l.Start, loc), End: ToWall(l.End, loc)}
		total += win.Intersect(lw).Minutes()
	}
	return total
}

// leaveSet holds leave windows projected into a calendar's wall clock,
// sorted by start and merged so no two windows touch or overlap. blocked
// adds windows that are not leave but still cannot be worked.
type leaveSet []Window

func newLeaveSet(leaves []LeaveRecord, loc *time.Location, blocked ...Window) leaveSet {
	if len(leaves) == 0 && len(blocked) == 0 {
		return nil
	}
	wins := make([]Window, 0, len(leaves)+len(blocked))
	wins = append(wins, blocked...)
	for _, l := range leaves {
		w := Window{Start: ToWall(l.Start, loc), End: ToWall(l.End, loc)}
		if w.Empty() {
			continue
		}
		wins = append(wins, w)
	}
	sort.Slice(wins, func(i, j int) bool { return wins[i].Start < wins[j].Start })

	merged := wins[:0]
	for _, w := range wins {
		if n := len(merged); n > 0 && w.Start <= merged[n-1].End {
			if w.End > merged[n-1].End {
				merged[n-1].End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}

// overlap returns minutes of win covered by the set.
func (s leaveSet) overlap(win Window) int {
	total := 0
	for _, l := range s {
		if l.Start >= win.End {
			break
		}
		total += win.Intersect(l).Minutes()
	}
	return total
}

// locate returns the instant inside seg at which exactly need leave-free
// minutes have elapsed since seg.Start. The caller guarantees seg holds at
// least need free minutes, and at least one when need is zero.
//
// For need > 0 the earliest such instant is returned, so a deadline that
// completes right before a leave lands on the leave's start. For need == 0
// the first leave-free instant is returned instead.
func (s leaveSet) locate(seg Window, need int) Wall {
	cursor := seg.Start
	for _, l := range s {
		if l.End <= cursor {
			continue
		}
		if l.Start >= seg.End {
			break
		}
		if l.Start > cursor {
			if need == 0 {
				return cursor
			}
			gap := l.Start.Sub(cursor)
			if need <= gap {
				return cursor.Add(need)
			}
			need -= gap
		}
		cursor = l.End
	}
	return cursor.Add(need)
}
