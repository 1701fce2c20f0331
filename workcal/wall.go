package workcal

import (
	"fmt"
	"time"
)

// =============================================================================
// WALL CLOCK - Minute-resolution local time, detached from any zone
// =============================================================================

const (
	minutesPerDay = 24 * 60
	daysPerWeek   = 7
)

// Wall is a wall-clock reading in some calendar's zone, counted in whole
// minutes since 1970-01-01 00:00 of that zone. It carries no offset: two
// Walls compare by their calendar fields only, so arithmetic on them is
// plain integer arithmetic and never shifts with daylight saving.
type Wall int64

// ToWall projects an absolute instant onto the wall clock of loc using the
// offset that applies at that instant. Seconds are truncated.
func ToWall(t time.Time, loc *time.Location) Wall {
	lt := t.In(loc)
	naive := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), lt.Minute(), 0, 0, time.UTC)
	return Wall(naive.Unix() / 60)
}

// WallOf builds a wall-clock reading from calendar fields.
func WallOf(year int, month time.Month, day, hour, minute int) Wall {
	return Wall(time.Date(year, month, day, hour, minute, 0, 0, time.UTC).Unix() / 60)
}

// Instant maps the wall-clock reading back to an absolute instant in loc.
//
// The offsets in effect a day either side of the naive UTC reading give at
// most two candidates. A reading that occurs twice (clocks falling back)
// resolves to the earlier occurrence. A reading skipped by clocks springing
// forward resolves to the instant just past the gap, so 02:30 on a night
// that jumps from 02:00 to 03:00 becomes 03:30.
func (w Wall) Instant(loc *time.Location) time.Time {
	return w.readings(loc)[0]
}

// InstantNotBefore is Instant, except that a reading which occurs twice
// resolves to the first occurrence not before floor. Callers walking
// forward from floor use it so a later wall minute never maps to an earlier
// instant.
func (w Wall) InstantNotBefore(loc *time.Location, floor time.Time) time.Time {
	rs := w.readings(loc)
	for _, r := range rs {
		if !r.Before(floor) {
			return r
		}
	}
	return rs[len(rs)-1]
}

// readings returns the instants whose wall clock in loc equals w, earliest
// first. For a skipped reading it returns the single instant past the gap.
func (w Wall) readings(loc *time.Location) []time.Time {
	naive := w.naive()
	_, before := naive.Add(-24 * time.Hour).In(loc).Zone()
	_, after := naive.Add(24 * time.Hour).In(loc).Zone()

	early := naive.Add(-time.Duration(max(before, after)) * time.Second).In(loc)
	late := naive.Add(-time.Duration(min(before, after)) * time.Second).In(loc)

	var out []time.Time
	if ToWall(early, loc) == w {
		out = append(out, early)
	}
	if !late.Equal(early) && ToWall(late, loc) == w {
		out = append(out, late)
	}
	if len(out) == 0 {
		out = append(out, late)
	}
	return out
}

// skippedWindows lists the wall-clock windows that never occur in loc
// between from and to because clocks sprang forward. Those minutes cannot
// be worked, so the walkers block them like leave.
func skippedWindows(loc *time.Location, from, to time.Time) []Window {
	var gaps []Window
	t := from.In(loc)
	for {
		_, next := t.ZoneBounds()
		if next.IsZero() || next.After(to) {
			return gaps
		}
		_, before := next.Add(-time.Second).Zone()
		_, after := next.Zone()
		if after > before {
			gaps = append(gaps, Window{
				Start: Wall(floorDiv(next.Unix()+int64(before), 60)),
				End:   Wall(floorDiv(next.Unix()+int64(after), 60)),
			})
		}
		t = next
	}
}

func (w Wall) naive() time.Time { return time.Unix(int64(w)*60, 0).UTC() }

// Day returns the day index (days since 1970-01-01).
func (w Wall) Day() int64 { return floorDiv(int64(w), minutesPerDay) }

// MinuteOfDay returns minutes since local midnight, 0..1439.
func (w Wall) MinuteOfDay() int { return int(int64(w) - w.Day()*minutesPerDay) }

// Weekday returns the ISO weekday, Monday=1 ... Sunday=7.
func (w Wall) Weekday() int { return isoWeekday(w.Day()) }

func (w Wall) Add(minutes int) Wall { return w + Wall(minutes) }
func (w Wall) Sub(o Wall) int       { return int(w - o) }

func (w Wall) String() string {
	return fmt.Sprintf("%s (%s)", w.naive().Format("2006-01-02 15:04"), w.naive().Weekday())
}

// dayStart returns midnight of the given day index.
func dayStart(day int64) Wall { return Wall(day * minutesPerDay) }

// isoWeekday maps a day index to its ISO weekday. Day 0 was a Thursday.
func isoWeekday(day int64) int {
	return int(floorMod(day+3, daysPerWeek)) + 1
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}

func maxWall(a, b Wall) Wall {
	if a > b {
		return a
	}
	return b
}

func minWall(a, b Wall) Wall {
	if a < b {
		return a
	}
	return b
}

// =============================================================================
// WINDOW - Half-open wall-clock interval [Start, End)
// =============================================================================

type Window struct {
	Start Wall
	End   Wall
}

// Minutes returns the window length, or 0 when End <= Start.
func (w Window) Minutes() int {
	if w.End <= w.Start {
		return 0
	}
	return w.End.Sub(w.Start)
}

func (w Window) Empty() bool { return w.End <= w.Start }

// Intersect returns the overlap of two windows (possibly empty).
func (w Window) Intersect(o Window) Window {
	return Window{Start: maxWall(w.Start, o.Start), End: minWall(w.End, o.End)}
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + ")"
}
