/*
Package workcal converts SLA durations into deadlines against a worker's
weekly business-hours calendar.

PURPOSE:
  This package is the working-calendar deadline engine. Given a weekly
  calendar (working weekdays, a daily shift, an optional Saturday shift and
  a time zone) and a list of approved leave intervals, it answers:
  - When does an SLA of N working minutes starting at S expire?
  - How many working minutes lie between two instants?
  - What is the new deadline after resuming a paused SLA?

KEY CONCEPTS IN THIS FILE (calendar.go):
  - CalendarConfig: Caller-supplied description (strings, as stored)
  - Shift:          A daily window in minutes of day, possibly overnight
  - Calendar:       Validated, immutable model built from a CalendarConfig

SHIFT OCCURRENCES:
  Every working day owns exactly one shift occurrence that starts on that
  day. An overnight shift (end <= start) runs into the next calendar day and
  that tail belongs to the day it started on, whether or not the next day is
  itself a working day. A Saturday shift running into Sunday therefore uses
  the Saturday definition for its whole length.

DESIGN PRINCIPLES:
  1. Stateless: every call takes explicit inputs, nothing is cached
  2. Wall clock: all shift arithmetic happens on Wall minutes in the
     calendar's zone, so a 09:00-17:00 shift is 480 minutes on any date
  3. Fail fast: a calendar that cannot produce a deadline is an error,
     never an approximate answer

USAGE:
  cal, err := workcal.NewCalendar(workcal.CalendarConfig{
      WorkingDays: []int{1, 2, 3, 4, 5},
      StartTime:   "09:00",
      EndTime:     "17:00",
      Timezone:    "Asia/Karachi",
  })
  deadline, err := workcal.Engine{}.Deadline(start, 120, cal, nil)

SEE ALSO:
  - wall.go:     Time-zone projection
  - leave.go:    Leave overlap accumulation
  - deadline.go: Forward walker
  - between.go:  Backward walker
  - resume.go:   Hold/resume recalculation
*/
package workcal

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// =============================================================================
// CALENDAR CONFIG - What callers and stores hand us
// =============================================================================

// CalendarConfig describes a worker's weekly availability.
// WorkingDays uses ISO numbering: Monday=1 ... Sunday=7.
type CalendarConfig struct {
	WorkingDays       []int
	StartTime         string // "HH:MM"
	EndTime           string // "HH:MM"; <= StartTime means overnight
	SaturdayStartTime string // optional override, both or neither
	SaturdayEndTime   string
	Timezone          string // IANA zone name
}

// HasSaturdayShift reports whether a distinct Saturday shift is configured.
func (c CalendarConfig) HasSaturdayShift() bool {
	return c.SaturdayStartTime != "" || c.SaturdayEndTime != ""
}

// =============================================================================
// SHIFT
// =============================================================================

// Shift is a daily working window in minutes since local midnight.
type Shift struct {
	Start int
	End   int
}

// ParseShift parses a pair of "HH:MM" strings.
func ParseShift(start, end string) (Shift, error) {
	s, err := parseClock(start)
	if err != nil {
		return Shift{}, err
	}
	e, err := parseClock(end)
	if err != nil {
		return Shift{}, err
	}
	return Shift{Start: s, End: e}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Overnight reports whether the shift wraps past midnight.
func (s Shift) Overnight() bool { return s.End <= s.Start }

// Minutes returns the shift length with overnight wraparound.
// A shift whose end equals its start is a full 24 hours.
func (s Shift) Minutes() int {
	if s.Overnight() {
		return minutesPerDay - s.Start + s.End
	}
	return s.End - s.Start
}

// Contains reports whether a minute of day lies inside the shift.
func (s Shift) Contains(minute int) bool {
	if s.Overnight() {
		return minute >= s.Start || minute < s.End
	}
	return minute >= s.Start && minute < s.End
}

func (s Shift) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", s.Start/60, s.Start%60, s.End/60, s.End%60)
}

// =============================================================================
// CALENDAR - Validated, immutable
// =============================================================================

type Calendar struct {
	days        [8]bool // indexed by ISO weekday; [0] unused
	primary     Shift
	saturday    Shift
	hasSaturday bool
	loc         *time.Location
	config      CalendarConfig
}

// NewCalendar validates cfg and loads its time zone.
func NewCalendar(cfg CalendarConfig) (*Calendar, error) {
	if strings.TrimSpace(cfg.Timezone) == "" {
		return nil, &InvalidCalendarError{Field: "timezone", Reason: "required"}
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, &InvalidCalendarError{Field: "timezone", Reason: err.Error()}
	}
	return NewCalendarIn(cfg, loc)
}

// NewCalendarIn validates cfg against an already-resolved location.
// cfg.Timezone is kept for display only.
func NewCalendarIn(cfg CalendarConfig, loc *time.Location) (*Calendar, error) {
	if loc == nil {
		return nil, &InvalidCalendarError{Field: "timezone", Reason: "nil location"}
	}
	if len(cfg.WorkingDays) == 0 {
		return nil, &InvalidCalendarError{Field: "working_days", Reason: "at least one working day required"}
	}

	c := &Calendar{loc: loc}
	for _, d := range cfg.WorkingDays {
		if d < 1 || d > 7 {
			return nil, &InvalidCalendarError{Field: "working_days", Reason: fmt.Sprintf("weekday %d outside 1..7", d)}
		}
		c.days[d] = true
	}

	primary, err := ParseShift(cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, &InvalidCalendarError{Field: "start_time/end_time", Reason: err.Error()}
	}
	if err := checkShift(primary); err != nil {
		return nil, &InvalidCalendarError{Field: "start_time/end_time", Reason: err.Error()}
	}
	c.primary = primary

	if cfg.HasSaturdayShift() {
		if cfg.SaturdayStartTime == "" || cfg.SaturdayEndTime == "" {
			return nil, &InvalidCalendarError{Field: "saturday_start_time/saturday_end_time", Reason: "both or neither must be set"}
		}
		sat, err := ParseShift(cfg.SaturdayStartTime, cfg.SaturdayEndTime)
		if err != nil {
			return nil, &InvalidCalendarError{Field: "saturday_start_time/saturday_end_time", Reason: err.Error()}
		}
		if err := checkShift(sat); err != nil {
			return nil, &InvalidCalendarError{Field: "saturday_start_time/saturday_end_time", Reason: err.Error()}
		}
		c.saturday = sat
		c.hasSaturday = true
	}

	c.config = cfg
	c.config.WorkingDays = c.WorkingDays()
	return c, nil
}

func checkShift(s Shift) error {
	if m := s.Minutes(); m <= 0 || m > minutesPerDay {
		return fmt.Errorf("shift %s lasts %d minutes, want 1..%d", s, m, minutesPerDay)
	}
	return nil
}

// Location returns the calendar's time zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Config returns a copy of the configuration the calendar was built from,
// with working days normalized (sorted, de-duplicated).
func (c *Calendar) Config() CalendarConfig {
	cfg := c.config
	cfg.WorkingDays = append([]int(nil), c.config.WorkingDays...)
	return cfg
}

// WorkingDays returns the ISO weekdays that carry a shift, ascending.
func (c *Calendar) WorkingDays() []int {
	var days []int
	for d := 1; d <= 7; d++ {
		if c.days[d] {
			days = append(days, d)
		}
	}
	sort.Ints(days)
	return days
}

// IsWorkingDay reports whether the ISO weekday carries a shift.
func (c *Calendar) IsWorkingDay(isoWeekday int) bool {
	if isoWeekday < 1 || isoWeekday > 7 {
		return false
	}
	return c.days[isoWeekday]
}

// ShiftOn returns the shift definition for an ISO weekday, applying the
// Saturday override when one is configured. Working-day membership is not
// checked here.
func (c *Calendar) ShiftOn(isoWeekday int) Shift {
	if isoWeekday == int(time.Saturday) && c.hasSaturday {
		return c.saturday
	}
	return c.primary
}

// PrimaryShift returns the weekday shift.
func (c *Calendar) PrimaryShift() Shift { return c.primary }

// occurrence returns the shift occurrence starting on the given day index,
// or false when that day is not a working day.
func (c *Calendar) occurrence(day int64) (Window, bool) {
	wd := isoWeekday(day)
	if !c.days[wd] {
		return Window{}, false
	}
	s := c.ShiftOn(wd)
	start := dayStart(day).Add(s.Start)
	return Window{Start: start, End: start.Add(s.Minutes())}, true
}

// shiftAtOrAfter returns the first shift occurrence that ends after w: the
// one containing w, or else the next one to start. Occurrences starting
// after lastDay are not considered.
func (c *Calendar) shiftAtOrAfter(w Wall, lastDay int64) (Window, bool) {
	day := w.Day()
	// Yesterday's overnight tail may still be running.
	if win, ok := c.occurrence(day - 1); ok && w < win.End {
		return win, true
	}
	for d := day; d <= lastDay; d++ {
		if win, ok := c.occurrence(d); ok && w < win.End {
			return win, true
		}
	}
	return Window{}, false
}

// InShift reports whether the instant falls inside a shift occurrence.
func (c *Calendar) InShift(t time.Time) bool {
	w := ToWall(t, c.loc)
	win, ok := c.shiftAtOrAfter(w, w.Day())
	return ok && w >= win.Start
}
