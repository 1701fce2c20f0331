/*
Package factory provides JSON to Go calendar conversion.

PURPOSE:
  Converts JSON calendar definitions into workcal.Calendar values. Calendars
  are stored as JSON (one per developer) and arrive as JSON over the API and
  on the command line; the factory is the single place that decodes them.

JSON SCHEMA:
  {
    "working_days": [1, 2, 3, 4, 5],
    "start_time": "09:00",
    "end_time": "17:00",
    "saturday_start_time": "10:00",
    "saturday_end_time": "14:00",
    "timezone": "Asia/Karachi"
  }

  working_days uses ISO numbering (Monday=1 ... Sunday=7). The Saturday
  fields are optional and must be given together.

ZONE CACHE:
  time.LoadLocation reads the zone database on every call. The factory keeps
  resolved locations keyed by name, so parsing a calendar for every request
  does not hit the disk each time.

USAGE:
  f := factory.NewCalendarFactory()
  cal, err := f.ParseCalendar(jsonString)

SEE ALSO:
  - workcal/calendar.go: Calendar validation
  - store/sqlite/sqlite.go: Stores calendars as JSON
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/warp/sla-engine/workcal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// CalendarJSON is the JSON representation of a working calendar.
type CalendarJSON struct {
	WorkingDays       []int  `json:"working_days"`
	StartTime         string `json:"start_time"`
	EndTime           string `json:"end_time"`
	SaturdayStartTime string `json:"saturday_start_time,omitempty"`
	SaturdayEndTime   string `json:"saturday_end_time,omitempty"`
	Timezone          string `json:"timezone"`
}

// Config converts the JSON form to the engine's configuration.
func (cj CalendarJSON) Config() workcal.CalendarConfig {
	return workcal.CalendarConfig{
		WorkingDays:       append([]int(nil), cj.WorkingDays...),
		StartTime:         cj.StartTime,
		EndTime:           cj.EndTime,
		SaturdayStartTime: cj.SaturdayStartTime,
		SaturdayEndTime:   cj.SaturdayEndTime,
		Timezone:          cj.Timezone,
	}
}

// ToJSON converts an engine configuration to its JSON form.
func ToJSON(cfg workcal.CalendarConfig) CalendarJSON {
	return CalendarJSON{
		WorkingDays:       append([]int(nil), cfg.WorkingDays...),
		StartTime:         cfg.StartTime,
		EndTime:           cfg.EndTime,
		SaturdayStartTime: cfg.SaturdayStartTime,
		SaturdayEndTime:   cfg.SaturdayEndTime,
		Timezone:          cfg.Timezone,
	}
}

// =============================================================================
// CALENDAR FACTORY
// =============================================================================

// CalendarFactory builds calendars and caches resolved time zones.
// Safe for concurrent use.
type CalendarFactory struct {
	mu    sync.RWMutex
	zones map[string]*time.Location
}

// NewCalendarFactory creates a new calendar factory.
func NewCalendarFactory() *CalendarFactory {
	return &CalendarFactory{zones: make(map[string]*time.Location)}
}

// ParseCalendar parses a JSON string into a validated Calendar.
func (f *CalendarFactory) ParseCalendar(jsonStr string) (*workcal.Calendar, error) {
	cj, err := DecodeCalendar(jsonStr)
	if err != nil {
		return nil, err
	}
	return f.FromConfig(cj.Config())
}

// DecodeCalendar decodes JSON without validating calendar semantics.
// Malformed JSON is reported as an invalid calendar.
func DecodeCalendar(jsonStr string) (CalendarJSON, error) {
	var cj CalendarJSON
	if err := json.Unmarshal([]byte(jsonStr), &cj); err != nil {
		return CalendarJSON{}, fmt.Errorf("failed to parse calendar JSON: %w",
			&workcal.InvalidCalendarError{Field: "json", Reason: err.Error()})
	}
	return cj, nil
}

// FromConfig validates cfg and resolves its zone through the cache.
func (f *CalendarFactory) FromConfig(cfg workcal.CalendarConfig) (*workcal.Calendar, error) {
	if cfg.Timezone == "" {
		return nil, &workcal.InvalidCalendarError{Field: "timezone", Reason: "required"}
	}
	loc, err := f.Location(cfg.Timezone)
	if err != nil {
		return nil, &workcal.InvalidCalendarError{Field: "timezone", Reason: err.Error()}
	}
	return workcal.NewCalendarIn(cfg, loc)
}

// Location resolves an IANA zone name, caching successful lookups.
func (f *CalendarFactory) Location(name string) (*time.Location, error) {
	f.mu.RLock()
	loc, ok := f.zones[name]
	f.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.zones[name] = loc
	f.mu.Unlock()
	return loc, nil
}

// =============================================================================
// PRESETS
// =============================================================================

// WeekdayCalendarJSON returns a Monday-Friday calendar as JSON.
func WeekdayCalendarJSON(timezone, start, end string) string {
	return mustMarshal(CalendarJSON{
		WorkingDays: []int{1, 2, 3, 4, 5},
		StartTime:   start,
		EndTime:     end,
		Timezone:    timezone,
	})
}

// SixDayCalendarJSON returns a Monday-Saturday calendar with a distinct
// Saturday shift as JSON.
func SixDayCalendarJSON(timezone, start, end, satStart, satEnd string) string {
	return mustMarshal(CalendarJSON{
		WorkingDays:       []int{1, 2, 3, 4, 5, 6},
		StartTime:         start,
		EndTime:           end,
		SaturdayStartTime: satStart,
		SaturdayEndTime:   satEnd,
		Timezone:          timezone,
	})
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
