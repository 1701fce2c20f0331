/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with developers,
	calendars and leaves that exercise specific engine behaviour.

AVAILABLE SCENARIOS:

	karachi-weekday:   Mon-Fri 09:00-17:00 Asia/Karachi, no leave
	overnight-shift:   Mon-Fri 22:00-06:00 America/New_York, one approved leave
	saturday-half-day: Mon-Sat with a 09:00-13:00 Saturday, approved and pending leave
	team:              All of the above

HOW SCENARIOS WORK:
 1. Reset the store (clear all calendars and leaves)
 2. Build each calendar from the factory presets
 3. Assign calendars to developers
 4. Add leaves dated relative to the coming week, so the demo stays current

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "saturday-half-day"}

ADDING NEW SCENARIOS:
 1. Add a seed to 'seeds' (developer, calendar, leaves)
 2. Add to 'scenarios' with the seed developers it loads

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler struct
  - factory/calendar.go: Calendar presets
*/
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/warp/sla-engine/factory"
	"github.com/warp/sla-engine/sla"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

// leaveSeed places a leave relative to the Monday of the coming week, in
// the developer's zone.
type leaveSeed struct {
	dayOffset int           // days after that Monday
	startAt   time.Duration // from local midnight
	duration  time.Duration
	status    sla.LeaveStatus
	reason    string
}

type developerSeed struct {
	calendarJSON string
	leaves       []leaveSeed
}

var seeds = map[string]developerSeed{
	"dev-karachi": {
		calendarJSON: factory.WeekdayCalendarJSON("Asia/Karachi", "09:00", "17:00"),
	},
	"dev-night": {
		calendarJSON: factory.WeekdayCalendarJSON("America/New_York", "22:00", "06:00"),
		leaves: []leaveSeed{
			{dayOffset: 2, startAt: 22 * time.Hour, duration: 4 * time.Hour, status: sla.LeaveApproved, reason: "doctor"},
		},
	},
	"dev-saturday": {
		calendarJSON: factory.SixDayCalendarJSON("Asia/Karachi", "09:00", "18:00", "09:00", "13:00"),
		leaves: []leaveSeed{
			{dayOffset: 0, startAt: 0, duration: 24 * time.Hour, status: sla.LeaveApproved, reason: "family event"},
			{dayOffset: 1, startAt: 14 * time.Hour, duration: 4 * time.Hour, status: sla.LeavePending, reason: "awaiting approval"},
		},
	},
}

var scenarios = []ScenarioDTO{
	{
		ID:          "karachi-weekday",
		Name:        "Karachi Weekday",
		Description: "Mon-Fri 09:00-17:00 in Asia/Karachi; deadlines roll over the weekend",
		Developers:  []string{"dev-karachi"},
	},
	{
		ID:          "overnight-shift",
		Name:        "Overnight Shift",
		Description: "Mon-Fri 22:00-06:00 in America/New_York with an approved leave mid-shift",
		Developers:  []string{"dev-night"},
	},
	{
		ID:          "saturday-half-day",
		Name:        "Saturday Half-Day",
		Description: "Mon-Sat 09:00-18:00 with a 09:00-13:00 Saturday, a leave day and a pending leave",
		Developers:  []string{"dev-saturday"},
	},
	{
		ID:          "team",
		Name:        "Whole Team",
		Description: "All demo developers at once",
		Developers:  []string{"dev-karachi", "dev-night", "dev-saturday"},
	},
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		render.JSON(w, r, nil)
		return
	}
	s, _ := findScenario(current)
	render.JSON(w, r, s)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	const op = "api.LoadScenario"

	var req LoadScenarioRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.badJSON(w, r, op, err)
		return
	}

	scenario, ok := findScenario(req.ScenarioID)
	if !ok {
		h.writeError(w, r, http.StatusBadRequest, "unknown_scenario", "Unknown scenario", req.ScenarioID)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.fail(w, r, op, fmt.Errorf("reset store: %w", err))
		return
	}
	h.currentScenario = ""

	leaves := 0
	for _, developerID := range scenario.Developers {
		n, err := h.seedDeveloper(ctx, developerID, seeds[developerID])
		if err != nil {
			h.fail(w, r, op, fmt.Errorf("load scenario %s: %w", scenario.ID, err))
			return
		}
		leaves += n
	}
	h.currentScenario = scenario.ID

	h.Log.Info("scenario loaded",
		slog.String("scenario", scenario.ID),
		slog.Int("developers", len(scenario.Developers)),
		slog.Int("leaves", leaves),
	)
	render.JSON(w, r, LoadScenarioResponse{Scenario: scenario, Leaves: leaves})
}

// ResetDatabase clears every calendar and leave.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	const op = "api.ResetDatabase"

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.fail(w, r, op, fmt.Errorf("reset store: %w", err))
		return
	}
	h.currentScenario = ""
	render.JSON(w, r, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) seedDeveloper(ctx context.Context, developerID string, seed developerSeed) (int, error) {
	cal, err := h.Factory.ParseCalendar(seed.calendarJSON)
	if err != nil {
		return 0, fmt.Errorf("calendar for %s: %w", developerID, err)
	}
	if err := h.Store.SaveCalendar(ctx, developerID, cal.Config()); err != nil {
		return 0, fmt.Errorf("save calendar for %s: %w", developerID, err)
	}

	monday := nextMonday(h.now(), cal.Location())
	for i, ls := range seed.leaves {
		start := monday.AddDate(0, 0, ls.dayOffset).Add(ls.startAt)
		leave := sla.Leave{
			ID:          fmt.Sprintf("%s-leave-%d", developerID, i+1),
			DeveloperID: developerID,
			Start:       start,
			End:         start.Add(ls.duration),
			Status:      ls.status,
			Reason:      ls.reason,
			CreatedAt:   h.now(),
		}
		if err := h.Store.SaveLeave(ctx, leave); err != nil {
			return 0, fmt.Errorf("save leave for %s: %w", developerID, err)
		}
	}
	return len(seed.leaves), nil
}

// nextMonday returns midnight of the first Monday strictly after now, in loc.
func nextMonday(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	days := (8 - int(local.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	d := local.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}
