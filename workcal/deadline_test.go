package workcal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/sla-engine/workcal"
)

var engine = workcal.Engine{}

func assertInstant(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

// =============================================================================
// WEEKDAY CALENDAR
// =============================================================================

func TestDeadline_FridayAfternoonRollsToMonday(t *testing.T) {
	// GIVEN: Mon-Fri 09:00-17:00 in Karachi, start Friday 16:30
	// WHEN: Two working hours are required
	// THEN: 30 minutes are used Friday, the other 90 land Monday morning

	cal := karachiCalendar(t)
	start := at(cal, 2025, time.January, 3, 16, 30)

	deadline, err := engine.Deadline(start, 120, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 10, 30), deadline)
}

func TestDeadline_ExactlyOneShiftEndsAtShiftEnd(t *testing.T) {
	cal := karachiCalendar(t)
	start := at(cal, 2025, time.January, 6, 9, 0)

	deadline, err := engine.Deadline(start, 8*60, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 17, 0), deadline)

	deadline, err = engine.Deadline(start, 9*60, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 7, 10, 0), deadline)
}

func TestDeadlineForHours_DecimalHours(t *testing.T) {
	cal := karachiCalendar(t)
	start := at(cal, 2025, time.January, 6, 9, 0)

	deadline, err := engine.DeadlineForHours(start, "1.5", cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 10, 30), deadline)

	_, err = engine.DeadlineForHours(start, "soon", cal, nil)
	assert.ErrorIs(t, err, workcal.ErrInvalidDuration)
}

func TestDeadline_ZeroDurationSnapsToWorkingTime(t *testing.T) {
	cal := karachiCalendar(t)

	tests := []struct {
		name  string
		start time.Time
		want  time.Time
	}{
		{"saturday", at(cal, 2025, time.January, 4, 12, 0), at(cal, 2025, time.January, 6, 9, 0)},
		{"before shift", at(cal, 2025, time.January, 6, 7, 0), at(cal, 2025, time.January, 6, 9, 0)},
		{"after shift", at(cal, 2025, time.January, 6, 17, 0), at(cal, 2025, time.January, 7, 9, 0)},
		{"inside shift", at(cal, 2025, time.January, 6, 10, 15), at(cal, 2025, time.January, 6, 10, 15)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.Deadline(tt.start, 0, cal, nil)
			require.NoError(t, err)
			assertInstant(t, tt.want, got)
		})
	}
}

func TestDeadline_TruncatesSeconds(t *testing.T) {
	cal := karachiCalendar(t)
	start := at(cal, 2025, time.January, 6, 9, 0).Add(42 * time.Second)

	deadline, err := engine.Deadline(start, 10, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 9, 10), deadline)
}

func TestDeadline_DaylightSavingWeekend(t *testing.T) {
	// New York springs forward on Sunday 2025-03-09; the shift is still
	// 09:00-17:00 on the wall clock either side of it.
	cal, err := workcal.NewCalendar(workcal.CalendarConfig{
		WorkingDays: weekdays, StartTime: "09:00", EndTime: "17:00", Timezone: "America/New_York",
	})
	require.NoError(t, err)

	deadline, err := engine.Deadline(at(cal, 2025, time.March, 7, 16, 0), 120, cal, nil)
	require.NoError(t, err)
	assertInstant(t, time.Date(2025, time.March, 10, 14, 0, 0, 0, time.UTC), deadline)
}

// =============================================================================
// OVERNIGHT SHIFTS
// =============================================================================

func TestDeadline_OvernightWraparound(t *testing.T) {
	// GIVEN: 22:00-06:00 shift, start Monday 23:00
	// WHEN: 120 minutes are required
	// THEN: deadline is 01:00 Tuesday, inside Monday's shift occurrence

	cal := nightCalendar(t)
	deadline, err := engine.Deadline(at(cal, 2025, time.January, 6, 23, 0), 120, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 7, 1, 0), deadline)
}

func TestDeadline_OvernightTailBelongsToStartDay(t *testing.T) {
	cal := nightCalendar(t)

	// Saturday 02:00 sits in Friday's shift even though Saturday is off.
	deadline, err := engine.Deadline(at(cal, 2025, time.January, 11, 2, 0), 60, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 11, 3, 0), deadline)

	// Monday 02:00 has no Sunday shift to belong to; work starts Monday 22:00.
	deadline, err = engine.Deadline(at(cal, 2025, time.January, 6, 2, 0), 60, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 23, 0), deadline)
}

func TestDeadline_OvernightShiftSpansRolloverIntoNextShift(t *testing.T) {
	cal := nightCalendar(t)

	// 480 from Friday 22:00 uses the whole shift to Saturday 06:00; 481
	// skips the weekend and needs one minute of Monday night.
	deadline, err := engine.Deadline(at(cal, 2025, time.January, 10, 22, 0), 480, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 11, 6, 0), deadline)

	deadline, err = engine.Deadline(at(cal, 2025, time.January, 10, 22, 0), 481, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 13, 22, 1), deadline)
}

func TestDeadline_SaturdayOverride(t *testing.T) {
	cal := saturdayCalendar(t, "10:00", "14:00")

	// One hour left on Saturday, Sunday is off, one hour Monday.
	deadline, err := engine.Deadline(at(cal, 2025, time.January, 11, 13, 0), 120, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 13, 10, 0), deadline)
}

func TestDeadline_SaturdayNightIntoSunday(t *testing.T) {
	// The Saturday shift runs into Sunday; its tail counts even though
	// Sunday is not a working day.
	cal := saturdayCalendar(t, "20:00", "02:00")

	deadline, err := engine.Deadline(at(cal, 2025, time.January, 11, 23, 0), 120, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 12, 1, 0), deadline)
}

// =============================================================================
// LEAVE
// =============================================================================

func TestDeadline_FullDayLeaveSkipsTheDay(t *testing.T) {
	cal := karachiCalendar(t)
	leaves := []workcal.LeaveRecord{{
		Start: at(cal, 2025, time.January, 6, 0, 0),
		End:   at(cal, 2025, time.January, 7, 0, 0),
	}}

	deadline, err := engine.Deadline(at(cal, 2025, time.January, 6, 9, 0), 60, cal, leaves)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 7, 10, 0), deadline)
}

func TestDeadline_LeaveInsideLandingWindow(t *testing.T) {
	cal := karachiCalendar(t)
	leaves := []workcal.LeaveRecord{{
		Start: at(cal, 2025, time.January, 6, 10, 0),
		End:   at(cal, 2025, time.January, 6, 11, 0),
	}}
	start := at(cal, 2025, time.January, 6, 9, 0)

	deadline, err := engine.Deadline(start, 180, cal, leaves)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 13, 0), deadline)

	// Work that completes exactly where the leave begins lands on its start.
	deadline, err = engine.Deadline(start, 60, cal, leaves)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 10, 0), deadline)

	// A zero duration starting inside the leave waits for it to end.
	deadline, err = engine.Deadline(at(cal, 2025, time.January, 6, 10, 30), 0, cal, leaves)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 11, 0), deadline)
}

func TestDeadline_OverlappingLeavesCountOnce(t *testing.T) {
	cal := karachiCalendar(t)
	leaves := []workcal.LeaveRecord{
		{Start: at(cal, 2025, time.January, 6, 10, 0), End: at(cal, 2025, time.January, 6, 12, 0)},
		{Start: at(cal, 2025, time.January, 6, 11, 0), End: at(cal, 2025, time.January, 6, 13, 0)},
	}

	// 09:00-10:00 free, 10:00-13:00 leave, 13:00-17:00 free: 300 free minutes.
	deadline, err := engine.Deadline(at(cal, 2025, time.January, 6, 9, 0), 300, cal, leaves)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 6, 17, 0), deadline)
}

// =============================================================================
// FAILURE MODES
// =============================================================================

func TestDeadline_StepBudgetExhausted(t *testing.T) {
	cal := karachiCalendar(t)
	leaves := []workcal.LeaveRecord{{
		Start: at(cal, 2025, time.January, 1, 0, 0),
		End:   at(cal, 2028, time.January, 1, 0, 0),
	}}

	_, err := workcal.Engine{Budget: 30}.Deadline(at(cal, 2025, time.January, 6, 9, 0), 60, cal, leaves)
	require.Error(t, err)
	assert.ErrorIs(t, err, workcal.ErrCalendarUnsatisfiable)
	assert.False(t, workcal.IsClientError(err))

	var unsat *workcal.UnsatisfiableError
	require.True(t, errors.As(err, &unsat))
	assert.Equal(t, workcal.StepBudget(30), unsat.Budget)
	assert.Equal(t, 60, unsat.RemainingMinutes)
}

func TestDeadline_BudgetBoundsLongDurations(t *testing.T) {
	cal := karachiCalendar(t)
	start := at(cal, 2025, time.January, 6, 9, 0)

	// Two working weeks cannot fit in seven calendar days.
	_, err := workcal.Engine{Budget: 7}.Deadline(start, 10*480, cal, nil)
	assert.ErrorIs(t, err, workcal.ErrCalendarUnsatisfiable)

	// The default budget handles it.
	deadline, err := engine.Deadline(start, 10*480, cal, nil)
	require.NoError(t, err)
	assertInstant(t, at(cal, 2025, time.January, 17, 17, 0), deadline)
}

func TestDeadline_RejectsBadInput(t *testing.T) {
	cal := karachiCalendar(t)

	_, err := engine.Deadline(time.Now(), -1, cal, nil)
	assert.ErrorIs(t, err, workcal.ErrInvalidDuration)

	_, err = engine.Deadline(time.Now(), 10, nil, nil)
	assert.ErrorIs(t, err, workcal.ErrInvalidCalendar)
}

// =============================================================================
// PROPERTIES
// =============================================================================

func propertyCalendars(t *testing.T) map[string]*workcal.Calendar {
	full, err := workcal.NewCalendar(workcal.CalendarConfig{
		WorkingDays: []int{2, 4}, StartTime: "06:00", EndTime: "06:00", Timezone: "Europe/Berlin",
	})
	require.NoError(t, err)
	return map[string]*workcal.Calendar{
		"karachi":  karachiCalendar(t),
		"night":    nightCalendar(t),
		"saturday": saturdayCalendar(t, "20:00", "02:00"),
		"24h":      full,
		"new-york": newYorkNightCalendar(t),
	}
}

func TestDeadline_Monotonic(t *testing.T) {
	for name, cal := range propertyCalendars(t) {
		t.Run(name, func(t *testing.T) {
			start := at(cal, 2025, time.January, 8, 14, 7)
			leaves := []workcal.LeaveRecord{
				{Start: at(cal, 2025, time.January, 9, 10, 0), End: at(cal, 2025, time.January, 10, 3, 0)},
			}

			prev := time.Time{}
			for m := 0; m <= 3000; m += 7 {
				d, err := engine.Deadline(start, m, cal, leaves)
				require.NoError(t, err)
				require.False(t, d.Before(prev), "deadline for %d minutes (%s) before %s", m, d, prev)
				prev = d
			}
		})
	}
}

func TestDeadline_InverseOfWorkingMinutesBetween(t *testing.T) {
	for name, cal := range propertyCalendars(t) {
		t.Run(name, func(t *testing.T) {
			starts := []time.Time{
				at(cal, 2025, time.January, 6, 9, 0),
				at(cal, 2025, time.January, 8, 3, 33),
				at(cal, 2025, time.January, 11, 23, 30),
				at(cal, 2025, time.January, 12, 12, 0),
			}
			leaveSets := [][]workcal.LeaveRecord{
				nil,
				{
					{Start: at(cal, 2025, time.January, 9, 10, 0), End: at(cal, 2025, time.January, 9, 12, 30)},
					{Start: at(cal, 2025, time.January, 14, 0, 0), End: at(cal, 2025, time.January, 15, 0, 0)},
				},
			}

			for _, leaves := range leaveSets {
				for _, s := range starts {
					for m := 0; m <= 4000; m += 13 {
						d, err := engine.Deadline(s, m, cal, leaves)
						require.NoError(t, err)

						got, err := engine.WorkingMinutesBetween(s, d, cal, leaves)
						require.NoError(t, err)
						require.Equal(t, m, got, "start %s, deadline %s", s, d)
					}
				}
			}
		})
	}
}

func TestDeadline_RecoversReachableEndpoint(t *testing.T) {
	cal := karachiCalendar(t)
	start := at(cal, 2025, time.January, 6, 9, 0)
	friday := at(cal, 2025, time.January, 10, 17, 0)

	minutes, err := engine.WorkingMinutesBetween(start, friday, cal, nil)
	require.NoError(t, err)
	assert.Equal(t, 5*480, minutes)

	deadline, err := engine.Deadline(start, minutes, cal, nil)
	require.NoError(t, err)
	assertInstant(t, friday, deadline)
}

// =============================================================================
// DAYLIGHT SAVING
// =============================================================================

var everyDay = []int{1, 2, 3, 4, 5, 6, 7}

func newYorkNightCalendar(t *testing.T) *workcal.Calendar {
	t.Helper()
	cal, err := workcal.NewCalendar(workcal.CalendarConfig{
		WorkingDays: everyDay, StartTime: "22:00", EndTime: "06:00", Timezone: "America/New_York",
	})
	require.NoError(t, err)
	return cal
}

func newYorkAllDayCalendar(t *testing.T) *workcal.Calendar {
	t.Helper()
	cal, err := workcal.NewCalendar(workcal.CalendarConfig{
		WorkingDays: everyDay, StartTime: "06:00", EndTime: "06:00", Timezone: "America/New_York",
	})
	require.NoError(t, err)
	return cal
}

func TestDeadline_SpringForwardSkipsMissingHour(t *testing.T) {
	// GIVEN: A 22:00-06:00 night shift in New York, start Saturday 23:00 EST
	//        on the night clocks jump from 02:00 to 03:00
	// WHEN: The deadline falls on or after the missing hour
	// THEN: It lands after the jump and the missing hour is not counted

	cal := newYorkNightCalendar(t)
	start := at(cal, 2025, time.March, 8, 23, 0)

	tests := []struct {
		minutes int
		want    time.Time
	}{
		{150, time.Date(2025, time.March, 9, 6, 30, 0, 0, time.UTC)}, // 01:30 EST
		{179, time.Date(2025, time.March, 9, 6, 59, 0, 0, time.UTC)}, // 01:59 EST
		{180, time.Date(2025, time.March, 9, 7, 0, 0, 0, time.UTC)},  // 03:00 EDT
		{210, time.Date(2025, time.March, 9, 7, 30, 0, 0, time.UTC)}, // 03:30 EDT
		{240, time.Date(2025, time.March, 9, 8, 0, 0, 0, time.UTC)},  // 04:00 EDT
	}
	for _, tt := range tests {
		d, err := engine.Deadline(start, tt.minutes, cal, nil)
		require.NoError(t, err)
		assertInstant(t, tt.want, d)

		back, err := engine.WorkingMinutesBetween(start, d, cal, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.minutes, back, "minutes back from %s", d)
	}
}

func TestDeadline_FallBackNeverLandsBeforeStart(t *testing.T) {
	// GIVEN: A start inside the second 01:00-02:00 hour of the night clocks fall back
	// WHEN: Short deadlines are computed from it
	// THEN: They resolve to the second occurrence, never to the hour before

	cal := newYorkNightCalendar(t)
	start := time.Date(2025, time.November, 2, 6, 30, 0, 0, time.UTC) // 01:30 EST

	d, err := engine.Deadline(start, 0, cal, nil)
	require.NoError(t, err)
	assertInstant(t, start, d)

	d, err = engine.Deadline(start, 15, cal, nil)
	require.NoError(t, err)
	assertInstant(t, time.Date(2025, time.November, 2, 6, 45, 0, 0, time.UTC), d)

	back, err := engine.WorkingMinutesBetween(start, d, cal, nil)
	require.NoError(t, err)
	assert.Equal(t, 15, back)
}

func TestDeadline_PropertiesAcrossDaylightSaving(t *testing.T) {
	cals := map[string]*workcal.Calendar{
		"night":   newYorkNightCalendar(t),
		"all-day": newYorkAllDayCalendar(t),
	}
	starts := []time.Time{
		time.Date(2025, time.March, 9, 2, 0, 0, 0, time.UTC),     // Sat 21:00 EST
		time.Date(2025, time.March, 9, 4, 0, 0, 0, time.UTC),     // Sat 23:00 EST
		time.Date(2025, time.March, 9, 6, 45, 0, 0, time.UTC),    // Sun 01:45 EST
		time.Date(2025, time.November, 2, 3, 0, 0, 0, time.UTC),  // Sat 23:00 EDT
		time.Date(2025, time.November, 2, 5, 30, 0, 0, time.UTC), // 01:30 EDT
		time.Date(2025, time.November, 2, 6, 30, 0, 0, time.UTC), // 01:30 EST
	}

	for name, cal := range cals {
		t.Run(name, func(t *testing.T) {
			for _, s := range starts {
				prev := time.Time{}
				for m := 0; m <= 1500; m += 5 {
					d, err := engine.Deadline(s, m, cal, nil)
					require.NoError(t, err)
					require.False(t, d.Before(prev), "start %s: deadline for %d minutes (%s) before %s", s, m, d, prev)
					require.False(t, d.Before(s), "start %s: deadline %s before start", s, d)
					prev = d

					got, err := engine.WorkingMinutesBetween(s, d, cal, nil)
					require.NoError(t, err)
					require.Equal(t, m, got, "start %s, deadline %s", s, d)
				}
			}
		})
	}
}
