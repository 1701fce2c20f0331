package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sla-engine/sla"
	"github.com/warp/sla-engine/sla/store"
	"github.com/warp/sla-engine/workcal"
)

func utc(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestMemory_CalendarRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	got, err := m.GetCalendar(ctx, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, got, "unknown developer has no calendar")

	cfg := workcal.CalendarConfig{
		WorkingDays: []int{1, 2, 3, 4, 5},
		StartTime:   "09:00",
		EndTime:     "17:00",
		Timezone:    "Asia/Karachi",
	}
	require.NoError(t, m.SaveCalendar(ctx, "dev-1", cfg))

	got, err = m.GetCalendar(ctx, "dev-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cfg, *got)

	// Mutating the returned copy must not leak into the store
	got.WorkingDays[0] = 7
	again, err := m.GetCalendar(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 1, again.WorkingDays[0])
}

func TestMemory_ApprovedLeavesFiltersStatusAndWindow(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	// GIVEN: leaves in every status, one outside the window
	leaves := []sla.Leave{
		{DeveloperID: "dev-1", Start: utc(2025, 1, 10, 0), End: utc(2025, 1, 11, 0), Status: sla.LeaveApproved},
		{DeveloperID: "dev-1", Start: utc(2025, 1, 6, 0), End: utc(2025, 1, 7, 0), Status: sla.LeaveApproved},
		{DeveloperID: "dev-1", Start: utc(2025, 1, 8, 0), End: utc(2025, 1, 9, 0), Status: sla.LeavePending},
		{DeveloperID: "dev-1", Start: utc(2025, 1, 8, 0), End: utc(2025, 1, 9, 0), Status: sla.LeaveRejected},
		{DeveloperID: "dev-1", Start: utc(2025, 3, 1, 0), End: utc(2025, 3, 2, 0), Status: sla.LeaveApproved},
		{DeveloperID: "dev-2", Start: utc(2025, 1, 6, 0), End: utc(2025, 1, 7, 0), Status: sla.LeaveApproved},
	}
	for _, l := range leaves {
		require.NoError(t, m.SaveLeave(ctx, l))
	}

	// WHEN: querying January
	got, err := m.ApprovedLeaves(ctx, "dev-1", utc(2025, 1, 1, 0), utc(2025, 2, 1, 0))
	require.NoError(t, err)

	// THEN: only approved dev-1 leaves in range, ordered by start
	assert.Equal(t, []workcal.LeaveRecord{
		{Start: utc(2025, 1, 6, 0), End: utc(2025, 1, 7, 0)},
		{Start: utc(2025, 1, 10, 0), End: utc(2025, 1, 11, 0)},
	}, got)
}

func TestMemory_ApprovedLeavesIncludesPartialOverlap(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveLeave(ctx, sla.Leave{
		DeveloperID: "dev-1",
		Start:       utc(2024, 12, 30, 0),
		End:         utc(2025, 1, 2, 0),
		Status:      sla.LeaveApproved,
	}))

	got, err := m.ApprovedLeaves(ctx, "dev-1", utc(2025, 1, 1, 0), utc(2025, 1, 5, 0))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = m.ApprovedLeaves(ctx, "dev-1", utc(2025, 1, 2, 0), utc(2025, 1, 5, 0))
	require.NoError(t, err)
	assert.Empty(t, got, "leave ending exactly at window start does not overlap")
}

func TestMemory_SaveLeaveAssignsDefaultsAndReplaces(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveLeave(ctx, sla.Leave{DeveloperID: "dev-1", Start: utc(2025, 1, 6, 0), End: utc(2025, 1, 7, 0)}))

	list, err := m.ListLeaves(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.NotEmpty(t, list[0].ID)
	assert.Equal(t, sla.LeavePending, list[0].Status)
	assert.False(t, list[0].CreatedAt.IsZero())

	// Approving under the same ID replaces the pending record
	approved := list[0]
	approved.Status = sla.LeaveApproved
	require.NoError(t, m.SaveLeave(ctx, approved))

	list, err = m.ListLeaves(ctx, "dev-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sla.LeaveApproved, list[0].Status)
}

func TestMemory_LeaveIDOwnedByAnotherDeveloper(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveLeave(ctx, sla.Leave{
		ID: "L1", DeveloperID: "alice", Start: utc(2025, 1, 6, 9), End: utc(2025, 1, 6, 12), Status: sla.LeaveApproved,
	}))

	err := m.SaveLeave(ctx, sla.Leave{ID: "L1", DeveloperID: "bob", Start: utc(2025, 1, 7, 9), End: utc(2025, 1, 7, 12)})
	assert.ErrorIs(t, err, sla.ErrLeaveConflict)

	alice, err := m.ListLeaves(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, alice, 1)

	bob, err := m.ListLeaves(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, bob)

	// After a reset the ID is free again
	require.NoError(t, m.Reset(ctx))
	require.NoError(t, m.SaveLeave(ctx, sla.Leave{ID: "L1", DeveloperID: "bob", Start: utc(2025, 1, 7, 9), End: utc(2025, 1, 7, 12)}))
}

func TestMemory_Reset(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()

	require.NoError(t, m.SaveCalendar(ctx, "dev-1", workcal.CalendarConfig{Timezone: "UTC"}))
	require.NoError(t, m.SaveLeave(ctx, sla.Leave{DeveloperID: "dev-1", Start: utc(2025, 1, 6, 0), End: utc(2025, 1, 7, 0)}))
	require.NoError(t, m.Reset(ctx))

	cfg, err := m.GetCalendar(ctx, "dev-1")
	require.NoError(t, err)
	assert.Nil(t, cfg)

	list, err := m.ListLeaves(ctx, "dev-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
