// Package store provides in-process sla.Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/sla-engine/sla"
	"github.com/warp/sla-engine/workcal"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	calendars map[string]workcal.CalendarConfig
	leaves    map[string][]sla.Leave // per developer, sorted by Start
	owners    map[string]string      // leave ID -> developer ID
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		calendars: make(map[string]workcal.CalendarConfig),
		leaves:    make(map[string][]sla.Leave),
		owners:    make(map[string]string),
		now:       time.Now,
	}
}

// SaveCalendar assigns or replaces a developer's calendar.
func (m *Memory) SaveCalendar(_ context.Context, developerID string, cfg workcal.CalendarConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cfg.WorkingDays = append([]int(nil), cfg.WorkingDays...)
	m.calendars[developerID] = cfg
	return nil
}

// GetCalendar returns nil when the developer has no calendar.
func (m *Memory) GetCalendar(_ context.Context, developerID string) (*workcal.CalendarConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.calendars[developerID]
	if !ok {
		return nil, nil
	}
	cfg.WorkingDays = append([]int(nil), cfg.WorkingDays...)
	return &cfg, nil
}

// SaveLeave inserts a leave, or replaces the developer's leave with the
// same ID. Missing IDs, statuses and timestamps are filled in.
func (m *Memory) SaveLeave(_ context.Context, leave sla.Leave) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if owner, ok := m.owners[leave.ID]; ok && owner != leave.DeveloperID {
		return fmt.Errorf("save leave %s for %s: %w", leave.ID, leave.DeveloperID, sla.ErrLeaveConflict)
	}
	if leave.Status == "" {
		leave.Status = sla.LeavePending
	}
	if leave.CreatedAt.IsZero() {
		leave.CreatedAt = m.now()
	}

	list := m.leaves[leave.DeveloperID]
	for i := range list {
		if list[i].ID == leave.ID {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}

	// Binary search for insertion point keeps the list ordered by start
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Start.After(leave.Start)
	})
	list = append(list, sla.Leave{})
	copy(list[i+1:], list[i:])
	list[i] = leave
	m.leaves[leave.DeveloperID] = list
	m.owners[leave.ID] = leave.DeveloperID
	return nil
}

// ListLeaves returns every leave of the developer ordered by start.
func (m *Memory) ListLeaves(_ context.Context, developerID string) ([]sla.Leave, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.leaves[developerID]
	out := make([]sla.Leave, len(list))
	copy(out, list)
	return out, nil
}

// ApprovedLeaves returns approved leaves overlapping [from, to).
func (m *Memory) ApprovedLeaves(_ context.Context, developerID string, from, to time.Time) ([]workcal.LeaveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []workcal.LeaveRecord
	for _, l := range m.leaves[developerID] {
		if !l.Start.Before(to) {
			break
		}
		if l.Status == sla.LeaveApproved && l.Overlaps(from, to) {
			out = append(out, l.Record())
		}
	}
	return out, nil
}

// Reset removes all calendars and leaves.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calendars = make(map[string]workcal.CalendarConfig)
	m.leaves = make(map[string][]sla.Leave)
	m.owners = make(map[string]string)
	return nil
}

var _ sla.Store = (*Memory)(nil)
