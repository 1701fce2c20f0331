/*
service.go - Stateless SLA deadline service

PURPOSE:
  The request/response entry point in front of the engine. It validates a
  request, resolves the developer's calendar and approved leaves (in
  parallel), and runs the matching engine operation.

OPERATIONS:
  ComputeDeadline: SLA hours from a start instant -> deadline
                   or, with ResumeFromHold, held SLA -> recalculated deadline
  Status:          deadline + reference instant -> remaining or overdue time
  WorkingMinutes:  strict working-minute count between two instants

LEAVE WINDOW:
  Stores hand back approved leaves inside a bounded lookahead window
  (LeaveLookahead, 60 days by default) starting at the earliest instant the
  operation looks at. Leave further out is not considered.

REFERENCE TIME:
  "now" defaults come from the Now field, never from inside the engine, so
  tests pin it without touching the system clock.

SEE ALSO:
  - store.go:               Lookup interfaces
  - workcal/deadline.go:    Forward walker
  - workcal/resume.go:      Hold/resume recalculation
  - api/handlers.go:        HTTP surface
*/
package sla

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/sla-engine/factory"
	"github.com/warp/sla-engine/workcal"
)

// DefaultLeaveLookahead matches the 60-day window leave stores serve.
const DefaultLeaveLookahead = 60 * 24 * time.Hour

// Service answers SLA questions for developers. It keeps no state between
// calls beyond its collaborators and is safe for concurrent use.
type Service struct {
	Calendars CalendarSource
	Leaves    LeaveSource
	Factory   *factory.CalendarFactory
	Engine    workcal.Engine

	LeaveLookahead time.Duration
	Now            func() time.Time
	Log            *slog.Logger
}

// NewService creates a service with default engine budget and lookahead.
func NewService(calendars CalendarSource, leaves LeaveSource) *Service {
	return &Service{
		Calendars:      calendars,
		Leaves:         leaves,
		Factory:        factory.NewCalendarFactory(),
		LeaveLookahead: DefaultLeaveLookahead,
		Now:            time.Now,
		Log:            slog.Default(),
	}
}

// =============================================================================
// REQUEST / RESULT TYPES
// =============================================================================

type DeadlineRequest struct {
	DeveloperID string
	StartTime   *time.Time // nil means now
	SLAHours    decimal.Decimal

	ResumeFromHold      bool
	HeldAt              *time.Time
	OriginalSLADeadline *time.Time
}

type DeadlineResult struct {
	Deadline  time.Time
	StartTime time.Time
	// Minutes is the SLA counted forward: the requested duration, or what
	// was left at the hold when resuming.
	Minutes  int
	Resumed  bool
	Breached bool
}

type StatusRequest struct {
	DeveloperID string
	Deadline    time.Time
	Now         *time.Time       // nil means now
	HoursPerDay *decimal.Decimal // nil means the calendar's shift length
}

type StatusResult struct {
	workcal.Status
	Now         time.Time
	Display     string          // "Xh Ym" of remaining or overdue time
	OverdueDays decimal.Decimal // overdue minutes in working days
}

// =============================================================================
// OPERATIONS
// =============================================================================

// ComputeDeadline returns the deadline for a new SLA or, when the request
// asks to resume from hold, the recalculated deadline of a paused one.
func (s *Service) ComputeDeadline(ctx context.Context, req DeadlineRequest) (DeadlineResult, error) {
	if err := validateDeadline(req); err != nil {
		return DeadlineResult{}, err
	}
	start := s.now()
	if req.StartTime != nil {
		start = *req.StartTime
	}

	if req.ResumeFromHold {
		return s.resume(ctx, req, start)
	}

	minutes, err := workcal.MinutesFromHours(req.SLAHours)
	if err != nil {
		return DeadlineResult{}, err
	}

	cal, leaves, err := s.load(ctx, req.DeveloperID, start, start.Add(s.lookahead()))
	if err != nil {
		return DeadlineResult{}, err
	}

	deadline, err := s.Engine.Deadline(start, minutes, cal, leaves)
	if err != nil {
		return DeadlineResult{}, fmt.Errorf("developer %q: %w", req.DeveloperID, err)
	}

	s.log().Debug("deadline computed",
		slog.String("developer_id", req.DeveloperID),
		slog.Int("minutes", minutes),
		slog.Int("leaves", len(leaves)),
		slog.Time("start", start),
		slog.Time("deadline", deadline),
	)
	return DeadlineResult{Deadline: deadline, StartTime: start, Minutes: minutes}, nil
}

func (s *Service) resume(ctx context.Context, req DeadlineRequest, resumeAt time.Time) (DeadlineResult, error) {
	heldAt, original := *req.HeldAt, *req.OriginalSLADeadline

	from := heldAt
	if resumeAt.Before(from) {
		from = resumeAt
	}
	cal, leaves, err := s.load(ctx, req.DeveloperID, from, resumeAt.Add(s.lookahead()))
	if err != nil {
		return DeadlineResult{}, err
	}

	res, err := s.Engine.Resume(workcal.ResumeInput{
		HeldAt:           heldAt,
		OriginalDeadline: original,
		ResumeAt:         resumeAt,
		Calendar:         cal,
		LeavesAtHold:     leaves,
		LeavesAtResume:   leaves,
	})
	if err != nil {
		return DeadlineResult{}, fmt.Errorf("developer %q: %w", req.DeveloperID, err)
	}

	s.log().Debug("deadline recalculated after hold",
		slog.String("developer_id", req.DeveloperID),
		slog.Time("held_at", heldAt),
		slog.Time("resume_at", resumeAt),
		slog.Int("remaining_minutes", res.RemainingMinutes),
		slog.Bool("breached", res.Breached),
		slog.Time("deadline", res.Deadline),
	)
	return DeadlineResult{
		Deadline:  res.Deadline,
		StartTime: resumeAt,
		Minutes:   res.RemainingMinutes,
		Resumed:   true,
		Breached:  res.Breached,
	}, nil
}

// Status reports how much working time remains before the deadline, or
// how much has elapsed since it was breached.
func (s *Service) Status(ctx context.Context, req StatusRequest) (StatusResult, error) {
	if req.DeveloperID == "" {
		return StatusResult{}, &RequestError{Field: "developer_id", Reason: "required"}
	}
	if req.Deadline.IsZero() {
		return StatusResult{}, &RequestError{Field: "deadline", Reason: "required"}
	}
	now := s.now()
	if req.Now != nil {
		now = *req.Now
	}

	from, to := req.Deadline, now
	if to.Before(from) {
		from, to = to, from
	}
	cal, leaves, err := s.load(ctx, req.DeveloperID, from, to)
	if err != nil {
		return StatusResult{}, err
	}

	st, err := s.Engine.Status(req.Deadline, now, cal, leaves)
	if err != nil {
		return StatusResult{}, fmt.Errorf("developer %q: %w", req.DeveloperID, err)
	}

	res := StatusResult{Status: st, Now: now, OverdueDays: decimal.Zero}
	if st.Overdue {
		hoursPerDay := cal.ShiftHours()
		if req.HoursPerDay != nil {
			hoursPerDay = *req.HoursPerDay
		}
		res.Display = workcal.FormatMinutes(st.OverdueMinutes)
		res.OverdueDays = workcal.OverdueDays(st.OverdueMinutes, hoursPerDay)
	} else {
		res.Display = workcal.FormatMinutes(st.RemainingMinutes)
	}
	return res, nil
}

// WorkingMinutes counts working minutes in [from, to). Unlike the engine's
// clamping walker, a reversed range is rejected.
func (s *Service) WorkingMinutes(ctx context.Context, developerID string, from, to time.Time) (int, error) {
	if developerID == "" {
		return 0, &RequestError{Field: "developer_id", Reason: "required"}
	}
	if to.Before(from) {
		return 0, fmt.Errorf("%w: from %s, to %s", workcal.ErrInvalidTimeRange,
			from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	cal, leaves, err := s.load(ctx, developerID, from, to)
	if err != nil {
		return 0, err
	}
	return s.Engine.WorkingMinutesInRange(from, to, cal, leaves)
}

// =============================================================================
// HELPERS
// =============================================================================

func validateDeadline(req DeadlineRequest) error {
	if req.DeveloperID == "" {
		return &RequestError{Field: "developer_id", Reason: "required"}
	}
	if req.SLAHours.IsNegative() {
		return &RequestError{Field: "sla_hours", Reason: "must be >= 0"}
	}
	if req.ResumeFromHold {
		if req.HeldAt == nil {
			return &RequestError{Field: "held_at", Reason: "required when resuming from hold"}
		}
		if req.OriginalSLADeadline == nil {
			return &RequestError{Field: "original_sla_deadline", Reason: "required when resuming from hold"}
		}
	}
	return nil
}

// load resolves the calendar and the approved leaves overlapping
// [from, to) concurrently.
func (s *Service) load(ctx context.Context, developerID string, from, to time.Time) (*workcal.Calendar, []workcal.LeaveRecord, error) {
	var (
		cfg    *workcal.CalendarConfig
		leaves []workcal.LeaveRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.Calendars.GetCalendar(gctx, developerID)
		if err != nil {
			return fmt.Errorf("load calendar for %q: %w", developerID, err)
		}
		cfg = c
		return nil
	})
	if s.Leaves != nil {
		g.Go(func() error {
			l, err := s.Leaves.ApprovedLeaves(gctx, developerID, from, to)
			if err != nil {
				return fmt.Errorf("load leaves for %q: %w", developerID, err)
			}
			leaves = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	if cfg == nil {
		return nil, nil, fmt.Errorf("%w: developer %q", workcal.ErrCalendarNotFound, developerID)
	}

	f := s.Factory
	if f == nil {
		f = factory.NewCalendarFactory()
	}
	cal, err := f.FromConfig(*cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("developer %q: %w", developerID, err)
	}

	s.log().Debug("calendar resolved",
		slog.String("developer_id", developerID),
		slog.String("timezone", cfg.Timezone),
		slog.Int("leaves", len(leaves)),
	)
	return cal, leaves, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func (s *Service) lookahead() time.Duration {
	if s.LeaveLookahead <= 0 {
		return DefaultLeaveLookahead
	}
	return s.LeaveLookahead
}

func (s *Service) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
