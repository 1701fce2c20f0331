/*
handlers.go - HTTP API handlers for the SLA deadline service

PURPOSE:
  Exposes the working-calendar deadline engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the sla.Service.

ENDPOINTS:
  SLA:
    POST   /api/sla/deadline                  Compute (or resume) a deadline
    POST   /api/sla/status                    Remaining or overdue time
    POST   /api/sla/working-minutes           Working minutes between instants

  Developers:
    PUT    /api/developers/{id}/calendar      Assign a working calendar
    GET    /api/developers/{id}/calendar      Get the assigned calendar
    POST   /api/developers/{id}/leaves        Record a leave
    GET    /api/developers/{id}/leaves        List leaves
    POST   /api/developers/{id}/leaves/{leaveID}/approve
    POST   /api/developers/{id}/leaves/{leaveID}/reject

  Scenarios:
    GET    /api/scenarios                     List demo scenarios
    POST   /api/scenarios/load                Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Service: Deadline computations (interface, mocked in tests)
  - Store: Calendar and leave persistence
  - Factory: Calendar validation before it is stored

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, invalid calendar, invalid range or request
  - 404: No calendar for the developer, unknown leave
  - 500: Calendar unsatisfiable within the step budget, store failures

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/warp/sla-engine/factory"
	"github.com/warp/sla-engine/sla"
	"github.com/warp/sla-engine/workcal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// DeadlineService is the part of sla.Service the handlers call.
type DeadlineService interface {
	ComputeDeadline(ctx context.Context, req sla.DeadlineRequest) (sla.DeadlineResult, error)
	Status(ctx context.Context, req sla.StatusRequest) (sla.StatusResult, error)
	WorkingMinutes(ctx context.Context, developerID string, from, to time.Time) (int, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service DeadlineService
	Store   sla.Store
	Factory *factory.CalendarFactory
	Log     *slog.Logger

	// Now anchors demo scenario dates
	Now func() time.Time

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler over the given service and store.
func NewHandler(svc DeadlineService, store sla.Store, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		Service: svc,
		Store:   store,
		Factory: factory.NewCalendarFactory(),
		Log:     log,
		Now:     time.Now,
	}
}

// =============================================================================
// SLA HANDLERS
// =============================================================================

// ComputeDeadline returns the SLA deadline for a developer.
func (h *Handler) ComputeDeadline(w http.ResponseWriter, r *http.Request) {
	const op = "api.ComputeDeadline"

	var req DeadlineRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.badJSON(w, r, op, err)
		return
	}

	res, err := h.Service.ComputeDeadline(r.Context(), toDeadlineRequest(req))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	render.JSON(w, r, toDeadlineDTO(res))
}

// Status returns remaining or overdue working time for a deadline.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	const op = "api.Status"

	var req StatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.badJSON(w, r, op, err)
		return
	}

	res, err := h.Service.Status(r.Context(), sla.StatusRequest{
		DeveloperID: req.DeveloperID,
		Deadline:    req.Deadline,
		Now:         req.Now,
		HoursPerDay: req.SLAHoursPerDay,
	})
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	render.JSON(w, r, toStatusDTO(res))
}

// WorkingMinutes returns the working minutes between two instants.
func (h *Handler) WorkingMinutes(w http.ResponseWriter, r *http.Request) {
	const op = "api.WorkingMinutes"

	var req WorkingMinutesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.badJSON(w, r, op, err)
		return
	}

	minutes, err := h.Service.WorkingMinutes(r.Context(), req.DeveloperID, req.From, req.To)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	render.JSON(w, r, WorkingMinutesDTO{Minutes: minutes, Display: workcal.FormatMinutes(minutes)})
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// PutCalendar validates and assigns a developer's calendar.
func (h *Handler) PutCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "api.PutCalendar"
	developerID := chi.URLParam(r, "id")

	var body factory.CalendarJSON
	if err := render.DecodeJSON(r.Body, &body); err != nil {
		h.badJSON(w, r, op, err)
		return
	}

	cal, err := h.Factory.FromConfig(body.Config())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if err := h.Store.SaveCalendar(r.Context(), developerID, cal.Config()); err != nil {
		h.fail(w, r, op, fmt.Errorf("save calendar: %w", err))
		return
	}

	h.Log.Info("calendar assigned",
		slog.String("developer_id", developerID),
		slog.String("timezone", cal.Location().String()),
	)
	render.JSON(w, r, CalendarDTO{
		DeveloperID: developerID,
		Calendar:    factory.ToJSON(cal.Config()),
		ShiftHours:  cal.ShiftHours(),
	})
}

// GetCalendar returns a developer's calendar.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	const op = "api.GetCalendar"
	developerID := chi.URLParam(r, "id")

	cfg, err := h.Store.GetCalendar(r.Context(), developerID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	if cfg == nil {
		h.fail(w, r, op, fmt.Errorf("%w: developer %q", workcal.ErrCalendarNotFound, developerID))
		return
	}

	dto := CalendarDTO{DeveloperID: developerID, Calendar: factory.ToJSON(*cfg)}
	if cal, err := h.Factory.FromConfig(*cfg); err == nil {
		dto.ShiftHours = cal.ShiftHours()
	}
	render.JSON(w, r, dto)
}

// =============================================================================
// LEAVE HANDLERS
// =============================================================================

// CreateLeave records a leave for a developer under a fresh ID.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	const op = "api.CreateLeave"
	developerID := chi.URLParam(r, "id")

	var req CreateLeaveRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.badJSON(w, r, op, err)
		return
	}

	leave := sla.Leave{
		ID:          uuid.NewString(),
		DeveloperID: developerID,
		Start:       req.Start,
		End:         req.End,
		Status:      sla.LeaveStatus(req.Status),
		Reason:      req.Reason,
		CreatedAt:   h.now(),
	}
	if leave.Status == "" {
		leave.Status = sla.LeavePending
	}
	if err := validateLeave(leave); err != nil {
		h.fail(w, r, op, err)
		return
	}

	if err := h.Store.SaveLeave(r.Context(), leave); err != nil {
		h.fail(w, r, op, fmt.Errorf("save leave: %w", err))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, toLeaveDTO(leave))
}

// ListLeaves returns all leaves of a developer.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	const op = "api.ListLeaves"

	leaves, err := h.Store.ListLeaves(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	dtos := make([]LeaveDTO, len(leaves))
	for i, l := range leaves {
		dtos[i] = toLeaveDTO(l)
	}
	render.JSON(w, r, dtos)
}

// ApproveLeave marks a leave approved so deadlines start skipping it.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, "api.ApproveLeave", sla.LeaveApproved)
}

// RejectLeave marks a leave rejected.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.setLeaveStatus(w, r, "api.RejectLeave", sla.LeaveRejected)
}

func (h *Handler) setLeaveStatus(w http.ResponseWriter, r *http.Request, op string, status sla.LeaveStatus) {
	developerID := chi.URLParam(r, "id")
	leaveID := chi.URLParam(r, "leaveID")

	leaves, err := h.Store.ListLeaves(r.Context(), developerID)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	for _, l := range leaves {
		if l.ID != leaveID {
			continue
		}
		l.Status = status
		if err := h.Store.SaveLeave(r.Context(), l); err != nil {
			h.fail(w, r, op, fmt.Errorf("save leave: %w", err))
			return
		}
		h.Log.Info("leave status changed",
			slog.String("developer_id", developerID),
			slog.String("leave_id", leaveID),
			slog.String("status", string(status)),
		)
		render.JSON(w, r, toLeaveDTO(l))
		return
	}

	h.writeError(w, r, http.StatusNotFound, "leave_not_found", "Leave not found",
		fmt.Sprintf("developer %q has no leave %q", developerID, leaveID))
}

func validateLeave(l sla.Leave) error {
	if l.Start.IsZero() || l.End.IsZero() {
		return &sla.RequestError{Field: "start/end", Reason: "required"}
	}
	if !l.End.After(l.Start) {
		return &sla.RequestError{Field: "end", Reason: "must be after start"}
	}
	if !l.Status.Valid() {
		return &sla.RequestError{Field: "status", Reason: fmt.Sprintf("unknown status %q", l.Status)}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handler) badJSON(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Log.Debug("invalid request body", slog.String("op", op), slog.String("error", err.Error()))
	h.writeError(w, r, http.StatusBadRequest, "invalid_request", "Invalid JSON", err.Error())
}

// fail maps an error to its HTTP status and error code.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.Log.Error("request failed", slog.String("op", op), slog.String("error", err.Error()))
	} else {
		h.Log.Debug("request rejected", slog.String("op", op), slog.String("error", err.Error()))
	}
	h.writeError(w, r, status, code, message, err.Error())
}

func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, workcal.ErrCalendarNotFound):
		return http.StatusNotFound, "calendar_not_found", "Calendar not found"
	case errors.Is(err, workcal.ErrInvalidCalendar):
		return http.StatusBadRequest, "invalid_calendar", "Invalid calendar"
	case errors.Is(err, workcal.ErrInvalidTimeRange):
		return http.StatusBadRequest, "invalid_time_range", "Invalid time range"
	case errors.Is(err, workcal.ErrInvalidDuration), errors.Is(err, sla.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid_request", "Invalid request"
	case errors.Is(err, sla.ErrLeaveConflict):
		return http.StatusConflict, "leave_conflict", "Leave belongs to another developer"
	case errors.Is(err, workcal.ErrCalendarUnsatisfiable):
		return http.StatusInternalServerError, "calendar_unsatisfiable", "Deadline not reachable on this calendar"
	default:
		return http.StatusInternalServerError, "internal", "Internal error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message, Code: code, Details: details})
}
