/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the service and engine types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

WIRE FORMAT:
  The SLA endpoints use the camelCase field names the order-management UI
  sends (developerId, slaHours, ...). Store endpoints for calendars and
  leaves keep snake_case, matching the calendar JSON in factory/calendar.go.
  Instants are RFC3339. Hours are decimals, sent as JSON numbers or strings.

TYPES:
  SLA:
    DeadlineRequest, DeadlineDTO
    StatusRequest, StatusDTO
    WorkingMinutesRequest, WorkingMinutesDTO

  Store:
    CalendarDTO (wraps factory.CalendarJSON)
    CreateLeaveRequest, LeaveDTO

  Scenarios:
    ScenarioDTO, LoadScenarioRequest, LoadScenarioResponse

VALIDATION:
  Validation is done in the service and handlers, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
  - sla/service.go: Request/result types these map to
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/sla-engine/factory"
	"github.com/warp/sla-engine/sla"
)

// =============================================================================
// SLA TYPES
// =============================================================================

// DeadlineRequest computes a deadline, or recalculates one after a hold.
type DeadlineRequest struct {
	DeveloperID         string          `json:"developerId"`
	StartTime           *time.Time      `json:"startTime,omitempty"`
	SLAHours            decimal.Decimal `json:"slaHours"`
	ResumeFromHold      bool            `json:"resumeFromHold,omitempty"`
	HeldAt              *time.Time      `json:"heldAt,omitempty"`
	OriginalSLADeadline *time.Time      `json:"originalSlaDeadline,omitempty"`
}

// DeadlineDTO is the computed deadline.
type DeadlineDTO struct {
	Deadline   time.Time `json:"deadline"`
	StartTime  time.Time `json:"startTime"`
	SLAMinutes int       `json:"slaMinutes"`
	Resumed    bool      `json:"resumed,omitempty"`
	Breached   bool      `json:"breached,omitempty"`
}

// StatusRequest asks how a deadline stands at a reference instant.
type StatusRequest struct {
	DeveloperID    string           `json:"developerId"`
	Deadline       time.Time        `json:"deadline"`
	Now            *time.Time       `json:"now,omitempty"`
	SLAHoursPerDay *decimal.Decimal `json:"slaHoursPerDay,omitempty"`
}

// StatusDTO reports remaining or overdue working time.
type StatusDTO struct {
	Overdue          bool            `json:"overdue"`
	RemainingMinutes int             `json:"remainingMinutes"`
	OverdueMinutes   int             `json:"overdueMinutes"`
	OverdueDays      decimal.Decimal `json:"overdueDays"` // two places
	Display          string          `json:"display"`
	Now              time.Time       `json:"now"`
}

type WorkingMinutesRequest struct {
	DeveloperID string    `json:"developerId"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
}

type WorkingMinutesDTO struct {
	Minutes int    `json:"minutes"`
	Display string `json:"display"`
}

// =============================================================================
// STORE TYPES
// =============================================================================

// CalendarDTO is a developer's calendar as stored.
type CalendarDTO struct {
	DeveloperID string               `json:"developer_id"`
	Calendar    factory.CalendarJSON `json:"calendar"`
	ShiftHours  decimal.Decimal      `json:"shift_hours"`
}

// CreateLeaveRequest records a leave for a developer.
type CreateLeaveRequest struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Status string    `json:"status,omitempty"` // defaults to "pending"
	Reason string    `json:"reason,omitempty"`
}

// LeaveDTO represents a leave in API responses.
type LeaveDTO struct {
	ID          string    `json:"id"`
	DeveloperID string    `json:"developer_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Status      string    `json:"status"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   string    `json:"created_at,omitempty"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Developers  []string `json:"developers"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

type LoadScenarioResponse struct {
	Scenario ScenarioDTO `json:"scenario"`
	Leaves   int         `json:"leaves"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toDeadlineRequest(req DeadlineRequest) sla.DeadlineRequest {
	return sla.DeadlineRequest{
		DeveloperID:         req.DeveloperID,
		StartTime:           req.StartTime,
		SLAHours:            req.SLAHours,
		ResumeFromHold:      req.ResumeFromHold,
		HeldAt:              req.HeldAt,
		OriginalSLADeadline: req.OriginalSLADeadline,
	}
}

func toDeadlineDTO(res sla.DeadlineResult) DeadlineDTO {
	return DeadlineDTO{
		Deadline:   res.Deadline,
		StartTime:  res.StartTime,
		SLAMinutes: res.Minutes,
		Resumed:    res.Resumed,
		Breached:   res.Breached,
	}
}

func toStatusDTO(res sla.StatusResult) StatusDTO {
	return StatusDTO{
		Overdue:          res.Overdue,
		RemainingMinutes: res.RemainingMinutes,
		OverdueMinutes:   res.OverdueMinutes,
		OverdueDays:      res.OverdueDays.Round(2),
		Display:          res.Display,
		Now:              res.Now,
	}
}

func toLeaveDTO(l sla.Leave) LeaveDTO {
	dto := LeaveDTO{
		ID:          l.ID,
		DeveloperID: l.DeveloperID,
		Start:       l.Start,
		End:         l.End,
		Status:      string(l.Status),
		Reason:      l.Reason,
	}
	if !l.CreatedAt.IsZero() {
		dto.CreatedAt = l.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
