package handler

import (
	"net/http"
	"time"

	"chrono/internal/delivery/http/response"
	"chrono/internal/domain/entity"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// HistoryHandler holds dependencies for change log and time-travel handlers.
type HistoryHandler struct {
	uc usecase.HistoryUsecase
}

// NewHistoryHandler is the constructor for HistoryHandler, injected by Fx.
func NewHistoryHandler(uc usecase.HistoryUsecase) *HistoryHandler {
	return &HistoryHandler{uc: uc}
}

// changeRecordResponse is the outward shape of one change log entry.
type changeRecordResponse struct {
	ID         int64          `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload"`
	CapturedAt time.Time      `json:"captured_at"`
}

func toChangeRecordResponses(records []*entity.ChangeRecord) []changeRecordResponse {
	out := make([]changeRecordResponse, 0, len(records))
	for _, record := range records {
		out = append(out, changeRecordResponse{
			ID:         record.ID,
			EntityType: record.EntityType,
			EntityID:   record.EntityID,
			ActorID:    record.ActorID,
			Kind:       string(record.Kind),
			Payload:    record.Payload,
			CapturedAt: record.CapturedAt,
		})
	}

	return out
}

// sinceQuery parses the optional ?since= query parameter (RFC 3339). An
// absent parameter means the beginning of time: the whole chain.
func sinceQuery(c echo.Context) (time.Time, error) {
	raw := c.QueryParam("since")
	if raw == "" {
		return time.Time{}, nil
	}

	since, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, errors.Wrap(err, "invalid since query parameter")
	}

	return since, nil
}

// History lists an appointment's change chain, newest first.
func (h *HistoryHandler) History(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	since, err := sinceQuery(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "since must be an RFC 3339 timestamp")
	}

	records, err := h.uc.History(c.Request().Context(), id, since)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toChangeRecordResponses(records), "")
}

// AppointmentState returns the partial field state an appointment held at the
// ?since= cutoff.
func (h *HistoryHandler) AppointmentState(c echo.Context) error {
	return h.state(c, entity.EntityTypeAppointment)
}

// SignupState returns the partial field state a signup held at the ?since=
// cutoff.
func (h *HistoryHandler) SignupState(c echo.Context) error {
	return h.state(c, entity.EntityTypeSignup)
}

func (h *HistoryHandler) state(c echo.Context, entityType string) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid entity id")
	}

	since, err := sinceQuery(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "since must be an RFC 3339 timestamp")
	}

	state, err := h.uc.Reconstruct(c.Request().Context(), entityType, id, since)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, state, "")
}

// rollbackRequest carries the rollback cutoff.
type rollbackRequest struct {
	Since time.Time `json:"since" validate:"required"`
}

// Rollback restores an appointment, and its cascaded signups, to the state
// they held at the given cutoff.
func (h *HistoryHandler) Rollback(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	var request rollbackRequest
	if err := c.Bind(&request); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid rollback input")
	}
	if err := c.Validate(&request); err != nil {
		return errors.WithStack(err)
	}

	appointment, err := h.uc.Rollback(c.Request().Context(), id, request.Since)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAppointmentResponse(appointment), "Appointment rolled back successfully")
}
