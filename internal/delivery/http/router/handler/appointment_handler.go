package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"chrono/internal/delivery/http/response"
	"chrono/internal/domain/entity"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AppointmentHandler holds dependencies for appointment and signup handlers.
type AppointmentHandler struct {
	uc usecase.AppointmentUsecase
}

// NewAppointmentHandler is the constructor for AppointmentHandler, injected by Fx.
func NewAppointmentHandler(uc usecase.AppointmentUsecase) *AppointmentHandler {
	return &AppointmentHandler{uc: uc}
}

// appointmentResponse is the outward shape of an appointment.
type appointmentResponse struct {
	ID        uuid.UUID      `json:"id"`
	OwnerID   uuid.UUID      `json:"owner_id"`
	Title     string         `json:"title"`
	Location  string         `json:"location"`
	Notes     *string        `json:"notes"`
	Capacity  int            `json:"capacity"`
	StartsAt  time.Time      `json:"starts_at"`
	Extras    map[string]any `json:"extras,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func toAppointmentResponse(appointment *entity.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:        appointment.ID,
		OwnerID:   appointment.OwnerID,
		Title:     appointment.Title,
		Location:  appointment.Location,
		Notes:     appointment.Notes,
		Capacity:  appointment.Capacity,
		StartsAt:  appointment.StartsAt,
		Extras:    appointment.Extras,
		CreatedAt: appointment.CreatedAt,
		UpdatedAt: appointment.UpdatedAt,
	}
}

// signupResponse is the outward shape of a signup.
type signupResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	UserID        uuid.UUID `json:"user_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func toSignupResponse(signup *entity.Signup) signupResponse {
	return signupResponse{
		ID:            signup.ID,
		AppointmentID: signup.AppointmentID,
		UserID:        signup.UserID,
		Status:        signup.Status,
		CreatedAt:     signup.CreatedAt,
	}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.Wrap(err, "invalid id path parameter")
	}

	return id, nil
}

// Create handles the appointment creation request.
func (h *AppointmentHandler) Create(c echo.Context) error {
	var input usecase.CreateAppointmentInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid appointment input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	appointment, err := h.uc.Create(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAppointmentResponse(appointment), "Appointment created successfully")
}

// Get handles the appointment read request.
func (h *AppointmentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	appointment, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAppointmentResponse(appointment), "")
}

// updateAppointmentRequest is the partial-update body. Pointer fields left
// nil were absent from the request.
type updateAppointmentRequest struct {
	Title    *string        `json:"title"`
	Location *string        `json:"location"`
	Notes    *string        `json:"notes"`
	Capacity *int           `json:"capacity" validate:"omitempty,gte=0"`
	StartsAt *time.Time     `json:"starts_at"`
	Extras   map[string]any `json:"extras"`
}

// Update handles the partial update request. The raw body is inspected so
// that `"notes": null` (clear the notes) is told apart from notes being
// absent (leave them alone).
func (h *AppointmentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Failed to read request body")
	}

	var request updateAppointmentRequest
	if err := json.Unmarshal(body, &request); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid update input")
	}
	if err := c.Validate(&request); err != nil {
		return errors.WithStack(err)
	}

	var presentKeys map[string]json.RawMessage
	if err := json.Unmarshal(body, &presentKeys); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid update input")
	}
	_, notesSet := presentKeys["notes"]

	input := usecase.UpdateAppointmentInput{
		Title:    request.Title,
		Location: request.Location,
		Notes:    request.Notes,
		NotesSet: notesSet,
		Capacity: request.Capacity,
		StartsAt: request.StartsAt,
		Extras:   request.Extras,
	}

	appointment, err := h.uc.Update(c.Request().Context(), id, &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAppointmentResponse(appointment), "Appointment updated successfully")
}

// Delete handles the appointment deletion request.
func (h *AppointmentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	if err := h.uc.Delete(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Appointment deleted successfully")
}

// Join handles the signup request.
func (h *AppointmentHandler) Join(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	signup, err := h.uc.Join(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toSignupResponse(signup), "Signed up successfully")
}

// Leave handles the signup withdrawal request.
func (h *AppointmentHandler) Leave(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid appointment id")
	}

	if err := h.uc.Leave(c.Request().Context(), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Left appointment successfully")
}
