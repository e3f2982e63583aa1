package usecase

import (
	"context"
	"time"

	"chrono/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateAppointmentInput carries the fields of a new appointment.
type CreateAppointmentInput struct {
	Title    string         `json:"title" validate:"required"`
	Location string         `json:"location"`
	Notes    *string        `json:"notes"`
	Capacity int            `json:"capacity" validate:"gte=0"`
	StartsAt time.Time      `json:"starts_at" validate:"required"`
	Extras   map[string]any `json:"extras"`
}

// UpdateAppointmentInput carries a partial update; nil pointers mean "leave
// unchanged". NotesSet distinguishes clearing the notes from not touching
// them.
type UpdateAppointmentInput struct {
	Title    *string        `json:"title"`
	Location *string        `json:"location"`
	Notes    *string        `json:"notes"`
	NotesSet bool           `json:"notes_set"`
	Capacity *int           `json:"capacity"`
	StartsAt *time.Time     `json:"starts_at"`
	Extras   map[string]any `json:"extras"`
}

// AppointmentUsecase covers owner-scoped appointment operations and signup
// membership. Updates and deletes are intercepted: their before-image diff is
// appended to the change log in the same transaction.
type AppointmentUsecase interface {
	// Create inserts a new appointment owned by the resolved identity.
	Create(ctx context.Context, input *CreateAppointmentInput) (*entity.Appointment, error)

	// Get returns an appointment readable by the resolved identity (owner or
	// participant).
	Get(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)

	// Update applies a partial update; owner only. A no-op update appends
	// nothing to the change log.
	Update(ctx context.Context, id uuid.UUID, input *UpdateAppointmentInput) (*entity.Appointment, error)

	// Delete removes an appointment and cascades to its signups; owner only.
	// Every removed row, parent and children alike, gets a REMOVED record.
	Delete(ctx context.Context, id uuid.UUID) error

	// Join signs the resolved identity up for an appointment.
	Join(ctx context.Context, appointmentID uuid.UUID) (*entity.Signup, error)

	// Leave removes the resolved identity's signup, recording its removal.
	Leave(ctx context.Context, appointmentID uuid.UUID) error
}
