package repository

import (
	"context"

	"chrono/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrAppointmentNotFound is returned when an appointment is not found.
var ErrAppointmentNotFound = errors.New("appointment not found")

// AppointmentRepository defines persistence for the tracked aggregate.
// Updates and deletes going through here must be paired with a change record
// in the same transaction; the use case layer enforces that.
type AppointmentRepository interface {
	// FindByID retrieves a single appointment by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)

	// Create persists a new appointment.
	Create(ctx context.Context, appointment *entity.Appointment) error

	// Update overwrites an existing appointment.
	Update(ctx context.Context, appointment *entity.Appointment) error

	// Delete removes an appointment row.
	Delete(ctx context.Context, id uuid.UUID) error
}
