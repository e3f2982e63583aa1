package repository

import (
	"context"

	"chrono/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for signup persistence.
var (
	// ErrSignupNotFound is returned when a signup is not found.
	ErrSignupNotFound = errors.New("signup not found")
	// ErrDuplicateSignup is returned when a user already signed up for the appointment.
	ErrDuplicateSignup = errors.New("signup already exists")
)

// SignupRepository defines persistence for appointment signups.
type SignupRepository interface {
	// FindByID retrieves a signup by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Signup, error)

	// FindByAppointmentAndUser retrieves the signup binding one user to one appointment.
	FindByAppointmentAndUser(ctx context.Context, appointmentID, userID uuid.UUID) (*entity.Signup, error)

	// FindByAppointmentID retrieves all live signups for an appointment.
	FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]*entity.Signup, error)

	// Create persists a new signup. Re-insertion during cascade recovery goes
	// through here too, with the original ID and creation time preserved.
	Create(ctx context.Context, signup *entity.Signup) error

	// Delete removes a signup row.
	Delete(ctx context.Context, id uuid.UUID) error
}
