package usecase

import (
	"context"
	"time"

	"chrono/internal/domain/entity"

	"github.com/google/uuid"
)

// HistoryUsecase exposes the change log read side: raw chains, point-in-time
// reconstruction and rollback with cascade recovery.
type HistoryUsecase interface {
	// History lists the raw change chain of an appointment, newest first;
	// owner only.
	History(ctx context.Context, appointmentID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error)

	// Reconstruct folds the appointment's diff chain into the field values
	// that held at the cutoff. The result is a partial mapping: fields
	// untouched since the cutoff are absent and keep their live value.
	Reconstruct(ctx context.Context, entityType string, entityID uuid.UUID, since time.Time) (map[string]any, error)

	// Rollback restores an appointment to its state at the cutoff, re-inserts
	// signups that a cascading delete removed within the window and deletes
	// signups created after the cutoff. Owner only; idempotent; all or
	// nothing.
	Rollback(ctx context.Context, appointmentID uuid.UUID, since time.Time) (*entity.Appointment, error)
}
