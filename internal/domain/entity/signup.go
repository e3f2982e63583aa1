package entity

import (
	"time"

	"github.com/google/uuid"
)

// Signup statuses.
const (
	SignupStatusConfirmed  = "confirmed"
	SignupStatusWaitlisted = "waitlisted"
)

// Signup is the dependent child of an Appointment: one user attending one
// appointment. Deleting the appointment cascades to its signups, and the
// cascade is what rollback's two-phase reconcile undoes.
type Signup struct {
	ID            uuid.UUID // Unique identifier.
	AppointmentID uuid.UUID // Parent appointment reference, present in every snapshot payload.
	UserID        uuid.UUID // The participating identity.
	Status        string    // confirmed or waitlisted.
	CreatedAt     time.Time // Timestamp of joining; preserved across resurrection.
}

// OwnerIdentity implements the Owned capability: a signup belongs to its
// participant.
func (s *Signup) OwnerIdentity() uuid.UUID {
	return s.UserID
}

// Snapshot returns the tracked fields as a value mapping suitable for
// diffing. appointment_id is what lets cascade recovery find removed children
// of a parent.
func (s *Signup) Snapshot() map[string]any {
	return map[string]any{
		"appointment_id": s.AppointmentID.String(),
		"user_id":        s.UserID.String(),
		"status":         s.Status,
		"created_at":     snapshotTime(s.CreatedAt),
	}
}

// ApplySnapshot overwrites the tracked fields covered by the given mapping.
func (s *Signup) ApplySnapshot(snapshot map[string]any) error {
	if raw, ok := snapshot["appointment_id"]; ok {
		id, err := snapshotUUID(raw, "appointment_id")
		if err != nil {
			return err
		}
		s.AppointmentID = id
	}
	if raw, ok := snapshot["user_id"]; ok {
		id, err := snapshotUUID(raw, "user_id")
		if err != nil {
			return err
		}
		s.UserID = id
	}
	if raw, ok := snapshot["status"]; ok {
		s.Status = snapshotString(raw)
	}
	if raw, ok := snapshot["created_at"]; ok {
		at, err := snapshotParseTime(raw, "created_at")
		if err != nil {
			return err
		}
		s.CreatedAt = at
	}

	return nil
}
