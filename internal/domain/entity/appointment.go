package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tracked entity type names used as the partition key of the change log.
const (
	EntityTypeAppointment = "appointment"
	EntityTypeSignup      = "signup"
)

// TrackedEntityType reports whether the change log accepts records for the
// given entity type name.
func TrackedEntityType(entityType string) bool {
	return entityType == EntityTypeAppointment || entityType == EntityTypeSignup
}

// Appointment is the tracked aggregate: an event owned by a user that others
// can sign up for. Every update and delete is captured in the change log.
type Appointment struct {
	ID        uuid.UUID      // Unique identifier.
	OwnerID   uuid.UUID      // The identity allowed to modify or roll back this appointment.
	Title     string         // Short human-readable title.
	Location  string         // Where the appointment takes place.
	Notes     *string        // Free-form notes; nil is a meaningful "explicitly unset" state.
	Capacity  int            // Maximum number of signups; zero means unlimited.
	StartsAt  time.Time      // Scheduled start instant.
	Extras    map[string]any // Free-form nested attributes, diffed field by field.
	CreatedAt time.Time      // Timestamp of creation.
	UpdatedAt time.Time      // Timestamp of the last modification.
}

// OwnerIdentity implements the Owned capability.
func (a *Appointment) OwnerIdentity() uuid.UUID {
	return a.OwnerID
}

// Snapshot returns the tracked fields as a value mapping suitable for
// diffing. Keys listed here define what the change log captures.
func (a *Appointment) Snapshot() map[string]any {
	var notes any
	if a.Notes != nil {
		notes = *a.Notes
	}

	return map[string]any{
		"owner_id":   a.OwnerID.String(),
		"title":      a.Title,
		"location":   a.Location,
		"notes":      notes,
		"capacity":   a.Capacity,
		"starts_at":  snapshotTime(a.StartsAt),
		"extras":     a.Extras,
		"created_at": snapshotTime(a.CreatedAt),
	}
}

// ApplySnapshot overwrites the tracked fields covered by the given mapping.
// Fields absent from the mapping keep their current value. The mapping may
// come straight out of a persisted change payload, so values are coerced from
// their JSON-normalized forms.
func (a *Appointment) ApplySnapshot(snapshot map[string]any) error {
	if raw, ok := snapshot["owner_id"]; ok {
		id, err := snapshotUUID(raw, "owner_id")
		if err != nil {
			return err
		}
		a.OwnerID = id
	}
	if raw, ok := snapshot["title"]; ok {
		a.Title = snapshotString(raw)
	}
	if raw, ok := snapshot["location"]; ok {
		a.Location = snapshotString(raw)
	}
	if raw, ok := snapshot["notes"]; ok {
		if raw == nil {
			a.Notes = nil
		} else {
			notes := snapshotString(raw)
			a.Notes = &notes
		}
	}
	if raw, ok := snapshot["capacity"]; ok {
		a.Capacity = snapshotInt(raw)
	}
	if raw, ok := snapshot["starts_at"]; ok {
		at, err := snapshotParseTime(raw, "starts_at")
		if err != nil {
			return err
		}
		a.StartsAt = at
	}
	if raw, ok := snapshot["extras"]; ok {
		if raw == nil {
			a.Extras = nil
		} else if extras, isMap := raw.(map[string]any); isMap {
			a.Extras = extras
		}
	}
	if raw, ok := snapshot["created_at"]; ok {
		at, err := snapshotParseTime(raw, "created_at")
		if err != nil {
			return err
		}
		a.CreatedAt = at
	}

	return nil
}

// Clone returns a deep enough copy for apply-then-compare flows; the Extras
// map is copied one level deep.
func (a *Appointment) Clone() *Appointment {
	cloned := *a
	if a.Notes != nil {
		notes := *a.Notes
		cloned.Notes = &notes
	}
	if a.Extras != nil {
		extras := make(map[string]any, len(a.Extras))
		for key, value := range a.Extras {
			extras[key] = value
		}
		cloned.Extras = extras
	}

	return &cloned
}
