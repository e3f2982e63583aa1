package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChangeKind classifies a change record.
type ChangeKind string

const (
	// ChangeKindModified marks a record whose payload holds the prior values
	// of exactly the fields an update touched.
	ChangeKindModified ChangeKind = "modified"

	// ChangeKindRemoved marks a record whose payload holds the entity's full
	// state just before deletion.
	ChangeKindRemoved ChangeKind = "removed"
)

// ChangeRecord is one immutable entry in the append-only change log.
//
// The payload maps field paths to the field's *prior* value. A field present
// with a nil value was explicitly null before the change; a field absent from
// the payload was untouched by the operation. MODIFIED payloads never contain
// a field whose prior value equals its new value.
type ChangeRecord struct {
	ID         int64          // Monotonically increasing storage identity.
	EntityType string         // Tracked entity type name, e.g. "appointment".
	EntityID   uuid.UUID      // Identifier of the changed entity.
	ActorID    uuid.UUID      // Identity that performed the change.
	Kind       ChangeKind     // modified or removed.
	Payload    map[string]any // Prior values, see above.
	CapturedAt time.Time      // Statement time of the mutation, not transaction start.
}
