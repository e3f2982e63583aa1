package repository

import (
	"context"
	"time"

	"chrono/internal/domain/entity"

	"github.com/google/uuid"
)

// ChangeLogRepository is the append-only history store. No update or delete
// operation is exposed; once written a record is immutable. Readers always
// see a prefix consistent with some serial order.
type ChangeLogRepository interface {
	// Append inserts a change record, assigning its monotonically increasing
	// identity. It fails only on constraint violations such as an unknown
	// entity type.
	Append(ctx context.Context, record *entity.ChangeRecord) error

	// Chain returns all records for the given entity captured at or after
	// since, newest first. Each call issues a fresh query; the result is a
	// finite, restartable sequence.
	Chain(ctx context.Context, entityType string, entityID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error)

	// RemovedSince returns REMOVED records of the given entity type captured
	// at or after since whose payload field parentField references parentID,
	// newest first. Cascade recovery uses this to find children that a parent
	// deletion swept away.
	RemovedSince(ctx context.Context, entityType, parentField string, parentID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error)
}
