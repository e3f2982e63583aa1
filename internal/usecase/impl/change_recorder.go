package impl

import (
	"context"

	"chrono/internal/domain/diff"
	"chrono/internal/domain/entity"
	"chrono/internal/domain/repository"
	"chrono/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// changeRecorder is the mutation interceptor: it turns before/after images
// into change records. It always runs inside the same transaction as the
// mutation it audits, through the ChangeLogRepository handed in by the
// caller's RepositoryFactory, so mutation and record commit or abort as one
// unit.
type changeRecorder struct {
	clock service.Clock
}

func newChangeRecorder(clock service.Clock) *changeRecorder {
	return &changeRecorder{clock: clock}
}

// recordUpdate reduces the two images to a minimal before-image diff and
// appends a MODIFIED record when the diff is non-empty. A no-op update
// appends nothing.
func (r *changeRecorder) recordUpdate(ctx context.Context, logs repository.ChangeLogRepository, actorID uuid.UUID, entityType string, entityID uuid.UUID, before, after map[string]any) error {
	normalizedBefore, err := diff.Normalize(before)
	if err != nil {
		return errors.Wrap(err, "normalize before image")
	}
	normalizedAfter, err := diff.Normalize(after)
	if err != nil {
		return errors.Wrap(err, "normalize after image")
	}

	payload := diff.Reduce(normalizedBefore, normalizedAfter)
	if len(payload) == 0 {
		return nil
	}

	return logs.Append(ctx, &entity.ChangeRecord{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Kind:       entity.ChangeKindModified,
		Payload:    payload,
		CapturedAt: r.clock.Now(),
	})
}

// recordRemove appends a REMOVED record carrying the entity's full prior
// state.
func (r *changeRecorder) recordRemove(ctx context.Context, logs repository.ChangeLogRepository, actorID uuid.UUID, entityType string, entityID uuid.UUID, before map[string]any) error {
	payload, err := diff.Normalize(before)
	if err != nil {
		return errors.Wrap(err, "normalize before image")
	}

	return logs.Append(ctx, &entity.ChangeRecord{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Kind:       entity.ChangeKindRemoved,
		Payload:    payload,
		CapturedAt: r.clock.Now(),
	})
}
