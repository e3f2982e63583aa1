package postgres

import (
	"context"
	"encoding/json"
	"time"

	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// changeLogRepository implements the domain's ChangeLogRepository interface
// using GORM. Only inserts and reads touch change_records; the table has no
// update or delete path anywhere in the codebase.
type changeLogRepository struct {
	db *gorm.DB
}

// NewChangeLogRepository is the constructor for changeLogRepository.
func NewChangeLogRepository(db *gorm.DB) repository.ChangeLogRepository {
	return &changeLogRepository{db: db}
}

// Append inserts a change record, assigning its monotonically increasing identity.
func (repo *changeLogRepository) Append(ctx context.Context, record *entity.ChangeRecord) error {
	if !entity.TrackedEntityType(record.EntityType) {
		return domainerrors.ErrConstraintViolation.WrapMessage("unknown entity type: " + record.EntityType)
	}

	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode change payload")
	}

	recordM := &model.ChangeRecordModel{
		EntityType: record.EntityType,
		EntityID:   record.EntityID,
		ActorID:    record.ActorID,
		Kind:       string(record.Kind),
		Payload:    datatypes.JSON(payload),
		CapturedAt: record.CapturedAt,
	}

	if err := repo.db.WithContext(ctx).Create(recordM).Error; err != nil {
		if isCheckConstraintViolation(err) || isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrConstraintViolation.WrapMessage("change record rejected by storage")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to append change record")
	}

	record.ID = recordM.ID

	return nil
}

// Chain returns all records for the given entity captured at or after since,
// newest first.
func (repo *changeLogRepository) Chain(ctx context.Context, entityType string, entityID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error) {
	var recordMs []model.ChangeRecordModel
	err := repo.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ? AND captured_at >= ?", entityType, entityID, since).
		Order("id DESC").
		Find(&recordMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to read change chain")
	}

	return toChangeRecordDomains(recordMs)
}

// RemovedSince returns REMOVED records of the given entity type captured at or
// after since whose payload field parentField references parentID, newest
// first. The payload filter runs in SQL against the JSONB column.
func (repo *changeLogRepository) RemovedSince(ctx context.Context, entityType, parentField string, parentID uuid.UUID, since time.Time) ([]*entity.ChangeRecord, error) {
	var recordMs []model.ChangeRecordModel
	err := repo.db.WithContext(ctx).
		Where("entity_type = ? AND kind = ? AND captured_at >= ?", entityType, string(entity.ChangeKindRemoved), since).
		Where(datatypes.JSONQuery("payload").Equals(parentID.String(), parentField)).
		Order("id DESC").
		Find(&recordMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to read removed records")
	}

	return toChangeRecordDomains(recordMs)
}

// toChangeRecordDomains converts GORM ChangeRecordModels to domain ChangeRecords.
func toChangeRecordDomains(recordMs []model.ChangeRecordModel) ([]*entity.ChangeRecord, error) {
	records := make([]*entity.ChangeRecord, 0, len(recordMs))
	for i := range recordMs {
		record, err := toChangeRecordDomain(&recordMs[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// toChangeRecordDomain converts a GORM ChangeRecordModel to a domain ChangeRecord.
func toChangeRecordDomain(data *model.ChangeRecordModel) (*entity.ChangeRecord, error) {
	if data == nil {
		return nil, nil
	}

	var payload map[string]any
	if len(data.Payload) > 0 {
		if err := json.Unmarshal(data.Payload, &payload); err != nil {
			return nil, errors.Wrap(err, "failed to decode change payload")
		}
	}

	return &entity.ChangeRecord{
		ID:         data.ID,
		EntityType: data.EntityType,
		EntityID:   data.EntityID,
		ActorID:    data.ActorID,
		Kind:       entity.ChangeKind(data.Kind),
		Payload:    payload,
		CapturedAt: data.CapturedAt,
	}, nil
}
