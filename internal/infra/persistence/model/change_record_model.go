package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChangeRecordModel mirrors the 'change_records' table. Rows are append-only:
// no update or delete ever touches this table, and the bigserial primary key
// provides the serial order readers rely on.
type ChangeRecordModel struct {
	ID         int64          `gorm:"primary_key;autoIncrement"`
	EntityType string         `gorm:"type:varchar(32);not null;index:idx_change_records_entity,priority:1"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_change_records_entity,priority:2"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null"`
	Kind       string         `gorm:"type:varchar(16);not null"`
	Payload    datatypes.JSON `gorm:"not null"`
	CapturedAt time.Time      `gorm:"not null;index"`
}

// TableName explicitly sets the table name for GORM.
func (ChangeRecordModel) TableName() string {
	return "change_records"
}
