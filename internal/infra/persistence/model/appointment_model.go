package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AppointmentModel mirrors the 'appointments' table. Extras is free-form
// JSONB diffed field by field in the change log.
type AppointmentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Title     string    `gorm:"type:varchar(200);not null"`
	Location  string    `gorm:"type:varchar(255)"`
	Notes     *string   `gorm:"type:text"`
	Capacity  int       `gorm:"not null;default:0"`
	StartsAt  time.Time `gorm:"not null"`
	Extras    datatypes.JSON
	CreatedAt time.Time
	UpdatedAt time.Time

	Signups []SignupModel `gorm:"foreignKey:AppointmentID"`
}

// TableName explicitly sets the table name for GORM.
func (AppointmentModel) TableName() string {
	return "appointments"
}
