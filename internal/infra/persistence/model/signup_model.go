package model

import (
	"time"

	"github.com/google/uuid"
)

// SignupModel mirrors the 'signups' table. One user joins one appointment at
// most once. CreatedAt is written explicitly so cascade recovery can re-insert
// a row with its original creation time.
type SignupModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signups_appointment_user"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_signups_appointment_user"`
	Status        string    `gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName explicitly sets the table name for GORM.
func (SignupModel) TableName() string {
	return "signups"
}
