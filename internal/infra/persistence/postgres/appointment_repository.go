package postgres

import (
	"context"
	"encoding/json"

	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// appointmentRepository implements the domain's AppointmentRepository interface using GORM.
type appointmentRepository struct {
	db *gorm.DB
}

// NewAppointmentRepository is the constructor for appointmentRepository.
func NewAppointmentRepository(db *gorm.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

// FindByID retrieves a single appointment by its unique ID.
func (repo *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointmentM model.AppointmentModel
	if err := repo.db.WithContext(ctx).First(&appointmentM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAppointmentNotFound
		}

		return nil, errors.Wrap(err, "failed to find appointment by id")
	}

	return toAppointmentDomain(&appointmentM)
}

// Create persists a new appointment. Resurrection during rollback also goes
// through here, with the original ID and creation time preserved.
func (repo *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	appointmentM, err := fromAppointmentDomain(appointment)
	if err != nil {
		return err
	}

	if err := repo.db.WithContext(ctx).Create(appointmentM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConstraintViolation.WrapMessage("appointment already exists")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrConstraintViolation.WrapMessage("missing required appointment information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create appointment")
	}

	appointment.ID = appointmentM.ID
	appointment.CreatedAt = appointmentM.CreatedAt
	appointment.UpdatedAt = appointmentM.UpdatedAt

	return nil
}

// Update overwrites an existing appointment.
func (repo *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	appointmentM, err := fromAppointmentDomain(appointment)
	if err != nil {
		return err
	}

	// Save with a full model so cleared fields (e.g. notes set back to null)
	// are written, not skipped.
	if err := repo.db.WithContext(ctx).Save(appointmentM).Error; err != nil {
		if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
			return domainerrors.ErrConstraintViolation.WrapMessage("invalid appointment state")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to update appointment")
	}

	appointment.UpdatedAt = appointmentM.UpdatedAt

	return nil
}

// Delete removes an appointment row.
func (repo *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Delete(&model.AppointmentModel{}, "id = ?", id).Error; err != nil {
		return errors.Wrap(err, "failed to delete appointment")
	}

	return nil
}

// toAppointmentDomain converts a GORM AppointmentModel to a domain Appointment entity.
func toAppointmentDomain(data *model.AppointmentModel) (*entity.Appointment, error) {
	if data == nil {
		return nil, nil
	}

	var extras map[string]any
	if len(data.Extras) > 0 {
		if err := json.Unmarshal(data.Extras, &extras); err != nil {
			return nil, errors.Wrap(err, "failed to decode appointment extras")
		}
	}

	return &entity.Appointment{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Title:     data.Title,
		Location:  data.Location,
		Notes:     data.Notes,
		Capacity:  data.Capacity,
		StartsAt:  data.StartsAt,
		Extras:    extras,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}, nil
}

// fromAppointmentDomain converts a domain Appointment entity to a GORM AppointmentModel.
func fromAppointmentDomain(data *entity.Appointment) (*model.AppointmentModel, error) {
	if data == nil {
		return nil, nil
	}

	var extras datatypes.JSON
	if data.Extras != nil {
		raw, err := json.Marshal(data.Extras)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode appointment extras")
		}
		extras = datatypes.JSON(raw)
	}

	return &model.AppointmentModel{
		ID:        data.ID,
		OwnerID:   data.OwnerID,
		Title:     data.Title,
		Location:  data.Location,
		Notes:     data.Notes,
		Capacity:  data.Capacity,
		StartsAt:  data.StartsAt,
		Extras:    extras,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}, nil
}
