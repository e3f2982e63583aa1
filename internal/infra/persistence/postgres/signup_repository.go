package postgres

import (
	"context"

	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// signupRepository implements the domain's SignupRepository interface using GORM.
type signupRepository struct {
	db *gorm.DB
}

// NewSignupRepository is the constructor for signupRepository.
func NewSignupRepository(db *gorm.DB) repository.SignupRepository {
	return &signupRepository{db: db}
}

// FindByID retrieves a signup by its unique ID.
func (repo *signupRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Signup, error) {
	var signupM model.SignupModel
	if err := repo.db.WithContext(ctx).First(&signupM, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSignupNotFound
		}

		return nil, errors.Wrap(err, "failed to find signup by id")
	}

	return toSignupDomain(&signupM), nil
}

// FindByAppointmentAndUser retrieves the signup binding one user to one appointment.
func (repo *signupRepository) FindByAppointmentAndUser(ctx context.Context, appointmentID, userID uuid.UUID) (*entity.Signup, error) {
	var signupM model.SignupModel
	err := repo.db.WithContext(ctx).
		First(&signupM, "appointment_id = ? AND user_id = ?", appointmentID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSignupNotFound
		}

		return nil, errors.Wrap(err, "failed to find signup by appointment and user")
	}

	return toSignupDomain(&signupM), nil
}

// FindByAppointmentID retrieves all live signups for an appointment, oldest first.
func (repo *signupRepository) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) ([]*entity.Signup, error) {
	var signupMs []model.SignupModel
	err := repo.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC").
		Find(&signupMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to find signups by appointment")
	}

	signups := make([]*entity.Signup, 0, len(signupMs))
	for i := range signupMs {
		signups = append(signups, toSignupDomain(&signupMs[i]))
	}

	return signups, nil
}

// Create persists a new signup. Re-insertion during cascade recovery goes
// through here too, with the original ID and creation time preserved.
func (repo *signupRepository) Create(ctx context.Context, signup *entity.Signup) error {
	signupM := fromSignupDomain(signup)

	if err := repo.db.WithContext(ctx).Create(signupM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateSignup
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrConstraintViolation.WrapMessage("appointment or user does not exist")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create signup")
	}

	signup.ID = signupM.ID
	signup.CreatedAt = signupM.CreatedAt

	return nil
}

// Delete removes a signup row.
func (repo *signupRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := repo.db.WithContext(ctx).Delete(&model.SignupModel{}, "id = ?", id).Error; err != nil {
		return errors.Wrap(err, "failed to delete signup")
	}

	return nil
}

// toSignupDomain converts a GORM SignupModel to a domain Signup entity.
func toSignupDomain(data *model.SignupModel) *entity.Signup {
	if data == nil {
		return nil
	}

	return &entity.Signup{
		ID:            data.ID,
		AppointmentID: data.AppointmentID,
		UserID:        data.UserID,
		Status:        data.Status,
		CreatedAt:     data.CreatedAt,
	}
}

// fromSignupDomain converts a domain Signup entity to a GORM SignupModel.
func fromSignupDomain(data *entity.Signup) *model.SignupModel {
	if data == nil {
		return nil
	}

	return &model.SignupModel{
		ID:            data.ID,
		AppointmentID: data.AppointmentID,
		UserID:        data.UserID,
		Status:        data.Status,
		CreatedAt:     data.CreatedAt,
	}
}
