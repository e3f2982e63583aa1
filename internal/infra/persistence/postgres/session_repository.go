package postgres

import (
	"context"

	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the domain's SessionRepository interface using GORM.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Create persists a new session row.
func (repo *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionM := fromSessionDomain(session)

	if err := repo.db.WithContext(ctx).Create(sessionM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrConstraintViolation.WrapMessage("session token collision")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create session")
	}

	session.CreatedAt = sessionM.CreatedAt

	return nil
}

// FindByToken retrieves a session row by its opaque token. Expired rows are
// returned as stored; liveness is judged by the caller.
func (repo *sessionRepository) FindByToken(ctx context.Context, token string) (*entity.Session, error) {
	var sessionM model.SessionModel
	if err := repo.db.WithContext(ctx).First(&sessionM, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find session by token")
	}

	return toSessionDomain(&sessionM), nil
}

// DeleteByToken removes a session row, ending that session.
func (repo *sessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if err := repo.db.WithContext(ctx).Delete(&model.SessionModel{}, "token = ?", token).Error; err != nil {
		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}

// toSessionDomain converts a GORM SessionModel to a domain Session entity.
func toSessionDomain(data *model.SessionModel) *entity.Session {
	if data == nil {
		return nil
	}

	return &entity.Session{
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}

// fromSessionDomain converts a domain Session entity to a GORM SessionModel.
func fromSessionDomain(data *entity.Session) *model.SessionModel {
	if data == nil {
		return nil
	}

	return &model.SessionModel{
		Token:     data.Token,
		UserID:    data.UserID,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
	}
}
