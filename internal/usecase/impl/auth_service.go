// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"chrono/config"
	deliverycontext "chrono/internal/delivery/context"
	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"
	"chrono/internal/domain/repository"
	"chrono/internal/domain/service"
	"chrono/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultSessionDuration = 24 * time.Hour

// authService implements the AuthUsecase interface.
type authService struct {
	txManager       repository.TransactionManager
	hasher          service.PasswordHasher
	tokens          service.TokenSource
	clock           service.Clock
	sessionDuration time.Duration
	logger          *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager repository.TransactionManager
	Hasher    service.PasswordHasher
	Tokens    service.TokenSource
	Clock     service.Clock
	Config    *config.Config
	Logger    *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	sessionDuration := defaultSessionDuration
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.SessionDuration > 0 {
		sessionDuration = params.Config.Auth.SessionDuration
	}

	return &authService{
		txManager:       params.TxManager,
		hasher:          params.Hasher,
		tokens:          params.Tokens,
		clock:           params.Clock,
		sessionDuration: sessionDuration,
		logger:          params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates a new identity.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	srv.log(ctx).Info("Registering user", slog.String("email", input.Email))

	hash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	user := &entity.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    srv.clock.Now(),
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("email already registered")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check existing email")
		}

		return userRepo.Create(ctx, user)
	})
	if err != nil {
		srv.log(ctx).Error("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID))

	return user, nil
}

// Login verifies credentials and creates a session row. A failed login leaves
// no session behind.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	srv.log(ctx).Info("Login attempt", slog.String("email", input.Email))

	var output *usecase.LoginOutput

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		sessionRepo := repoFactory.SessionRepo()

		user, err := userRepo.FindByEmail(ctx, input.Email)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return domainerrors.ErrInvalidCredentials.WrapMessage("unknown email")
			}

			return errors.Wrap(err, "failed to find user by email")
		}

		if !srv.hasher.Check(input.Password, user.PasswordHash) {
			return domainerrors.ErrInvalidCredentials.WrapMessage("password mismatch")
		}

		token, err := srv.tokens.NewToken()
		if err != nil {
			return errors.Wrap(err, "failed to mint session token")
		}

		now := srv.clock.Now()
		session := &entity.Session{
			Token:     token,
			UserID:    user.ID,
			ExpiresAt: now.Add(srv.sessionDuration),
			CreatedAt: now,
		}
		if err := sessionRepo.Create(ctx, session); err != nil {
			return errors.Wrap(err, "failed to create session")
		}

		output = &usecase.LoginOutput{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt,
			UserID:    user.ID,
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Login succeeded", slog.Any("userID", output.UserID))

	return output, nil
}

// Resolve maps the token bound to ctx to an identity id. It is pure given
// (token, clock.Now, session table): reads only, no side effects, and it
// fails closed on any missing or stale binding.
func (srv *authService) Resolve(ctx context.Context) (uuid.UUID, error) {
	token, bound := deliverycontext.SessionToken(ctx)
	if !bound {
		return uuid.Nil, domainerrors.ErrSessionNotSet.WrapMessage("resolve called without a bound token")
	}

	var userID uuid.UUID

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		session, err := repoFactory.SessionRepo().FindByToken(ctx, token)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				return domainerrors.ErrSessionInvalid.WrapMessage("unknown session token")
			}

			return errors.Wrap(err, "failed to look up session")
		}

		if !session.Live(srv.clock.Now()) {
			return domainerrors.ErrSessionInvalid.WrapMessage("session expired")
		}

		userID = session.UserID

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// Logout deletes the session bound to ctx.
func (srv *authService) Logout(ctx context.Context) error {
	token, bound := deliverycontext.SessionToken(ctx)
	if !bound {
		return domainerrors.ErrSessionNotSet.WrapMessage("logout called without a bound token")
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.SessionRepo().DeleteByToken(ctx, token)
	})
	if err != nil {
		srv.log(ctx).Error("Logout failed", slog.Any("error", err))

		return errors.Wrap(err, "failed to delete session")
	}

	return nil
}
