// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"
	"time"

	"chrono/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterInput carries the fields needed to create an identity.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginOutput carries the fresh session handed to the caller.
type LoginOutput struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uuid.UUID `json:"user_id"`
}

// AuthUsecase is the authorization context of the system: it creates
// identities and sessions and resolves the token bound to an operation's
// context back to an identity. Resolution fails closed; no operation ever
// proceeds with a null identity.
type AuthUsecase interface {
	// Register creates a new identity.
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)

	// Login verifies credentials and creates a session row with a fresh
	// opaque token. Wrong credentials leave no trace.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// Resolve maps the session token bound to ctx to an identity id.
	// It returns ErrSessionNotSet when no token is bound and ErrSessionInvalid
	// when the token is unknown or expired.
	Resolve(ctx context.Context) (uuid.UUID, error)

	// Logout deletes the session bound to ctx.
	Logout(ctx context.Context) error
}
