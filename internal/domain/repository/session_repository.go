package repository

import (
	"context"

	"chrono/internal/domain/entity"

	"github.com/pkg/errors"
)

// ErrSessionNotFound is returned when no session row matches a token.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepository defines persistence for token-to-identity bindings.
// Expiry is not evaluated here: rows are returned as stored so that the use
// case layer can judge liveness against its injected clock.
type SessionRepository interface {
	// Create persists a new session row.
	Create(ctx context.Context, session *entity.Session) error

	// FindByToken retrieves a session row by its opaque token.
	FindByToken(ctx context.Context, token string) (*entity.Session, error)

	// DeleteByToken removes a session row, ending that session.
	DeleteByToken(ctx context.Context, token string) error
}
