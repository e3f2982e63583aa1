package entity

import (
	"time"

	"github.com/google/uuid"
)

// SessionTokenLength is the length of the opaque token identifying a session.
const SessionTokenLength = 32

// Session is a time-bounded binding from an opaque token to a user. One token
// maps to exactly one user; a user may hold any number of concurrent
// sessions. Expired rows simply stop resolving, they are not eagerly purged.
type Session struct {
	Token     string    // Opaque 32-character token, primary key.
	UserID    uuid.UUID // The identity this session resolves to.
	ExpiresAt time.Time // Instant after which the token no longer resolves.
	CreatedAt time.Time // Timestamp of login.
}

// Live reports whether the session still resolves at the given instant.
func (s *Session) Live(now time.Time) bool {
	return s.ExpiresAt.After(now)
}
