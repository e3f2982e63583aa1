// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the identity every session and every change record points back to.
// Users are never deleted; foreign references stay valid for the lifetime of
// the change log.
type User struct {
	ID           uuid.UUID // The unique identifier for this identity.
	Name         string    // Display name.
	Email        string    // Login identifier, unique across the system.
	PasswordHash string    // One-way encoded credential, only ever compared, never decoded.
	CreatedAt    time.Time // Timestamp of registration.
}
