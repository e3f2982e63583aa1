package entity

import "github.com/google/uuid"

// Owned is the capability surface shared by entities whose mutation rights
// belong to a single identity. Appointments are owned by their creator,
// signups by their participant; authorization checks go through this one
// interface instead of per-table logic.
type Owned interface {
	OwnerIdentity() uuid.UUID
}
