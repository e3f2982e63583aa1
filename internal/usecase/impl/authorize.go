package impl

import (
	"chrono/internal/domain/entity"
	domainerrors "chrono/internal/domain/errors"

	"github.com/google/uuid"
)

// requireOwner is the single capability predicate behind every owner-scoped
// write and rollback: the resolved caller must be the identity the resource
// reports as its owner.
func requireOwner(callerID uuid.UUID, resource entity.Owned) error {
	if resource.OwnerIdentity() != callerID {
		return domainerrors.ErrPermissionDenied.WrapMessage("caller does not own this resource")
	}

	return nil
}
