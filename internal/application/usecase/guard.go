package usecase

import (
	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
)

// requireOwner is the single place the owner precondition is enforced.
func requireOwner(access port.AccessController, caller entity.Account) error {
	if !access.IsOwner(caller) {
		return entity.ErrUnauthorized
	}
	return nil
}
