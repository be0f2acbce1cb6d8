package port

import "custodia.io/internal/domain/entity"

// AccessController is the port for the owner/access-control
// collaborator. The custodian consumes it; it does not implement it.
type AccessController interface {
	CurrentOwner() entity.Account
	IsOwner(account entity.Account) bool
}
