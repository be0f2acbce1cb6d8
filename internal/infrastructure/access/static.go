package access

import (
	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
)

// StaticOwnerRegistry implements the AccessController port with a
// single owner fixed at construction. Changing the owner is the job of
// an external access-control collaborator; this adapter only answers
// who the owner currently is.
type StaticOwnerRegistry struct {
	owner entity.Account
}

// NewStaticOwnerRegistry creates a registry for the given owner
func NewStaticOwnerRegistry(owner entity.Account) port.AccessController {
	return &StaticOwnerRegistry{owner: owner}
}

// CurrentOwner returns the configured owner account.
func (r *StaticOwnerRegistry) CurrentOwner() entity.Account {
	return r.owner
}

// IsOwner reports whether the account is the owner.
func (r *StaticOwnerRegistry) IsOwner(account entity.Account) bool {
	return account == r.owner
}
