package entity

// Account is an opaque external identifier: a depositing caller, the
// custodian itself, the owner, or a token contract. Accounts carry no
// internal structure and are compared for equality only.
type Account string

// IsZero reports whether the account is unset.
func (a Account) IsZero() bool {
	return a == ""
}
