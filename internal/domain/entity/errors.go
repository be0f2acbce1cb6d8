package entity

import "errors"

var (
	ErrUnauthorized   = errors.New("caller is not the owner")
	ErrTransferFailed = errors.New("transfer failed")
	ErrZeroValue      = errors.New("operation requires a positive amount")

	ErrMissingSender  = errors.New("missing required field: sender")
	ErrNegativeAmount = errors.New("amount must not be negative")
)
