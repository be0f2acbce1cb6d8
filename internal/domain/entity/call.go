package entity

import "github.com/shopspring/decimal"

// InboundCall is a value transfer arriving at the custodian. An empty
// payload is a plain deposit; a non-empty payload either names a
// registered operation or falls through to the fallback deposit path.
type InboundCall struct {
	Sender  Account
	Amount  decimal.Decimal
	Payload []byte
}

// Validate checks the call fields
func (c *InboundCall) Validate() error {
	if c.Sender.IsZero() {
		return ErrMissingSender
	}
	if c.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// HasPayload reports whether the call carried any payload bytes.
func (c *InboundCall) HasPayload() bool {
	return len(c.Payload) > 0
}
