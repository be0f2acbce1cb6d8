package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt announces a single accepted deposit. Exactly one receipt is
// produced per deposit; withdrawals never produce one.
type Receipt struct {
	ID         string          `json:"id"`
	Sender     Account         `json:"sender"`
	Amount     decimal.Decimal `json:"amount"`
	HadPayload bool            `json:"had_payload"`
	ReceivedAt time.Time       `json:"received_at"`
}

// NewReceipt builds a receipt for a deposit that has just been credited.
func NewReceipt(sender Account, amount decimal.Decimal, hadPayload bool) Receipt {
	return Receipt{
		ID:         uuid.New().String(),
		Sender:     sender,
		Amount:     amount,
		HadPayload: hadPayload,
		ReceivedAt: time.Now().UTC(),
	}
}
