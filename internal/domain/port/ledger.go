package port

import (
	"context"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
)

// NativeLedger is the port for the chain's native-asset ledger. The
// custodian never shadows balances: every balance read goes through
// here, so what the ledger reports is authoritative.
type NativeLedger interface {
	BalanceOf(ctx context.Context, account entity.Account) (decimal.Decimal, error)
	// Credit records inbound value arriving at an account from outside
	// the ledger's view.
	Credit(ctx context.Context, account entity.Account, amount decimal.Decimal) error
	// Debit removes value from an account, failing on insufficient funds.
	Debit(ctx context.Context, account entity.Account, amount decimal.Decimal) error
	Transfer(ctx context.Context, from, to entity.Account, amount decimal.Decimal) error
	// Distribute moves the same amount from one account to each
	// recipient as a single all-or-nothing batch.
	Distribute(ctx context.Context, from entity.Account, to []entity.Account, each decimal.Decimal) error
}

// TokenLedger is the port for an external token contract's own ledger.
// Transfer reports failure either by a false return or by an error,
// matching the two failure conventions token contracts use.
type TokenLedger interface {
	BalanceOf(ctx context.Context, token string, account entity.Account) (decimal.Decimal, error)
	Transfer(ctx context.Context, token string, from, to entity.Account, amount decimal.Decimal) (bool, error)
}
