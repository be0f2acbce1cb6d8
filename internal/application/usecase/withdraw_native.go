package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

// WithdrawNativeUseCase moves the custodian's entire native balance to
// the owner. The ledger's own lock makes the movement all-or-nothing,
// so a failed transfer leaves the balance untouched.
type WithdrawNativeUseCase struct {
	custodian entity.Account
	ledger    port.NativeLedger
	access    port.AccessController
	logger    logger.Logger
}

// NewWithdrawNativeUseCase creates the native withdrawal use case
func NewWithdrawNativeUseCase(
	custodian entity.Account,
	ledger port.NativeLedger,
	access port.AccessController,
	log logger.Logger,
) *WithdrawNativeUseCase {
	return &WithdrawNativeUseCase{
		custodian: custodian,
		ledger:    ledger,
		access:    access,
		logger:    log,
	}
}

// Execute withdraws the full balance and returns the amount moved. A
// zero balance is a successful no-op, not a failure.
func (uc *WithdrawNativeUseCase) Execute(ctx context.Context, caller entity.Account) (decimal.Decimal, error) {
	if err := requireOwner(uc.access, caller); err != nil {
		return decimal.Zero, err
	}

	balance, err := uc.ledger.BalanceOf(ctx, uc.custodian)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsZero() {
		return decimal.Zero, nil
	}

	owner := uc.access.CurrentOwner()
	if err := uc.ledger.Transfer(ctx, uc.custodian, owner, balance); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
	}

	uc.logger.LogInfo(ctx, "Native balance withdrawn",
		"owner", string(owner),
		"amount", balance.String())

	return balance, nil
}
