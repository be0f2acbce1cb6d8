package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

// WithdrawTokenUseCase drains the custodian's holding of one token to
// the owner, as reported by the token's own ledger. Nothing is shadowed
// locally, so a failed transfer needs no rollback beyond reporting it.
type WithdrawTokenUseCase struct {
	custodian entity.Account
	tokens    port.TokenLedger
	access    port.AccessController
	logger    logger.Logger
}

// NewWithdrawTokenUseCase creates the token withdrawal use case
func NewWithdrawTokenUseCase(
	custodian entity.Account,
	tokens port.TokenLedger,
	access port.AccessController,
	log logger.Logger,
) *WithdrawTokenUseCase {
	return &WithdrawTokenUseCase{
		custodian: custodian,
		tokens:    tokens,
		access:    access,
		logger:    log,
	}
}

// Execute withdraws the custodian's full holding of the token and
// returns the amount moved. A zero holding is a successful no-op.
func (uc *WithdrawTokenUseCase) Execute(ctx context.Context, caller entity.Account, token string) (decimal.Decimal, error) {
	if err := requireOwner(uc.access, caller); err != nil {
		return decimal.Zero, err
	}

	balance, err := uc.tokens.BalanceOf(ctx, token, uc.custodian)
	if err != nil {
		return decimal.Zero, err
	}
	if balance.IsZero() {
		return decimal.Zero, nil
	}

	owner := uc.access.CurrentOwner()
	ok, err := uc.tokens.Transfer(ctx, token, uc.custodian, owner, balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
	}
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: token ledger reported failure for %s", entity.ErrTransferFailed, token)
	}

	uc.logger.LogInfo(ctx, "Token holding withdrawn",
		"token", token,
		"owner", string(owner),
		"amount", balance.String())

	return balance, nil
}
