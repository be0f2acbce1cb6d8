package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
)

// CustodyBalanceUseCase reports the custodian's holdings exactly as
// the external ledgers see them; there is no shadow accounting.
type CustodyBalanceUseCase struct {
	custodian entity.Account
	native    port.NativeLedger
	tokens    port.TokenLedger
}

// NewCustodyBalanceUseCase creates the balance query use case
func NewCustodyBalanceUseCase(
	custodian entity.Account,
	native port.NativeLedger,
	tokens port.TokenLedger,
) *CustodyBalanceUseCase {
	return &CustodyBalanceUseCase{
		custodian: custodian,
		native:    native,
		tokens:    tokens,
	}
}

// Native returns the custodian's native-asset balance.
func (uc *CustodyBalanceUseCase) Native(ctx context.Context) (decimal.Decimal, error) {
	return uc.native.BalanceOf(ctx, uc.custodian)
}

// Token returns the custodian's holding of the given token.
func (uc *CustodyBalanceUseCase) Token(ctx context.Context, token string) (decimal.Decimal, error) {
	return uc.tokens.BalanceOf(ctx, token, uc.custodian)
}
