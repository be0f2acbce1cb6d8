package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

// OperationDistribute is the payload name that dispatches here.
const OperationDistribute = "distribute"

// DistributeUseCase splits an inbound amount evenly across the
// configured payout owners. Shares are floor(amount/N); whatever the
// integer division strands stays in the custodian's balance, so
// sum(shares) + remainder always equals the original amount.
type DistributeUseCase struct {
	custodian entity.Account
	owners    []entity.Account
	ledger    port.NativeLedger
	logger    logger.Logger
}

// NewDistributeUseCase creates the distribution operation
func NewDistributeUseCase(
	custodian entity.Account,
	owners []entity.Account,
	ledger port.NativeLedger,
	log logger.Logger,
) *DistributeUseCase {
	return &DistributeUseCase{
		custodian: custodian,
		owners:    owners,
		ledger:    ledger,
		logger:    log,
	}
}

// Name implements Operation.
func (uc *DistributeUseCase) Name() string {
	return OperationDistribute
}

// Execute credits the inbound amount and pays each owner its share as
// one all-or-nothing batch. Any recipient failing aborts the whole
// distribution and rolls the deposit credit back, so a failed call
// leaves every balance unchanged.
func (uc *DistributeUseCase) Execute(ctx context.Context, call entity.InboundCall) error {
	if !call.Amount.IsPositive() {
		return entity.ErrZeroValue
	}
	if len(uc.owners) == 0 {
		return fmt.Errorf("no payout owners configured")
	}

	share := call.Amount.Div(decimal.NewFromInt(int64(len(uc.owners)))).Floor()

	if err := uc.ledger.Credit(ctx, uc.custodian, call.Amount); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
	}

	if share.IsPositive() {
		if err := uc.ledger.Distribute(ctx, uc.custodian, uc.owners, share); err != nil {
			// Undo the credit so the aborted call leaves no trace.
			if derr := uc.ledger.Debit(ctx, uc.custodian, call.Amount); derr != nil {
				uc.logger.LogError(ctx, "Failed to roll back distribution credit", derr,
					"sender", string(call.Sender),
					"amount", call.Amount.String())
			}
			return fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
		}
	}

	remainder := call.Amount.Sub(share.Mul(decimal.NewFromInt(int64(len(uc.owners)))))
	uc.logger.LogInfo(ctx, "Distribution completed",
		"sender", string(call.Sender),
		"amount", call.Amount.String(),
		"owners", len(uc.owners),
		"share", share.String(),
		"retained", remainder.String())

	return nil
}
