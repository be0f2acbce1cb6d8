package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

// Operation is a named operation an inbound payload can dispatch to.
type Operation interface {
	Name() string
	Execute(ctx context.Context, call entity.InboundCall) error
}

// DepositPolicy selects what happens to unmatched inbound value.
type DepositPolicy string

const (
	// PolicyHold keeps deposited value in the custodian's balance.
	PolicyHold DepositPolicy = "hold"
	// PolicyRefund returns the custodian's entire balance to the
	// sender after the deposit is credited. Legacy behavior: it hands
	// the whole balance, not just the deposit, back to whoever calls.
	// Opt-in only, never the default.
	PolicyRefund DepositPolicy = "refund"
)

// DispatchUseCase routes an inbound call. An empty payload is the
// receive path; a payload naming a registered operation dispatches to
// it; anything else is the fallback path. Both deposit paths feed one
// crediting routine so the receipt is produced in a single place.
type DispatchUseCase struct {
	custodian entity.Account
	ledger    port.NativeLedger
	recorder  port.ReceiptRecorder
	policy    DepositPolicy
	ops       map[string]Operation
	logger    logger.Logger
}

// DispatchResult reports what a call turned into: a deposit receipt, a
// dispatched operation, or neither (the zero-value no-op).
type DispatchResult struct {
	Receipt *entity.Receipt
	Matched string
}

// NewDispatchUseCase creates the inbound dispatcher
func NewDispatchUseCase(
	custodian entity.Account,
	ledger port.NativeLedger,
	recorder port.ReceiptRecorder,
	policy DepositPolicy,
	log logger.Logger,
) *DispatchUseCase {
	if policy == "" {
		policy = PolicyHold
	}
	return &DispatchUseCase{
		custodian: custodian,
		ledger:    ledger,
		recorder:  recorder,
		policy:    policy,
		ops:       make(map[string]Operation),
		logger:    log,
	}
}

// Register makes an operation reachable by payload name.
func (uc *DispatchUseCase) Register(op Operation) {
	uc.ops[op.Name()] = op
}

// Execute handles one inbound call to completion.
func (uc *DispatchUseCase) Execute(ctx context.Context, call entity.InboundCall) (DispatchResult, error) {
	if err := call.Validate(); err != nil {
		return DispatchResult{}, err
	}

	if call.HasPayload() {
		if op, ok := uc.ops[string(call.Payload)]; ok {
			return DispatchResult{Matched: op.Name()}, op.Execute(ctx, call)
		}
	}

	// Zero value with nothing to dispatch: accepted as a no-op, no
	// credit and no receipt.
	if call.Amount.IsZero() {
		uc.logger.LogInfo(ctx, "Zero-value call accepted as no-op",
			"sender", string(call.Sender),
			"had_payload", call.HasPayload())
		return DispatchResult{}, nil
	}

	receipt, err := uc.deposit(ctx, call)
	if err != nil {
		return DispatchResult{}, err
	}
	return DispatchResult{Receipt: receipt}, nil
}

// deposit is the shared routine behind the receive and fallback paths.
// A failure after the credit rolls it back, so a failed call leaves
// every balance as it found it.
func (uc *DispatchUseCase) deposit(ctx context.Context, call entity.InboundCall) (*entity.Receipt, error) {
	if err := uc.ledger.Credit(ctx, uc.custodian, call.Amount); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
	}

	refunded := decimal.Zero
	if uc.policy == PolicyRefund {
		balance, err := uc.ledger.BalanceOf(ctx, uc.custodian)
		if err == nil {
			err = uc.ledger.Transfer(ctx, uc.custodian, call.Sender, balance)
		}
		if err != nil {
			uc.rollbackCredit(ctx, call.Amount)
			return nil, fmt.Errorf("%w: %v", entity.ErrTransferFailed, err)
		}
		refunded = balance
		uc.logger.LogWarning(ctx, "Refund policy returned full balance to sender",
			"sender", string(call.Sender),
			"refunded", balance.String())
	}

	receipt := entity.NewReceipt(call.Sender, call.Amount, call.HasPayload())
	if err := uc.recorder.Record(ctx, receipt); err != nil {
		if refunded.IsPositive() {
			if rbErr := uc.ledger.Transfer(ctx, call.Sender, uc.custodian, refunded); rbErr != nil {
				uc.logger.LogError(ctx, "Failed to reclaim refunded balance after recorder failure", rbErr,
					"sender", string(call.Sender),
					"refunded", refunded.String())
			}
		}
		uc.rollbackCredit(ctx, call.Amount)
		return nil, err
	}

	uc.logger.LogInfo(ctx, "Deposit accepted",
		"sender", string(call.Sender),
		"amount", call.Amount.String(),
		"had_payload", call.HasPayload())

	return &receipt, nil
}

// rollbackCredit undoes a deposit credit after a later step fails.
func (uc *DispatchUseCase) rollbackCredit(ctx context.Context, amount decimal.Decimal) {
	if err := uc.ledger.Debit(ctx, uc.custodian, amount); err != nil {
		uc.logger.LogError(ctx, "Failed to roll back deposit credit", err,
			"amount", amount.String())
	}
}
