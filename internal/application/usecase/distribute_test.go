package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/infrastructure/ledger"
	"custodia.io/internal/infrastructure/logger"
)

func TestDistributeUseCase_Execute(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()
	owners := []entity.Account{"alice", "bob", "carol"}

	t.Run("even split with retained remainder", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewDistributeUseCase(custodianAccount, owners, nativeLedger, log)

		err := uc.Execute(ctx, entity.InboundCall{
			Sender:  "dave",
			Amount:  decimal.NewFromInt(100),
			Payload: []byte(OperationDistribute),
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		distributed := decimal.Zero
		for _, owner := range owners {
			balance, _ := nativeLedger.BalanceOf(ctx, owner)
			if !balance.Equal(decimal.NewFromInt(33)) {
				t.Errorf("%s balance = %v, want 33", owner, balance)
			}
			distributed = distributed.Add(balance)
		}

		retained, _ := nativeLedger.BalanceOf(ctx, custodianAccount)
		if !retained.Equal(decimal.NewFromInt(1)) {
			t.Errorf("retained remainder = %v, want 1", retained)
		}

		// Round trip: shares plus remainder equal the original amount.
		if !distributed.Add(retained).Equal(decimal.NewFromInt(100)) {
			t.Errorf("distributed %v + retained %v != 100", distributed, retained)
		}
	})

	t.Run("zero amount fails with ErrZeroValue", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewDistributeUseCase(custodianAccount, owners, nativeLedger, log)

		err := uc.Execute(ctx, entity.InboundCall{
			Sender:  "dave",
			Amount:  decimal.Zero,
			Payload: []byte(OperationDistribute),
		})
		if !errors.Is(err, entity.ErrZeroValue) {
			t.Errorf("Execute() error = %v, want ErrZeroValue", err)
		}
	})

	t.Run("failing recipient aborts atomically", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewDistributeUseCase(custodianAccount, owners, nativeLedger, log)
		nativeLedger.Freeze("bob")

		err := uc.Execute(ctx, entity.InboundCall{
			Sender:  "dave",
			Amount:  decimal.NewFromInt(100),
			Payload: []byte(OperationDistribute),
		})
		if !errors.Is(err, entity.ErrTransferFailed) {
			t.Fatalf("Execute() error = %v, want ErrTransferFailed", err)
		}

		// No partial distribution and no stranded credit.
		for _, account := range append(owners, custodianAccount) {
			balance, _ := nativeLedger.BalanceOf(ctx, account)
			if !balance.IsZero() {
				t.Errorf("%s balance = %v, want 0", account, balance)
			}
		}
	})

	t.Run("amount below owner count retains everything", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewDistributeUseCase(custodianAccount, owners, nativeLedger, log)

		err := uc.Execute(ctx, entity.InboundCall{
			Sender:  "dave",
			Amount:  decimal.NewFromInt(2),
			Payload: []byte(OperationDistribute),
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}

		retained, _ := nativeLedger.BalanceOf(ctx, custodianAccount)
		if !retained.Equal(decimal.NewFromInt(2)) {
			t.Errorf("retained = %v, want 2", retained)
		}
		for _, owner := range owners {
			balance, _ := nativeLedger.BalanceOf(ctx, owner)
			if !balance.IsZero() {
				t.Errorf("%s balance = %v, want 0", owner, balance)
			}
		}
	})

	t.Run("no owners configured fails", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewDistributeUseCase(custodianAccount, nil, nativeLedger, log)

		err := uc.Execute(ctx, entity.InboundCall{
			Sender: "dave",
			Amount: decimal.NewFromInt(100),
		})
		if err == nil {
			t.Error("Execute() with no owners should fail")
		}
	})
}
