package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/infrastructure/access"
	"custodia.io/internal/infrastructure/ledger"
	"custodia.io/internal/infrastructure/logger"
)

const ownerAccount = entity.Account("owner")

func TestWithdrawNativeUseCase_Execute(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()

	t.Run("non-owner is rejected with balances unchanged", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewWithdrawNativeUseCase(custodianAccount, nativeLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		if err := nativeLedger.Credit(ctx, custodianAccount, decimal.NewFromInt(15)); err != nil {
			t.Fatalf("Credit() error = %v", err)
		}

		_, err := uc.Execute(ctx, "mallory")
		if !errors.Is(err, entity.ErrUnauthorized) {
			t.Fatalf("Execute() error = %v, want ErrUnauthorized", err)
		}

		balance, _ := nativeLedger.BalanceOf(ctx, custodianAccount)
		if !balance.Equal(decimal.NewFromInt(15)) {
			t.Errorf("custodian balance = %v, want 15", balance)
		}
	})

	t.Run("owner drains the full balance, second call is a no-op", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewWithdrawNativeUseCase(custodianAccount, nativeLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		if err := nativeLedger.Credit(ctx, custodianAccount, decimal.NewFromInt(15)); err != nil {
			t.Fatalf("Credit() error = %v", err)
		}

		amount, err := uc.Execute(ctx, ownerAccount)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !amount.Equal(decimal.NewFromInt(15)) {
			t.Errorf("withdrawn amount = %v, want 15", amount)
		}

		custodianBalance, _ := nativeLedger.BalanceOf(ctx, custodianAccount)
		if !custodianBalance.IsZero() {
			t.Errorf("custodian balance = %v, want 0", custodianBalance)
		}
		ownerBalance, _ := nativeLedger.BalanceOf(ctx, ownerAccount)
		if !ownerBalance.Equal(decimal.NewFromInt(15)) {
			t.Errorf("owner balance = %v, want 15", ownerBalance)
		}

		// Withdrawing again immediately is a successful zero transfer.
		amount, err = uc.Execute(ctx, ownerAccount)
		if err != nil {
			t.Fatalf("second Execute() error = %v", err)
		}
		if !amount.IsZero() {
			t.Errorf("second withdrawn amount = %v, want 0", amount)
		}
	})

	t.Run("transfer failure leaves the balance unchanged", func(t *testing.T) {
		nativeLedger := ledger.NewInMemoryNativeLedger(log).(*ledger.InMemoryNativeLedger)
		uc := NewWithdrawNativeUseCase(custodianAccount, nativeLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		if err := nativeLedger.Credit(ctx, custodianAccount, decimal.NewFromInt(15)); err != nil {
			t.Fatalf("Credit() error = %v", err)
		}
		nativeLedger.Freeze(ownerAccount)

		_, err := uc.Execute(ctx, ownerAccount)
		if !errors.Is(err, entity.ErrTransferFailed) {
			t.Fatalf("Execute() error = %v, want ErrTransferFailed", err)
		}

		balance, _ := nativeLedger.BalanceOf(ctx, custodianAccount)
		if !balance.Equal(decimal.NewFromInt(15)) {
			t.Errorf("custodian balance = %v, want 15", balance)
		}
	})
}

func TestWithdrawTokenUseCase_Execute(t *testing.T) {
	log := logger.NewLogger()
	ctx := context.Background()
	const token = "USDX"

	t.Run("non-owner is rejected", func(t *testing.T) {
		tokenLedger := ledger.NewInMemoryTokenLedger(log).(*ledger.InMemoryTokenLedger)
		uc := NewWithdrawTokenUseCase(custodianAccount, tokenLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		_, err := uc.Execute(ctx, "mallory", token)
		if !errors.Is(err, entity.ErrUnauthorized) {
			t.Errorf("Execute() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("owner drains the full holding", func(t *testing.T) {
		tokenLedger := ledger.NewInMemoryTokenLedger(log).(*ledger.InMemoryTokenLedger)
		uc := NewWithdrawTokenUseCase(custodianAccount, tokenLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		if err := tokenLedger.Mint(ctx, token, custodianAccount, decimal.NewFromInt(40)); err != nil {
			t.Fatalf("Mint() error = %v", err)
		}

		amount, err := uc.Execute(ctx, ownerAccount, token)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !amount.Equal(decimal.NewFromInt(40)) {
			t.Errorf("withdrawn amount = %v, want 40", amount)
		}

		custodianBalance, _ := tokenLedger.BalanceOf(ctx, token, custodianAccount)
		if !custodianBalance.IsZero() {
			t.Errorf("custodian token balance = %v, want 0", custodianBalance)
		}
		ownerBalance, _ := tokenLedger.BalanceOf(ctx, token, ownerAccount)
		if !ownerBalance.Equal(decimal.NewFromInt(40)) {
			t.Errorf("owner token balance = %v, want 40", ownerBalance)
		}
	})

	t.Run("zero holding is a no-op", func(t *testing.T) {
		tokenLedger := ledger.NewInMemoryTokenLedger(log).(*ledger.InMemoryTokenLedger)
		uc := NewWithdrawTokenUseCase(custodianAccount, tokenLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		amount, err := uc.Execute(ctx, ownerAccount, token)
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
		if !amount.IsZero() {
			t.Errorf("withdrawn amount = %v, want 0", amount)
		}
	})

	t.Run("boolean failure maps to ErrTransferFailed", func(t *testing.T) {
		tokenLedger := ledger.NewInMemoryTokenLedger(log).(*ledger.InMemoryTokenLedger)
		uc := NewWithdrawTokenUseCase(custodianAccount, tokenLedger, access.NewStaticOwnerRegistry(ownerAccount), log)

		if err := tokenLedger.Mint(ctx, token, custodianAccount, decimal.NewFromInt(40)); err != nil {
			t.Fatalf("Mint() error = %v", err)
		}
		tokenLedger.SetFailing(token)

		_, err := uc.Execute(ctx, ownerAccount, token)
		if !errors.Is(err, entity.ErrTransferFailed) {
			t.Fatalf("Execute() error = %v, want ErrTransferFailed", err)
		}

		balance, _ := tokenLedger.BalanceOf(ctx, token, custodianAccount)
		if !balance.Equal(decimal.NewFromInt(40)) {
			t.Errorf("custodian token balance = %v, want 40", balance)
		}
	})
}
