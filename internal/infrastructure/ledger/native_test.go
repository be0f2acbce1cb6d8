package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/infrastructure/logger"
)

func newNativeLedger() *InMemoryNativeLedger {
	return NewInMemoryNativeLedger(logger.NewLogger()).(*InMemoryNativeLedger)
}

func mustBalance(t *testing.T, l *InMemoryNativeLedger, account entity.Account) decimal.Decimal {
	t.Helper()
	balance, err := l.BalanceOf(context.Background(), account)
	if err != nil {
		t.Fatalf("BalanceOf(%s) error = %v", account, err)
	}
	return balance
}

func TestInMemoryNativeLedger_CreditAndBalance(t *testing.T) {
	l := newNativeLedger()
	ctx := context.Background()

	if err := l.Credit(ctx, "custodian", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if err := l.Credit(ctx, "custodian", decimal.NewFromInt(5)); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(15)) {
		t.Errorf("Balance = %v, want 15", got)
	}
	if got := mustBalance(t, l, "unknown"); !got.IsZero() {
		t.Errorf("Balance of unknown account = %v, want 0", got)
	}
}

func TestInMemoryNativeLedger_Transfer(t *testing.T) {
	tests := []struct {
		name        string
		fund        int64
		amount      int64
		freezeTo    bool
		wantErr     bool
		wantFrom    int64
		wantTo      int64
	}{
		{
			name:     "successful transfer",
			fund:     100,
			amount:   40,
			wantErr:  false,
			wantFrom: 60,
			wantTo:   40,
		},
		{
			name:     "insufficient funds",
			fund:     10,
			amount:   40,
			wantErr:  true,
			wantFrom: 10,
			wantTo:   0,
		},
		{
			name:     "frozen recipient",
			fund:     100,
			amount:   40,
			freezeTo: true,
			wantErr:  true,
			wantFrom: 100,
			wantTo:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newNativeLedger()
			ctx := context.Background()

			if err := l.Credit(ctx, "custodian", decimal.NewFromInt(tt.fund)); err != nil {
				t.Fatalf("Credit() error = %v", err)
			}
			if tt.freezeTo {
				l.Freeze("owner")
			}

			err := l.Transfer(ctx, "custodian", "owner", decimal.NewFromInt(tt.amount))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Transfer() error = %v, wantErr %v", err, tt.wantErr)
			}

			if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(tt.wantFrom)) {
				t.Errorf("source balance = %v, want %v", got, tt.wantFrom)
			}
			if got := mustBalance(t, l, "owner"); !got.Equal(decimal.NewFromInt(tt.wantTo)) {
				t.Errorf("recipient balance = %v, want %v", got, tt.wantTo)
			}
		})
	}
}

func TestInMemoryNativeLedger_Debit(t *testing.T) {
	l := newNativeLedger()
	ctx := context.Background()

	if err := l.Credit(ctx, "custodian", decimal.NewFromInt(10)); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	if err := l.Debit(ctx, "custodian", decimal.NewFromInt(4)); err != nil {
		t.Fatalf("Debit() error = %v", err)
	}
	if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Balance = %v, want 6", got)
	}

	if err := l.Debit(ctx, "custodian", decimal.NewFromInt(100)); err == nil {
		t.Error("Debit() beyond balance should fail")
	}
	if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Balance after failed debit = %v, want 6", got)
	}
}

func TestInMemoryNativeLedger_DistributeAtomicity(t *testing.T) {
	l := newNativeLedger()
	ctx := context.Background()

	if err := l.Credit(ctx, "custodian", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}
	l.Freeze("bob")

	err := l.Distribute(ctx, "custodian", []entity.Account{"alice", "bob"}, decimal.NewFromInt(50))
	if err == nil {
		t.Fatal("Distribute() with a frozen recipient should fail")
	}

	// Nothing must have moved, including to the recipient before the
	// frozen one.
	if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("custodian balance = %v, want 100", got)
	}
	if got := mustBalance(t, l, "alice"); !got.IsZero() {
		t.Errorf("alice balance = %v, want 0", got)
	}
	if got := mustBalance(t, l, "bob"); !got.IsZero() {
		t.Errorf("bob balance = %v, want 0", got)
	}
}

func TestInMemoryNativeLedger_Distribute(t *testing.T) {
	l := newNativeLedger()
	ctx := context.Background()

	if err := l.Credit(ctx, "custodian", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Credit() error = %v", err)
	}

	owners := []entity.Account{"alice", "bob", "carol"}
	if err := l.Distribute(ctx, "custodian", owners, decimal.NewFromInt(33)); err != nil {
		t.Fatalf("Distribute() error = %v", err)
	}

	for _, owner := range owners {
		if got := mustBalance(t, l, owner); !got.Equal(decimal.NewFromInt(33)) {
			t.Errorf("%s balance = %v, want 33", owner, got)
		}
	}
	if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(1)) {
		t.Errorf("custodian balance = %v, want 1", got)
	}
}

func TestInMemoryNativeLedger_ConcurrentCredits(t *testing.T) {
	l := newNativeLedger()
	ctx := context.Background()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_ = l.Credit(ctx, "custodian", decimal.NewFromInt(1))
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := mustBalance(t, l, "custodian"); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Balance = %v, want 10", got)
	}
}
