package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

// InMemoryNativeLedger implements the NativeLedger port. It stands in
// for the chain's own accounting: one mutex serializes every movement,
// so each operation commits or aborts as a unit and a balance read
// between operations is always consistent.
type InMemoryNativeLedger struct {
	mu       sync.RWMutex
	balances map[entity.Account]decimal.Decimal
	frozen   map[entity.Account]bool
	logger   logger.Logger
}

// NewInMemoryNativeLedger creates an empty native-asset ledger
func NewInMemoryNativeLedger(log logger.Logger) port.NativeLedger {
	return &InMemoryNativeLedger{
		balances: make(map[entity.Account]decimal.Decimal),
		frozen:   make(map[entity.Account]bool),
		logger:   log.WithComponent("native_ledger"),
	}
}

// BalanceOf returns the account's balance, zero for unknown accounts.
func (l *InMemoryNativeLedger) BalanceOf(_ context.Context, account entity.Account) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.balances[account], nil
}

// Credit records value arriving at an account from outside the ledger.
func (l *InMemoryNativeLedger) Credit(ctx context.Context, account entity.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return entity.ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[account] = l.balances[account].Add(amount)

	l.logger.LogInfo(ctx, "Account credited",
		"account", string(account),
		"amount", amount.String(),
		"new_balance", l.balances[account].String())

	return nil
}

// Debit removes value from an account.
func (l *InMemoryNativeLedger) Debit(ctx context.Context, account entity.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return entity.ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	current := l.balances[account]
	if current.LessThan(amount) {
		return fmt.Errorf("insufficient funds: account %s holds %s, needs %s", account, current, amount)
	}
	l.balances[account] = current.Sub(amount)

	l.logger.LogInfo(ctx, "Account debited",
		"account", string(account),
		"amount", amount.String(),
		"new_balance", l.balances[account].String())

	return nil
}

// Transfer moves value between two accounts. It fails without any
// state change when the source lacks funds or the recipient cannot
// accept value.
func (l *InMemoryNativeLedger) Transfer(ctx context.Context, from, to entity.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return entity.ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkMovement(from, to, amount); err != nil {
		l.logger.LogWarning(ctx, "Transfer rejected",
			"from", string(from),
			"to", string(to),
			"amount", amount.String(),
			"reason", err.Error())
		return err
	}

	l.balances[from] = l.balances[from].Sub(amount)
	l.balances[to] = l.balances[to].Add(amount)

	l.logger.LogInfo(ctx, "Transfer applied",
		"from", string(from),
		"to", string(to),
		"amount", amount.String())

	return nil
}

// Distribute moves the same amount from one account to each recipient.
// All movements are validated before any is applied, so a single
// unacceptable recipient aborts the whole batch with nothing moved.
func (l *InMemoryNativeLedger) Distribute(ctx context.Context, from entity.Account, to []entity.Account, each decimal.Decimal) error {
	if each.IsNegative() {
		return entity.ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	total := each.Mul(decimal.NewFromInt(int64(len(to))))
	if l.balances[from].LessThan(total) {
		return fmt.Errorf("insufficient funds: account %s holds %s, needs %s", from, l.balances[from], total)
	}
	for _, recipient := range to {
		if l.frozen[recipient] {
			l.logger.LogWarning(ctx, "Distribution aborted",
				"from", string(from),
				"recipient", string(recipient),
				"each", each.String())
			return fmt.Errorf("recipient %s cannot accept funds", recipient)
		}
	}

	for _, recipient := range to {
		l.balances[from] = l.balances[from].Sub(each)
		l.balances[recipient] = l.balances[recipient].Add(each)
	}

	l.logger.LogInfo(ctx, "Distribution applied",
		"from", string(from),
		"recipients", len(to),
		"each", each.String())

	return nil
}

// Freeze marks an account as unable to accept funds. It models a
// recipient whose transfers fail.
func (l *InMemoryNativeLedger) Freeze(account entity.Account) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.frozen[account] = true
}

func (l *InMemoryNativeLedger) checkMovement(from, to entity.Account, amount decimal.Decimal) error {
	if l.balances[from].LessThan(amount) {
		return fmt.Errorf("insufficient funds: account %s holds %s, needs %s", from, l.balances[from], amount)
	}
	if l.frozen[to] {
		return fmt.Errorf("recipient %s cannot accept funds", to)
	}
	return nil
}
