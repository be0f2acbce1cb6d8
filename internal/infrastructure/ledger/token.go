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

// InMemoryTokenLedger implements the TokenLedger port. Each token id
// keys its own balance map, mirroring a token contract keeping its own
// books. Transfers on a token marked as failing report false without
// moving anything, which models contracts that signal failure by
// boolean return rather than abort.
type InMemoryTokenLedger struct {
	mu       sync.RWMutex
	balances map[string]map[entity.Account]decimal.Decimal
	failing  map[string]bool
	logger   logger.Logger
}

// NewInMemoryTokenLedger creates an empty token ledger
func NewInMemoryTokenLedger(log logger.Logger) port.TokenLedger {
	return &InMemoryTokenLedger{
		balances: make(map[string]map[entity.Account]decimal.Decimal),
		failing:  make(map[string]bool),
		logger:   log.WithComponent("token_ledger"),
	}
}

// Mint credits an account with token units, standing in for the token
// contract's own issuance or inbound transfers.
func (l *InMemoryTokenLedger) Mint(ctx context.Context, token string, account entity.Account, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return entity.ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balances[token] == nil {
		l.balances[token] = make(map[entity.Account]decimal.Decimal)
	}
	l.balances[token][account] = l.balances[token][account].Add(amount)

	l.logger.LogInfo(ctx, "Token minted",
		"token", token,
		"account", string(account),
		"amount", amount.String())

	return nil
}

// BalanceOf returns the account's holding of a token, zero by default.
func (l *InMemoryTokenLedger) BalanceOf(_ context.Context, token string, account entity.Account) (decimal.Decimal, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	holdings := l.balances[token]
	if holdings == nil {
		return decimal.Zero, nil
	}
	return holdings[account], nil
}

// Transfer moves token units between accounts. A failing token reports
// (false, nil); insufficient funds abort with an error. Either way
// nothing is moved on failure.
func (l *InMemoryTokenLedger) Transfer(ctx context.Context, token string, from, to entity.Account, amount decimal.Decimal) (bool, error) {
	if amount.IsNegative() {
		return false, entity.ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failing[token] {
		l.logger.LogWarning(ctx, "Token transfer reported failure",
			"token", token,
			"from", string(from),
			"to", string(to))
		return false, nil
	}

	holdings := l.balances[token]
	if holdings == nil || holdings[from].LessThan(amount) {
		return false, fmt.Errorf("insufficient token funds: %s holds %s of %s, needs %s",
			from, holdings[from], token, amount)
	}

	holdings[from] = holdings[from].Sub(amount)
	holdings[to] = holdings[to].Add(amount)

	l.logger.LogInfo(ctx, "Token transfer applied",
		"token", token,
		"from", string(from),
		"to", string(to),
		"amount", amount.String())

	return true, nil
}

// SetFailing marks a token so its transfers report failure.
func (l *InMemoryTokenLedger) SetFailing(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failing[token] = true
}
