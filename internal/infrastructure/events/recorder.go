package events

import (
	"context"
	"sync"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
	"custodia.io/internal/infrastructure/logger"
)

// InMemoryRecorder implements the ReceiptRecorder port. It keeps the
// most recent receipts for off-chain observers, bounded so a
// long-running custodian does not grow without limit. Each recorded
// receipt is also logged, which is the primary announcement channel.
type InMemoryRecorder struct {
	mu       sync.RWMutex
	receipts []entity.Receipt
	capacity int
	logger   logger.Logger
}

// NewInMemoryRecorder creates a recorder retaining up to capacity
// receipts. A non-positive capacity falls back to 1024.
func NewInMemoryRecorder(capacity int, log logger.Logger) port.ReceiptRecorder {
	if capacity <= 0 {
		capacity = 1024
	}
	return &InMemoryRecorder{
		receipts: make([]entity.Receipt, 0, capacity),
		capacity: capacity,
		logger:   log.WithComponent("receipts"),
	}
}

// Record announces a receipt and retains it.
func (r *InMemoryRecorder) Record(ctx context.Context, receipt entity.Receipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.receipts = append(r.receipts, receipt)
	if len(r.receipts) > r.capacity {
		r.receipts = r.receipts[len(r.receipts)-r.capacity:]
	}

	r.logger.LogInfo(ctx, "Receipt recorded",
		"receipt_id", receipt.ID,
		"sender", string(receipt.Sender),
		"amount", receipt.Amount.String(),
		"had_payload", receipt.HadPayload)

	return nil
}

// Recent returns up to limit receipts, newest first.
func (r *InMemoryRecorder) Recent(_ context.Context, limit int) ([]entity.Receipt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.receipts) {
		limit = len(r.receipts)
	}

	out := make([]entity.Receipt, 0, limit)
	for i := len(r.receipts) - 1; i >= len(r.receipts)-limit; i-- {
		out = append(out, r.receipts[i])
	}
	return out, nil
}
