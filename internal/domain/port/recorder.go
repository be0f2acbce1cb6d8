package port

import (
	"context"

	"custodia.io/internal/domain/entity"
)

// ReceiptRecorder is the port deposit receipts are announced through.
// Consumers are off-chain observers and indexers.
type ReceiptRecorder interface {
	Record(ctx context.Context, receipt entity.Receipt) error
	Recent(ctx context.Context, limit int) ([]entity.Receipt, error)
}
