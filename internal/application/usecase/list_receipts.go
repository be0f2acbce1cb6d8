package usecase

import (
	"context"

	"custodia.io/internal/domain/entity"
	"custodia.io/internal/domain/port"
)

// ListReceiptsUseCase handles receipt retrieval for observers
type ListReceiptsUseCase struct {
	recorder port.ReceiptRecorder
}

// NewListReceiptsUseCase creates a new ListReceiptsUseCase
func NewListReceiptsUseCase(recorder port.ReceiptRecorder) *ListReceiptsUseCase {
	return &ListReceiptsUseCase{
		recorder: recorder,
	}
}

// Execute returns up to limit receipts, newest first.
func (uc *ListReceiptsUseCase) Execute(ctx context.Context, limit int) ([]entity.Receipt, error) {
	return uc.recorder.Recent(ctx, limit)
}
