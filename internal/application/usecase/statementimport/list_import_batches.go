package statementimport

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

// ListImportBatchesInput represents the input for listing import history.
type ListImportBatchesInput struct {
	UserID uuid.UUID
}

// ListImportBatchesOutput represents the user's committed imports, newest first.
type ListImportBatchesOutput struct {
	Batches []*entity.ImportBatch
}

// ListImportBatchesUseCase returns the import history of a user.
type ListImportBatchesUseCase struct {
	batchRepo adapter.ImportBatchRepository
}

// NewListImportBatchesUseCase creates a new ListImportBatchesUseCase instance.
func NewListImportBatchesUseCase(batchRepo adapter.ImportBatchRepository) *ListImportBatchesUseCase {
	return &ListImportBatchesUseCase{batchRepo: batchRepo}
}

// Execute performs the listing.
func (uc *ListImportBatchesUseCase) Execute(ctx context.Context, input ListImportBatchesInput) (*ListImportBatchesOutput, error) {
	batches, err := uc.batchRepo.FindByUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list import batches: %w", err)
	}
	if batches == nil {
		batches = []*entity.ImportBatch{}
	}
	return &ListImportBatchesOutput{Batches: batches}, nil
}
