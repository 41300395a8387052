package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// ImportBatchRepository stores the history of committed imports.
type ImportBatchRepository interface {
	Create(ctx context.Context, batch *entity.ImportBatch) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.ImportBatch, error)
}
