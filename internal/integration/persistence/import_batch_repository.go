package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	"github.com/finance-tracker/importer/internal/integration/persistence/model"
)

type importBatchRepository struct {
	db *gorm.DB
}

// NewImportBatchRepository creates a new import batch repository instance.
func NewImportBatchRepository(db *gorm.DB) adapter.ImportBatchRepository {
	return &importBatchRepository{db: db}
}

// Create records a committed import.
func (r *importBatchRepository) Create(ctx context.Context, batch *entity.ImportBatch) error {
	return conn(ctx, r.db).Create(model.ImportBatchFromEntity(batch)).Error
}

// FindByUser returns the user's import history, newest first.
func (r *importBatchRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*entity.ImportBatch, error) {
	var batchModels []model.ImportBatchModel
	result := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&batchModels)
	if result.Error != nil {
		return nil, result.Error
	}

	batches := make([]*entity.ImportBatch, len(batchModels))
	for i := range batchModels {
		batches[i] = batchModels[i].ToEntity()
	}
	return batches, nil
}
