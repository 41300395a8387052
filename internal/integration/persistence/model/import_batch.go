package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// ImportBatchModel represents the import_batches table in the database.
type ImportBatchModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;index"`
	FileName            string    `gorm:"type:varchar(255)"`
	Format              string    `gorm:"type:varchar(10);not null"`
	TotalEntries        int       `gorm:"not null"`
	ProcessedEntries    int       `gorm:"not null"`
	CreatedTransactions int       `gorm:"not null"`
	UpdatedTransactions int       `gorm:"not null"`
	DuplicateEntries    int       `gorm:"not null"`
	IgnoredEntries      int       `gorm:"not null"`
	IssueCount          int       `gorm:"not null"`
	CreatedAt           time.Time `gorm:"not null;index"`
}

// TableName returns the table name for the ImportBatchModel.
func (ImportBatchModel) TableName() string {
	return "import_batches"
}

// ToEntity converts an ImportBatchModel to a domain ImportBatch.
func (m *ImportBatchModel) ToEntity() *entity.ImportBatch {
	return &entity.ImportBatch{
		ID:                  m.ID,
		UserID:              m.UserID,
		FileName:            m.FileName,
		Format:              entity.ImportFormat(m.Format),
		TotalEntries:        m.TotalEntries,
		ProcessedEntries:    m.ProcessedEntries,
		CreatedTransactions: m.CreatedTransactions,
		UpdatedTransactions: m.UpdatedTransactions,
		DuplicateEntries:    m.DuplicateEntries,
		IgnoredEntries:      m.IgnoredEntries,
		IssueCount:          m.IssueCount,
		CreatedAt:           m.CreatedAt,
	}
}

// ImportBatchFromEntity creates an ImportBatchModel from a domain ImportBatch.
func ImportBatchFromEntity(batch *entity.ImportBatch) *ImportBatchModel {
	return &ImportBatchModel{
		ID:                  batch.ID,
		UserID:              batch.UserID,
		FileName:            batch.FileName,
		Format:              string(batch.Format),
		TotalEntries:        batch.TotalEntries,
		ProcessedEntries:    batch.ProcessedEntries,
		CreatedTransactions: batch.CreatedTransactions,
		UpdatedTransactions: batch.UpdatedTransactions,
		DuplicateEntries:    batch.DuplicateEntries,
		IgnoredEntries:      batch.IgnoredEntries,
		IssueCount:          batch.IssueCount,
		CreatedAt:           batch.CreatedAt,
	}
}

// AllModels lists every model the service migrates.
func AllModels() []interface{} {
	return []interface{}{
		&CategoryModel{},
		&SubcategoryModel{},
		&SourceEntityModel{},
		&TransactionModel{},
		&TransactionResponsibilityModel{},
		&ImportBatchModel{},
	}
}
