// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/integration/persistence/model"
)

// transactionRepository implements the adapter.TransactionRepository interface.
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository instance.
func NewTransactionRepository(db *gorm.DB) adapter.TransactionRepository {
	return &transactionRepository{
		db: db,
	}
}

func withResponsibilities(db *gorm.DB) *gorm.DB {
	return db.Preload("Responsibilities", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	})
}

// Create creates a new transaction together with its responsibility set.
func (r *transactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.TransactionFromEntity(transaction)
	if err := conn(ctx, r.db).Create(transactionModel).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domainerror.ErrDuplicateExternalReference, derefString(transaction.ExternalReference))
		}
		return err
	}

	copyIdentifiers(transaction, transactionModel)
	return nil
}

// FindByID retrieves a transaction by its ID.
func (r *transactionRepository) FindByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	var transactionModel model.TransactionModel
	result := withResponsibilities(conn(ctx, r.db)).Where("id = ?", id).First(&transactionModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return transactionModel.ToEntity(), nil
}

// FindByFilter retrieves transactions based on filter criteria with pagination.
func (r *transactionRepository) FindByFilter(ctx context.Context, filter adapter.TransactionFilter, pagination adapter.TransactionPagination) (*entity.TransactionListResult, error) {
	query := conn(ctx, r.db).Model(&model.TransactionModel{}).Where("user_id = ?", filter.UserID)

	if filter.StartDate != nil {
		query = query.Where("date >= ?", filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("date <= ?", filter.EndDate)
	}
	if len(filter.CategoryIDs) > 0 {
		query = query.Where("category_id IN ?", filter.CategoryIDs)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", string(*filter.Type))
	}
	if filter.ImportBatchID != nil {
		query = query.Where("import_batch_id = ?", *filter.ImportBatchID)
	}
	if filter.Search != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	offset := (pagination.Page - 1) * pagination.Limit
	totalPages := int((total + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	var transactionModels []model.TransactionModel
	result := withResponsibilities(query).
		Order("date DESC, id DESC").
		Offset(offset).
		Limit(pagination.Limit).
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	transactions := make([]*entity.Transaction, len(transactionModels))
	for i := range transactionModels {
		transactions[i] = transactionModels[i].ToEntity()
	}

	return &entity.TransactionListResult{
		Transactions: transactions,
		Total:        total,
		Page:         pagination.Page,
		Limit:        pagination.Limit,
		TotalPages:   totalPages,
	}, nil
}

// Update saves the transaction columns and replaces its responsibility set.
func (r *transactionRepository) Update(ctx context.Context, transaction *entity.Transaction) error {
	transactionModel := model.TransactionFromEntity(transaction)
	for i := range transactionModel.Responsibilities {
		transactionModel.Responsibilities[i].ID = 0
	}

	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		result := tx.Omit(clause.Associations).Save(transactionModel)
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("transaction_id = ?", transaction.ID).Delete(&model.TransactionResponsibilityModel{}).Error; err != nil {
			return err
		}
		if len(transactionModel.Responsibilities) > 0 {
			if err := tx.Create(&transactionModel.Responsibilities).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", domainerror.ErrDuplicateExternalReference, derefString(transaction.ExternalReference))
		}
		return err
	}

	copyIdentifiers(transaction, transactionModel)
	return nil
}

// Delete removes a transaction and its responsibilities.
func (r *transactionRepository) Delete(ctx context.Context, id int64) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).Delete(&model.TransactionResponsibilityModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.TransactionModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerror.ErrTransactionNotFound
		}
		return nil
	})
}

// FindByExternalReferences returns the user's transactions keyed by external reference.
func (r *transactionRepository) FindByExternalReferences(ctx context.Context, userID uuid.UUID, references []string) (map[string]*entity.Transaction, error) {
	found := make(map[string]*entity.Transaction, len(references))
	if len(references) == 0 {
		return found, nil
	}

	var transactionModels []model.TransactionModel
	result := withResponsibilities(conn(ctx, r.db)).
		Where("user_id = ? AND external_reference IN ?", userID, references).
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	for i := range transactionModels {
		transaction := transactionModels[i].ToEntity()
		found[*transaction.ExternalReference] = transaction
	}
	return found, nil
}

// FindByFingerprints returns the user's transactions keyed by fingerprint, oldest first wins.
func (r *transactionRepository) FindByFingerprints(ctx context.Context, userID uuid.UUID, fingerprints []string) (map[string]*entity.Transaction, error) {
	found := make(map[string]*entity.Transaction, len(fingerprints))
	if len(fingerprints) == 0 {
		return found, nil
	}

	var transactionModels []model.TransactionModel
	result := withResponsibilities(conn(ctx, r.db)).
		Where("user_id = ? AND fingerprint IN ?", userID, fingerprints).
		Order("created_at ASC, id ASC").
		Find(&transactionModels)
	if result.Error != nil {
		return nil, result.Error
	}

	for i := range transactionModels {
		if _, seen := found[transactionModels[i].Fingerprint]; seen {
			continue
		}
		found[transactionModels[i].Fingerprint] = transactionModels[i].ToEntity()
	}
	return found, nil
}

func copyIdentifiers(transaction *entity.Transaction, transactionModel *model.TransactionModel) {
	transaction.ID = transactionModel.ID
	for i := range transaction.Responsibilities {
		transaction.Responsibilities[i].ID = transactionModel.Responsibilities[i].ID
		transaction.Responsibilities[i].TransactionID = transactionModel.ID
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
