package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

// UpdateTransactionInput represents the input for transaction update.
// Nil fields are left unchanged.
type UpdateTransactionInput struct {
	TransactionID     int64
	UserID            uuid.UUID
	Date              *time.Time
	Description       *string
	Amount            *decimal.Decimal
	Type              *entity.TransactionType
	Subtype           *entity.TransactionSubtype
	Source            *entity.TransactionSource
	CategoryID        *int64
	SubcategoryID     *int64
	ClearSubcategory  bool
	SourceEntityID    *int64
	ClearSourceEntity bool
	Notes             *string
	Responsibilities  *[]entity.ResponsibilityAllocation // Replaces the whole set when set
}

// UpdateTransactionOutput represents the output of transaction update.
type UpdateTransactionOutput struct {
	Transaction *TransactionOutput
}

// UpdateTransactionUseCase handles transaction update logic.
type UpdateTransactionUseCase struct {
	transactionRepo adapter.TransactionRepository
	catalog         adapter.CatalogLookup
}

// NewUpdateTransactionUseCase creates a new UpdateTransactionUseCase instance.
func NewUpdateTransactionUseCase(
	transactionRepo adapter.TransactionRepository,
	catalog adapter.CatalogLookup,
) *UpdateTransactionUseCase {
	return &UpdateTransactionUseCase{
		transactionRepo: transactionRepo,
		catalog:         catalog,
	}
}

// Execute performs the transaction update. Calculated amounts and the fingerprint follow
// whatever fields changed.
func (uc *UpdateTransactionUseCase) Execute(ctx context.Context, input UpdateTransactionInput) (*UpdateTransactionOutput, error) {
	transaction, err := findOwned(ctx, uc.transactionRepo, input.TransactionID, input.UserID, "update")
	if err != nil {
		return nil, err
	}

	if input.Date != nil {
		transaction.Date = *input.Date
	}
	if input.Description != nil {
		transaction.Description = *input.Description
	}
	if input.Notes != nil {
		transaction.Notes = *input.Notes
	}
	if err := validateText(transaction.Description, transaction.Notes); err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if err := validateAmount(*input.Amount); err != nil {
			return nil, err
		}
		transaction.Amount = *input.Amount
	}

	if input.Type != nil {
		transaction.Type = *input.Type
	}
	if input.Subtype != nil {
		transaction.Subtype = *input.Subtype
	}
	if input.Source != nil {
		transaction.Source = *input.Source
	}
	if err := validateEnums(transaction.Type, transaction.Subtype, transaction.Source); err != nil {
		return nil, err
	}
	transaction.Type, _ = entity.ParseTransactionType(string(transaction.Type))
	transaction.Subtype, _ = entity.ParseTransactionSubtype(string(transaction.Subtype))
	transaction.Source, _ = entity.ParseTransactionSource(string(transaction.Source))

	if input.CategoryID != nil {
		transaction.CategoryID = *input.CategoryID
	}
	switch {
	case input.ClearSubcategory:
		transaction.SubcategoryID = nil
	case input.SubcategoryID != nil:
		transaction.SubcategoryID = input.SubcategoryID
	}
	switch {
	case input.ClearSourceEntity:
		transaction.SourceEntityID = nil
	case input.SourceEntityID != nil:
		transaction.SourceEntityID = input.SourceEntityID
	}
	if input.CategoryID != nil || input.SubcategoryID != nil || input.SourceEntityID != nil {
		if err := checkReferences(ctx, uc.catalog, input.UserID, transaction.CategoryID, transaction.SubcategoryID, transaction.SourceEntityID); err != nil {
			return nil, err
		}
	}

	if input.Responsibilities != nil {
		if err := validateAllocations(*input.Responsibilities); err != nil {
			return nil, err
		}
		transaction.AssignResponsibilities(*input.Responsibilities)
	} else {
		transaction.RecalculateResponsibilities()
	}

	transaction.RefreshFingerprint()
	transaction.UpdatedAt = time.Now().UTC()

	if err := uc.transactionRepo.Update(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	return &UpdateTransactionOutput{Transaction: toOutput(transaction)}, nil
}
