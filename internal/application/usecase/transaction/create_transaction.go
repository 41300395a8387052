package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

// CreateTransactionInput represents the input for transaction creation.
type CreateTransactionInput struct {
	UserID           uuid.UUID
	Date             time.Time
	Description      string
	Amount           decimal.Decimal
	Type             entity.TransactionType
	Subtype          entity.TransactionSubtype
	Source           entity.TransactionSource
	CategoryID       int64
	SubcategoryID    *int64
	SourceEntityID   *int64
	Notes            string
	Responsibilities []entity.ResponsibilityAllocation
}

// CreateTransactionOutput represents the output of transaction creation.
type CreateTransactionOutput struct {
	Transaction *TransactionOutput
}

// CreateTransactionUseCase handles manual transaction entry.
type CreateTransactionUseCase struct {
	transactionRepo adapter.TransactionRepository
	catalog         adapter.CatalogLookup
}

// NewCreateTransactionUseCase creates a new CreateTransactionUseCase instance.
func NewCreateTransactionUseCase(
	transactionRepo adapter.TransactionRepository,
	catalog adapter.CatalogLookup,
) *CreateTransactionUseCase {
	return &CreateTransactionUseCase{
		transactionRepo: transactionRepo,
		catalog:         catalog,
	}
}

// Execute performs the transaction creation.
func (uc *CreateTransactionUseCase) Execute(ctx context.Context, input CreateTransactionInput) (*CreateTransactionOutput, error) {
	if input.Date.IsZero() || input.CategoryID <= 0 {
		return nil, domainerror.NewTransactionError(
			domainerror.ErrCodeMissingTransactionFields,
			"date and category are required",
			nil,
		)
	}
	if err := validateText(input.Description, input.Notes); err != nil {
		return nil, err
	}
	if err := validateEnums(input.Type, input.Subtype, input.Source); err != nil {
		return nil, err
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := validateAllocations(input.Responsibilities); err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, uc.catalog, input.UserID, input.CategoryID, input.SubcategoryID, input.SourceEntityID); err != nil {
		return nil, err
	}

	txType, _ := entity.ParseTransactionType(string(input.Type))
	subtype, _ := entity.ParseTransactionSubtype(string(input.Subtype))
	source, _ := entity.ParseTransactionSource(string(input.Source))

	transaction := entity.NewTransaction(
		input.UserID,
		input.Date,
		input.Description,
		input.Amount,
		txType,
		subtype,
		source,
		input.CategoryID,
		input.Responsibilities,
	)
	transaction.SubcategoryID = input.SubcategoryID
	transaction.SourceEntityID = input.SourceEntityID
	transaction.Notes = input.Notes

	if err := uc.transactionRepo.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	return &CreateTransactionOutput{Transaction: toOutput(transaction)}, nil
}

// checkReferences verifies that every catalog entry the transaction points at belongs to the user.
func checkReferences(
	ctx context.Context,
	catalog adapter.CatalogLookup,
	userID uuid.UUID,
	categoryID int64,
	subcategoryID, sourceEntityID *int64,
) error {
	if _, err := catalog.FindCategoryByID(ctx, userID, categoryID); err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeTxnCategoryNotFound,
				"category not found",
				domainerror.ErrCategoryNotFoundForTransaction,
			)
		}
		return fmt.Errorf("failed to find category: %w", err)
	}

	if subcategoryID != nil {
		if _, err := catalog.FindSubcategoryByID(ctx, userID, *subcategoryID); err != nil {
			if errors.Is(err, domainerror.ErrSubcategoryNotFound) {
				return domainerror.NewTransactionError(
					domainerror.ErrCodeTxnSubcategoryNotFound,
					"subcategory not found",
					err,
				)
			}
			return fmt.Errorf("failed to find subcategory: %w", err)
		}
	}

	if sourceEntityID != nil {
		if _, err := catalog.FindSourceEntityByID(ctx, userID, *sourceEntityID); err != nil {
			if errors.Is(err, domainerror.ErrSourceEntityNotFound) {
				return domainerror.NewTransactionError(
					domainerror.ErrCodeTxnSourceEntityNotFound,
					"source entity not found",
					err,
				)
			}
			return fmt.Errorf("failed to find source entity: %w", err)
		}
	}

	return nil
}
