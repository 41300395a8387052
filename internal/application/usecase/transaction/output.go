// Package transaction contains transaction-related use cases.
package transaction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/domain/valueobject"
)

const (
	// MaxDescriptionLength is the maximum allowed length for transaction descriptions.
	MaxDescriptionLength = 255
	// MaxNotesLength is the maximum allowed length for transaction notes.
	MaxNotesLength = 1000
)

// ResponsibilityOutput represents one party's share in the output.
type ResponsibilityOutput struct {
	ID               int64
	ResponsibleID    int64
	Percentage       decimal.Decimal
	CalculatedAmount decimal.Decimal
	Notes            string
}

// TransactionOutput represents a single transaction in the output.
type TransactionOutput struct {
	ID                int64
	UserID            uuid.UUID
	Date              time.Time
	Description       string
	Amount            decimal.Decimal
	Type              entity.TransactionType
	Subtype           entity.TransactionSubtype
	Source            entity.TransactionSource
	CategoryID        int64
	SubcategoryID     *int64
	SourceEntityID    *int64
	ExternalReference *string
	ImportBatchID     *uuid.UUID
	Notes             string
	PercentageValid   bool
	Responsibilities  []ResponsibilityOutput
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func toOutput(t *entity.Transaction) *TransactionOutput {
	responsibilities := make([]ResponsibilityOutput, len(t.Responsibilities))
	for i, r := range t.Responsibilities {
		responsibilities[i] = ResponsibilityOutput{
			ID:               r.ID,
			ResponsibleID:    r.ResponsibleID,
			Percentage:       r.Percentage,
			CalculatedAmount: r.CalculatedAmount,
			Notes:            r.Notes,
		}
	}

	return &TransactionOutput{
		ID:                t.ID,
		UserID:            t.UserID,
		Date:              t.Date,
		Description:       t.Description,
		Amount:            t.Amount,
		Type:              t.Type,
		Subtype:           t.Subtype,
		Source:            t.Source,
		CategoryID:        t.CategoryID,
		SubcategoryID:     t.SubcategoryID,
		SourceEntityID:    t.SourceEntityID,
		ExternalReference: t.ExternalReference,
		ImportBatchID:     t.ImportBatchID,
		Notes:             t.Notes,
		PercentageValid:   len(t.Responsibilities) == 0 || t.IsPercentageValid(),
		Responsibilities:  responsibilities,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

// validateAllocations checks a responsibility set. An empty set is allowed.
func validateAllocations(allocations []entity.ResponsibilityAllocation) error {
	if len(allocations) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(allocations))
	percentages := make([]decimal.Decimal, 0, len(allocations))
	for _, a := range allocations {
		if a.ResponsibleID <= 0 || !valueobject.IsPercentageInRange(a.Percentage) || !valueobject.HasPercentagePrecision(a.Percentage) {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeInvalidResponsibility,
				fmt.Sprintf("responsibility for %d must name a party and a percentage between 0 and 100 with at most two decimals", a.ResponsibleID),
				domainerror.ErrInvalidResponsibilityPercentage,
			)
		}
		if _, dup := seen[a.ResponsibleID]; dup {
			return domainerror.NewTransactionError(
				domainerror.ErrCodeDuplicateResponsibleParty,
				fmt.Sprintf("responsible %d is listed more than once", a.ResponsibleID),
				domainerror.ErrDuplicateResponsibleParty,
			)
		}
		seen[a.ResponsibleID] = struct{}{}
		percentages = append(percentages, a.Percentage)
	}

	if !valueobject.SumsToWhole(percentages) {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeResponsibilitiesNotWhole,
			"responsibility percentages must sum to 100.00",
			domainerror.ErrResponsibilitiesNotWhole,
		)
	}
	return nil
}

func validateText(description, notes string) error {
	if len(description) > MaxDescriptionLength {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeDescriptionTooLong,
			fmt.Sprintf("description must not exceed %d characters", MaxDescriptionLength),
			domainerror.ErrDescriptionTooLong,
		)
	}
	if len(notes) > MaxNotesLength {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeNotesTooLong,
			fmt.Sprintf("notes must not exceed %d characters", MaxNotesLength),
			domainerror.ErrNotesTooLong,
		)
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionAmount,
			"amount must be greater than zero",
			domainerror.ErrInvalidTransactionAmount,
		)
	}
	return nil
}

func validateEnums(t entity.TransactionType, subtype entity.TransactionSubtype, source entity.TransactionSource) error {
	if _, ok := entity.ParseTransactionType(string(t)); !ok {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionType,
			"transaction type must be INCOME or EXPENSE",
			domainerror.ErrInvalidTransactionType,
		)
	}
	if _, ok := entity.ParseTransactionSubtype(string(subtype)); !ok {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionSubtype,
			"transaction subtype must be FIXED or VARIABLE",
			domainerror.ErrInvalidTransactionSubtype,
		)
	}
	if _, ok := entity.ParseTransactionSource(string(source)); !ok {
		return domainerror.NewTransactionError(
			domainerror.ErrCodeInvalidTransactionSource,
			"transaction source is not supported",
			domainerror.ErrInvalidTransactionSource,
		)
	}
	return nil
}
