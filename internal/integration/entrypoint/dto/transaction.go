package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/application/usecase/transaction"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

// CreateTransactionRequest represents the request body for transaction creation.
type CreateTransactionRequest struct {
	Date             string                  `json:"date" binding:"required"`
	Description      string                  `json:"description" binding:"required"`
	Amount           decimal.Decimal         `json:"amount"`
	Type             string                  `json:"type" binding:"required"`
	Subtype          string                  `json:"subtype" binding:"required"`
	Source           string                  `json:"source" binding:"required"`
	CategoryID       int64                   `json:"categoryId" binding:"required"`
	SubcategoryID    *int64                  `json:"subcategoryId,omitempty"`
	SourceEntityID   *int64                  `json:"sourceEntityId,omitempty"`
	Notes            string                  `json:"notes,omitempty"`
	Responsibilities []ResponsibilityRequest `json:"responsibilities,omitempty"`
}

// ToInput converts the request into the use case input.
func (r *CreateTransactionRequest) ToInput(userID uuid.UUID) (transaction.CreateTransactionInput, error) {
	date, err := ParseDate(r.Date)
	if err != nil {
		return transaction.CreateTransactionInput{}, err
	}

	return transaction.CreateTransactionInput{
		UserID:           userID,
		Date:             date,
		Description:      r.Description,
		Amount:           r.Amount,
		Type:             entity.TransactionType(upper(r.Type)),
		Subtype:          entity.TransactionSubtype(upper(r.Subtype)),
		Source:           entity.TransactionSource(upper(r.Source)),
		CategoryID:       r.CategoryID,
		SubcategoryID:    r.SubcategoryID,
		SourceEntityID:   r.SourceEntityID,
		Notes:            r.Notes,
		Responsibilities: ToAllocations(r.Responsibilities),
	}, nil
}

// UpdateTransactionRequest represents the request body for transaction update.
// A present responsibilities array replaces the whole set; an empty array clears it.
type UpdateTransactionRequest struct {
	Date              *string                  `json:"date,omitempty"`
	Description       *string                  `json:"description,omitempty"`
	Amount            *decimal.Decimal         `json:"amount,omitempty"`
	Type              *string                  `json:"type,omitempty"`
	Subtype           *string                  `json:"subtype,omitempty"`
	Source            *string                  `json:"source,omitempty"`
	CategoryID        *int64                   `json:"categoryId,omitempty"`
	SubcategoryID     *int64                   `json:"subcategoryId,omitempty"`
	ClearSubcategory  bool                     `json:"clearSubcategory,omitempty"`
	SourceEntityID    *int64                   `json:"sourceEntityId,omitempty"`
	ClearSourceEntity bool                     `json:"clearSourceEntity,omitempty"`
	Notes             *string                  `json:"notes,omitempty"`
	Responsibilities  *[]ResponsibilityRequest `json:"responsibilities,omitempty"`
}

// ToInput converts the request into the use case input.
func (r *UpdateTransactionRequest) ToInput(transactionID int64, userID uuid.UUID) (transaction.UpdateTransactionInput, error) {
	input := transaction.UpdateTransactionInput{
		TransactionID:     transactionID,
		UserID:            userID,
		Description:       r.Description,
		Amount:            r.Amount,
		CategoryID:        r.CategoryID,
		SubcategoryID:     r.SubcategoryID,
		ClearSubcategory:  r.ClearSubcategory,
		SourceEntityID:    r.SourceEntityID,
		ClearSourceEntity: r.ClearSourceEntity,
		Notes:             r.Notes,
	}

	if r.Date != nil {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return transaction.UpdateTransactionInput{}, err
		}
		input.Date = &date
	}
	if r.Type != nil {
		t := entity.TransactionType(upper(*r.Type))
		input.Type = &t
	}
	if r.Subtype != nil {
		s := entity.TransactionSubtype(upper(*r.Subtype))
		input.Subtype = &s
	}
	if r.Source != nil {
		s := entity.TransactionSource(upper(*r.Source))
		input.Source = &s
	}
	if r.Responsibilities != nil {
		allocations := ToAllocations(*r.Responsibilities)
		input.Responsibilities = &allocations
	}

	return input, nil
}

// TransactionResponse represents a single transaction in API responses.
type TransactionResponse struct {
	ID                int64                    `json:"id"`
	UserID            string                   `json:"userId"`
	Date              string                   `json:"date"`
	Description       string                   `json:"description"`
	Amount            string                   `json:"amount"`
	Type              string                   `json:"type"`
	Subtype           string                   `json:"subtype"`
	Source            string                   `json:"source"`
	CategoryID        int64                    `json:"categoryId"`
	SubcategoryID     *int64                   `json:"subcategoryId,omitempty"`
	SourceEntityID    *int64                   `json:"sourceEntityId,omitempty"`
	ExternalReference *string                  `json:"externalReference,omitempty"`
	ImportBatchID     *string                  `json:"importBatchId,omitempty"`
	Notes             string                   `json:"notes"`
	PercentageValid   bool                     `json:"isPercentageValid"`
	Responsibilities  []ResponsibilityResponse `json:"responsibilities"`
	CreatedAt         time.Time                `json:"createdAt"`
	UpdatedAt         time.Time                `json:"updatedAt"`
}

// TransactionPaginationResponse represents pagination information in API responses.
type TransactionPaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// TransactionListResponse represents the response for listing transactions.
type TransactionListResponse struct {
	Transactions []TransactionResponse         `json:"transactions"`
	Pagination   TransactionPaginationResponse `json:"pagination"`
}

// ToTransactionResponse converts a TransactionOutput to a TransactionResponse DTO.
func ToTransactionResponse(txn *transaction.TransactionOutput) TransactionResponse {
	response := TransactionResponse{
		ID:                txn.ID,
		UserID:            txn.UserID.String(),
		Date:              txn.Date.Format(dateLayout),
		Description:       txn.Description,
		Amount:            txn.Amount.StringFixed(2),
		Type:              string(txn.Type),
		Subtype:           string(txn.Subtype),
		Source:            string(txn.Source),
		CategoryID:        txn.CategoryID,
		SubcategoryID:     txn.SubcategoryID,
		SourceEntityID:    txn.SourceEntityID,
		ExternalReference: txn.ExternalReference,
		Notes:             txn.Notes,
		PercentageValid:   txn.PercentageValid,
		CreatedAt:         txn.CreatedAt,
		UpdatedAt:         txn.UpdatedAt,
		Responsibilities: lo.Map(txn.Responsibilities, func(r transaction.ResponsibilityOutput, _ int) ResponsibilityResponse {
			id := r.ID
			return ResponsibilityResponse{
				ID:               &id,
				ResponsibleID:    r.ResponsibleID,
				Percentage:       r.Percentage.StringFixed(2),
				CalculatedAmount: r.CalculatedAmount.StringFixed(2),
				Notes:            r.Notes,
			}
		}),
	}

	if txn.ImportBatchID != nil {
		batchID := txn.ImportBatchID.String()
		response.ImportBatchID = &batchID
	}

	return response
}

// ToTransactionListResponse converts a ListTransactionsOutput to a TransactionListResponse DTO.
func ToTransactionListResponse(output *transaction.ListTransactionsOutput) TransactionListResponse {
	return TransactionListResponse{
		Transactions: lo.Map(output.Transactions, func(t *transaction.TransactionOutput, _ int) TransactionResponse {
			return ToTransactionResponse(t)
		}),
		Pagination: TransactionPaginationResponse{
			Page:       output.Pagination.Page,
			Limit:      output.Pagination.Limit,
			Total:      output.Pagination.Total,
			TotalPages: output.Pagination.TotalPages,
		},
	}
}
