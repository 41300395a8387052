// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/valueobject"
)

// TransactionType represents the direction of a transaction.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// TransactionSubtype tells recurring commitments apart from occasional spending.
type TransactionSubtype string

const (
	TransactionSubtypeFixed    TransactionSubtype = "FIXED"
	TransactionSubtypeVariable TransactionSubtype = "VARIABLE"
)

// TransactionSource represents the payment instrument a transaction went through.
type TransactionSource string

const (
	TransactionSourceCreditCard   TransactionSource = "CREDIT_CARD"
	TransactionSourceDebitCard    TransactionSource = "DEBIT_CARD"
	TransactionSourcePix          TransactionSource = "PIX"
	TransactionSourceBankTransfer TransactionSource = "BANK_TRANSFER"
	TransactionSourceBankSlip     TransactionSource = "BANK_SLIP"
	TransactionSourceCash         TransactionSource = "CASH"
	TransactionSourceOther        TransactionSource = "OTHER"
)

// TransactionTypes lists every valid TransactionType.
var TransactionTypes = []TransactionType{TransactionTypeIncome, TransactionTypeExpense}

// TransactionSubtypes lists every valid TransactionSubtype.
var TransactionSubtypes = []TransactionSubtype{TransactionSubtypeFixed, TransactionSubtypeVariable}

// TransactionSources lists every valid TransactionSource.
var TransactionSources = []TransactionSource{
	TransactionSourceCreditCard,
	TransactionSourceDebitCard,
	TransactionSourcePix,
	TransactionSourceBankTransfer,
	TransactionSourceBankSlip,
	TransactionSourceCash,
	TransactionSourceOther,
}

// ParseTransactionType matches a type name case-insensitively.
func ParseTransactionType(value string) (TransactionType, bool) {
	for _, t := range TransactionTypes {
		if strings.EqualFold(strings.TrimSpace(value), string(t)) {
			return t, true
		}
	}
	return "", false
}

// ParseTransactionSubtype matches a subtype name case-insensitively.
func ParseTransactionSubtype(value string) (TransactionSubtype, bool) {
	for _, s := range TransactionSubtypes {
		if strings.EqualFold(strings.TrimSpace(value), string(s)) {
			return s, true
		}
	}
	return "", false
}

// ParseTransactionSource matches a source name case-insensitively.
func ParseTransactionSource(value string) (TransactionSource, bool) {
	for _, s := range TransactionSources {
		if strings.EqualFold(strings.TrimSpace(value), string(s)) {
			return s, true
		}
	}
	return "", false
}

// Transaction represents a financial transaction in the Finance Tracker system.
type Transaction struct {
	ID                int64
	UserID            uuid.UUID
	Date              time.Time
	Description       string
	Amount            decimal.Decimal // Always non-negative, direction lives in Type
	Type              TransactionType
	Subtype           TransactionSubtype
	Source            TransactionSource
	CategoryID        int64
	SubcategoryID     *int64
	SourceEntityID    *int64
	ExternalReference *string
	Fingerprint       string
	ImportBatchID     *uuid.UUID
	Notes             string
	Responsibilities  []TransactionResponsibility
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTransaction creates a new Transaction entity with its responsibility set already allocated.
func NewTransaction(
	userID uuid.UUID,
	date time.Time,
	description string,
	amount decimal.Decimal,
	transactionType TransactionType,
	subtype TransactionSubtype,
	source TransactionSource,
	categoryID int64,
	allocations []ResponsibilityAllocation,
) *Transaction {
	now := time.Now().UTC()

	transaction := &Transaction{
		UserID:      userID,
		Date:        date,
		Description: description,
		Amount:      amount.Abs(),
		Type:        transactionType,
		Subtype:     subtype,
		Source:      source,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	transaction.AssignResponsibilities(allocations)
	transaction.RefreshFingerprint()

	return transaction
}

// SignedAmount returns the amount negated for expenses.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// RefreshFingerprint recomputes the content fingerprint used for duplicate detection.
// Dates are fingerprinted in the zone they carry.
func (t *Transaction) RefreshFingerprint() {
	t.Fingerprint = valueobject.Fingerprint(t.Date, t.SignedAmount(), t.Description)
}

// AssignResponsibilities replaces the responsibility set with one share per allocation.
func (t *Transaction) AssignResponsibilities(allocations []ResponsibilityAllocation) {
	responsibilities := make([]TransactionResponsibility, len(allocations))
	for i, allocation := range allocations {
		responsibilities[i] = TransactionResponsibility{
			TransactionID: t.ID,
			ResponsibleID: allocation.ResponsibleID,
			Percentage:    allocation.Percentage,
			Notes:         allocation.Notes,
		}
	}
	t.Responsibilities = responsibilities
	t.RecalculateResponsibilities()
}

// RecalculateResponsibilities refreshes every calculated amount from the current amount and percentages.
func (t *Transaction) RecalculateResponsibilities() {
	for i := range t.Responsibilities {
		t.Responsibilities[i].CalculatedAmount = valueobject.CalculateShare(t.Amount, t.Responsibilities[i].Percentage)
	}
}

// IsPercentageValid reports whether the responsibility percentages sum to exactly 100.00.
func (t *Transaction) IsPercentageValid() bool {
	percentages := make([]decimal.Decimal, len(t.Responsibilities))
	for i, r := range t.Responsibilities {
		percentages[i] = r.Percentage
	}
	return valueobject.SumsToWhole(percentages)
}

// TransactionListResult represents the result of listing transactions.
type TransactionListResult struct {
	Transactions []*Transaction
	Total        int64
	Page         int
	Limit        int
	TotalPages   int
}
