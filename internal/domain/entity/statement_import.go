package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportFormat identifies the statement file format.
type ImportFormat string

const (
	ImportFormatAuto ImportFormat = "AUTO"
	ImportFormatOFX  ImportFormat = "OFX"
	ImportFormatCSV  ImportFormat = "CSV"
)

// DuplicateStrategy governs what happens to entries matching an already recorded transaction.
type DuplicateStrategy string

const (
	DuplicateStrategySkip      DuplicateStrategy = "SKIP"
	DuplicateStrategyOverwrite DuplicateStrategy = "OVERWRITE"
	DuplicateStrategyFail      DuplicateStrategy = "FAIL"
)

// ColumnRole names the meaning of a delimited-text column.
type ColumnRole string

const (
	ColumnDate         ColumnRole = "date"
	ColumnDescription  ColumnRole = "description"
	ColumnAmount       ColumnRole = "amount"
	ColumnExternalID   ColumnRole = "externalId"
	ColumnType         ColumnRole = "type"
	ColumnSubtype      ColumnRole = "subtype"
	ColumnSource       ColumnRole = "source"
	ColumnCategory     ColumnRole = "category"
	ColumnSubcategory  ColumnRole = "subcategory"
	ColumnSourceEntity ColumnRole = "sourceEntity"
)

// RequiredColumns must be present in every delimited-text header.
var RequiredColumns = []ColumnRole{ColumnDate, ColumnDescription, ColumnAmount}

// OptionalColumns populate hint fields when present.
var OptionalColumns = []ColumnRole{
	ColumnExternalID,
	ColumnType,
	ColumnSubtype,
	ColumnSource,
	ColumnCategory,
	ColumnSubcategory,
	ColumnSourceEntity,
}

// CSVConfiguration describes how to read a delimited-text statement.
type CSVConfiguration struct {
	Delimiter         string
	DecimalSeparator  string
	GroupingSeparator string
	ContainsHeader    bool
	Columns           map[ColumnRole]string
	DatePatterns      []string
	Encoding          string
	Locale            string
}

// ColumnName returns the header configured for a role, defaulting to the role name itself.
func (c *CSVConfiguration) ColumnName(role ColumnRole) string {
	if name, ok := c.Columns[role]; ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return string(role)
}

// ImportConfiguration is the immutable input of one import call.
type ImportConfiguration struct {
	UserID                uuid.UUID
	DefaultCategoryID     *int64
	DefaultSubcategoryID  *int64
	DefaultSourceEntityID *int64
	DefaultType           *TransactionType
	DefaultSubtype        TransactionSubtype
	DefaultSource         TransactionSource
	Format                ImportFormat
	DuplicateStrategy     DuplicateStrategy
	DryRun                bool
	TimeZone              string
	CSV                   *CSVConfiguration
	CategoryMapping       map[string]int64
	SubcategoryMapping    map[string]int64
	SourceEntityMapping   map[string]int64
	TypeMapping           map[string]TransactionType
	SubtypeMapping        map[string]TransactionSubtype
	SourceMapping         map[string]TransactionSource
	IgnoreDescriptions    []string
	Responsibilities      []ResponsibilityAllocation
}

// Location resolves the configured time zone. Unknown or empty identifiers fall back silently.
func (c *ImportConfiguration) Location(fallback *time.Location) *time.Location {
	if c.TimeZone != "" {
		if loc, err := time.LoadLocation(c.TimeZone); err == nil {
			return loc
		}
	}
	if fallback != nil {
		return fallback
	}
	return time.Local
}

// ImportedEntry is one parsed statement record, normalized across formats.
type ImportedEntry struct {
	LineNumber       int
	ExternalID       string
	Date             *time.Time
	RawDate          string
	Description      string
	Amount           *decimal.Decimal
	RawAmount        string
	Type             TransactionType
	TypeCode         string
	TypeInferred     bool
	SubtypeCode      string
	SourceCode       string
	CategoryCode     string
	SubcategoryCode  string
	SourceEntityCode string
}

// TypeFromSign derives the direction from the amount sign.
func TypeFromSign(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TransactionTypeExpense
	}
	return TransactionTypeIncome
}

// IssueType classifies why an entry did not become a transaction.
type IssueType string

const (
	IssueInvalidDate    IssueType = "INVALID_DATE"
	IssueInvalidAmount  IssueType = "INVALID_AMOUNT"
	IssueMissingMapping IssueType = "MISSING_MAPPING"
	IssueInvalidMapping IssueType = "INVALID_MAPPING"
	IssueDuplicate      IssueType = "DUPLICATE"
)

// ImportIssue reports a single entry that was skipped.
type ImportIssue struct {
	LineNumber        int
	ExternalReference string
	Message           string
	Type              IssueType
}

// TransactionSummary describes a transaction created (or, on a dry run, that would be created) by an import.
type TransactionSummary struct {
	ID               *int64
	LineNumber       int
	Date             time.Time
	Description      string
	Amount           decimal.Decimal
	Type             TransactionType
	CategoryID       int64
	Responsibilities []TransactionResponsibility
}

// ImportResult summarizes one import call.
type ImportResult struct {
	BatchID             *uuid.UUID
	Format              ImportFormat
	TotalEntries        int
	ProcessedEntries    int
	CreatedTransactions int
	UpdatedTransactions int
	DuplicateEntries    int
	IgnoredEntries      int
	DryRun              bool
	Summaries           []TransactionSummary
	Issues              []ImportIssue
}

// ImportBatch records a committed import.
type ImportBatch struct {
	ID                  uuid.UUID
	UserID              uuid.UUID
	FileName            string
	Format              ImportFormat
	TotalEntries        int
	ProcessedEntries    int
	CreatedTransactions int
	UpdatedTransactions int
	DuplicateEntries    int
	IgnoredEntries      int
	IssueCount          int
	CreatedAt           time.Time
}

// NewImportBatch creates the history record for a committed import result.
func NewImportBatch(id, userID uuid.UUID, fileName string, result *ImportResult) *ImportBatch {
	return &ImportBatch{
		ID:                  id,
		UserID:              userID,
		FileName:            fileName,
		Format:              result.Format,
		TotalEntries:        result.TotalEntries,
		ProcessedEntries:    result.ProcessedEntries,
		CreatedTransactions: result.CreatedTransactions,
		UpdatedTransactions: result.UpdatedTransactions,
		DuplicateEntries:    result.DuplicateEntries,
		IgnoredEntries:      result.IgnoredEntries,
		IssueCount:          len(result.Issues),
		CreatedAt:           time.Now().UTC(),
	}
}
