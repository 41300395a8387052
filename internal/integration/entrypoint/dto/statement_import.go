package dto

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// ResponsibilityRequest is one party's share of a split.
type ResponsibilityRequest struct {
	ResponsibleID int64           `json:"responsibleId" yaml:"responsibleId"`
	Percentage    decimal.Decimal `json:"percentage" yaml:"percentage"`
	Notes         string          `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// CSVConfigurationRequest describes how to read a delimited-text statement.
type CSVConfigurationRequest struct {
	Delimiter         string            `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	DecimalSeparator  string            `json:"decimalSeparator,omitempty" yaml:"decimalSeparator,omitempty"`
	GroupingSeparator string            `json:"groupingSeparator,omitempty" yaml:"groupingSeparator,omitempty"`
	ContainsHeader    bool              `json:"containsHeader" yaml:"containsHeader"`
	Columns           map[string]string `json:"columns,omitempty" yaml:"columns,omitempty"`
	DatePatterns      []string          `json:"datePatterns,omitempty" yaml:"datePatterns,omitempty"`
	Encoding          string            `json:"encoding,omitempty" yaml:"encoding,omitempty"`
	Locale            string            `json:"locale,omitempty" yaml:"locale,omitempty"`
}

// ImportConfigurationRequest is the configuration part of an import upload.
// The same shape is read from YAML profiles by the command-line importer.
type ImportConfigurationRequest struct {
	UserID                string                   `json:"userId,omitempty" yaml:"userId,omitempty"`
	DefaultCategoryID     *int64                   `json:"defaultCategoryId,omitempty" yaml:"defaultCategoryId,omitempty"`
	DefaultSubcategoryID  *int64                   `json:"defaultSubcategoryId,omitempty" yaml:"defaultSubcategoryId,omitempty"`
	DefaultSourceEntityID *int64                   `json:"defaultSourceEntityId,omitempty" yaml:"defaultSourceEntityId,omitempty"`
	DefaultType           string                   `json:"defaultType,omitempty" yaml:"defaultType,omitempty"`
	DefaultSubtype        string                   `json:"defaultSubtype" yaml:"defaultSubtype"`
	DefaultSource         string                   `json:"defaultSource" yaml:"defaultSource"`
	Format                string                   `json:"format,omitempty" yaml:"format,omitempty"`
	DuplicateStrategy     string                   `json:"duplicateStrategy,omitempty" yaml:"duplicateStrategy,omitempty"`
	DryRun                bool                     `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
	TimeZone              string                   `json:"timeZone,omitempty" yaml:"timeZone,omitempty"`
	CSV                   *CSVConfigurationRequest `json:"csv,omitempty" yaml:"csv,omitempty"`
	CategoryMapping       map[string]int64         `json:"categoryMapping,omitempty" yaml:"categoryMapping,omitempty"`
	SubcategoryMapping    map[string]int64         `json:"subcategoryMapping,omitempty" yaml:"subcategoryMapping,omitempty"`
	SourceEntityMapping   map[string]int64         `json:"sourceEntityMapping,omitempty" yaml:"sourceEntityMapping,omitempty"`
	TypeMapping           map[string]string        `json:"typeMapping,omitempty" yaml:"typeMapping,omitempty"`
	SubtypeMapping        map[string]string        `json:"subtypeMapping,omitempty" yaml:"subtypeMapping,omitempty"`
	SourceMapping         map[string]string        `json:"sourceMapping,omitempty" yaml:"sourceMapping,omitempty"`
	IgnoreDescriptions    []string                 `json:"ignoreDescriptions,omitempty" yaml:"ignoreDescriptions,omitempty"`
	Responsibilities      []ResponsibilityRequest  `json:"responsibilities" yaml:"responsibilities"`
}

// ToEntity converts the request into an ImportConfiguration. Enum names are upper-cased so
// they match case-insensitively; unknown names are left for configuration validation to reject.
func (r *ImportConfigurationRequest) ToEntity() (*entity.ImportConfiguration, error) {
	cfg := &entity.ImportConfiguration{
		DefaultCategoryID:     r.DefaultCategoryID,
		DefaultSubcategoryID:  r.DefaultSubcategoryID,
		DefaultSourceEntityID: r.DefaultSourceEntityID,
		DefaultSubtype:        entity.TransactionSubtype(upper(r.DefaultSubtype)),
		DefaultSource:         entity.TransactionSource(upper(r.DefaultSource)),
		Format:                entity.ImportFormat(upper(r.Format)),
		DuplicateStrategy:     entity.DuplicateStrategy(upper(r.DuplicateStrategy)),
		DryRun:                r.DryRun,
		TimeZone:              r.TimeZone,
		CategoryMapping:       r.CategoryMapping,
		SubcategoryMapping:    r.SubcategoryMapping,
		SourceEntityMapping:   r.SourceEntityMapping,
		IgnoreDescriptions:    r.IgnoreDescriptions,
		TypeMapping: lo.MapValues(r.TypeMapping, func(v string, _ string) entity.TransactionType {
			return entity.TransactionType(upper(v))
		}),
		SubtypeMapping: lo.MapValues(r.SubtypeMapping, func(v string, _ string) entity.TransactionSubtype {
			return entity.TransactionSubtype(upper(v))
		}),
		SourceMapping: lo.MapValues(r.SourceMapping, func(v string, _ string) entity.TransactionSource {
			return entity.TransactionSource(upper(v))
		}),
		Responsibilities: ToAllocations(r.Responsibilities),
	}

	if r.UserID != "" {
		userID, err := uuid.Parse(r.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid userId: %w", err)
		}
		cfg.UserID = userID
	}

	if r.DefaultType != "" {
		t := entity.TransactionType(upper(r.DefaultType))
		cfg.DefaultType = &t
	}

	if r.CSV != nil {
		columns := make(map[entity.ColumnRole]string, len(r.CSV.Columns))
		for role, header := range r.CSV.Columns {
			columns[entity.ColumnRole(role)] = header
		}
		cfg.CSV = &entity.CSVConfiguration{
			Delimiter:         r.CSV.Delimiter,
			DecimalSeparator:  r.CSV.DecimalSeparator,
			GroupingSeparator: r.CSV.GroupingSeparator,
			ContainsHeader:    r.CSV.ContainsHeader,
			Columns:           columns,
			DatePatterns:      r.CSV.DatePatterns,
			Encoding:          r.CSV.Encoding,
			Locale:            r.CSV.Locale,
		}
	}

	return cfg, nil
}

// ToAllocations converts request shares into allocation templates.
func ToAllocations(requests []ResponsibilityRequest) []entity.ResponsibilityAllocation {
	return lo.Map(requests, func(r ResponsibilityRequest, _ int) entity.ResponsibilityAllocation {
		return entity.ResponsibilityAllocation{
			ResponsibleID: r.ResponsibleID,
			Percentage:    r.Percentage,
			Notes:         r.Notes,
		}
	})
}

// ResponsibilityResponse is a party's calculated share.
type ResponsibilityResponse struct {
	ID               *int64 `json:"id,omitempty"`
	ResponsibleID    int64  `json:"responsibleId"`
	Percentage       string `json:"percentage"`
	CalculatedAmount string `json:"calculatedAmount"`
	Notes            string `json:"notes,omitempty"`
}

// ImportIssueResponse reports one skipped entry.
type ImportIssueResponse struct {
	LineNumber        int    `json:"lineNumber"`
	ExternalReference string `json:"externalReference,omitempty"`
	Message           string `json:"message"`
	IssueType         string `json:"issueType"`
}

// TransactionSummaryResponse describes a created, or on a dry run would-be-created, transaction.
type TransactionSummaryResponse struct {
	ID               *int64                   `json:"id,omitempty"`
	LineNumber       int                      `json:"lineNumber"`
	Date             string                   `json:"date"`
	Description      string                   `json:"description"`
	Amount           string                   `json:"amount"`
	Type             string                   `json:"type"`
	CategoryID       int64                    `json:"categoryId"`
	Responsibilities []ResponsibilityResponse `json:"responsibilities"`
}

// ImportResultResponse summarizes one import call.
type ImportResultResponse struct {
	BatchID                     *string                      `json:"batchId,omitempty"`
	Format                      string                       `json:"format"`
	TotalEntries                int                          `json:"totalEntries"`
	ProcessedEntries            int                          `json:"processedEntries"`
	CreatedTransactions         int                          `json:"createdTransactions"`
	UpdatedTransactions         int                          `json:"updatedTransactions"`
	DuplicateEntries            int                          `json:"duplicateEntries"`
	IgnoredEntries              int                          `json:"ignoredEntries"`
	DryRun                      bool                         `json:"dryRun"`
	CreatedTransactionSummaries []TransactionSummaryResponse `json:"createdTransactionSummaries"`
	Issues                      []ImportIssueResponse        `json:"issues"`
}

// ToImportResultResponse converts an ImportResult to its response DTO.
func ToImportResultResponse(result *entity.ImportResult) ImportResultResponse {
	response := ImportResultResponse{
		Format:              string(result.Format),
		TotalEntries:        result.TotalEntries,
		ProcessedEntries:    result.ProcessedEntries,
		CreatedTransactions: result.CreatedTransactions,
		UpdatedTransactions: result.UpdatedTransactions,
		DuplicateEntries:    result.DuplicateEntries,
		IgnoredEntries:      result.IgnoredEntries,
		DryRun:              result.DryRun,
		CreatedTransactionSummaries: lo.Map(result.Summaries, func(s entity.TransactionSummary, _ int) TransactionSummaryResponse {
			return TransactionSummaryResponse{
				ID:               s.ID,
				LineNumber:       s.LineNumber,
				Date:             s.Date.Format(dateLayout),
				Description:      s.Description,
				Amount:           s.Amount.StringFixed(2),
				Type:             string(s.Type),
				CategoryID:       s.CategoryID,
				Responsibilities: toResponsibilityResponses(s.Responsibilities),
			}
		}),
		Issues: lo.Map(result.Issues, func(i entity.ImportIssue, _ int) ImportIssueResponse {
			return ImportIssueResponse{
				LineNumber:        i.LineNumber,
				ExternalReference: i.ExternalReference,
				Message:           i.Message,
				IssueType:         string(i.Type),
			}
		}),
	}

	if result.BatchID != nil {
		id := result.BatchID.String()
		response.BatchID = &id
	}

	return response
}

func toResponsibilityResponses(responsibilities []entity.TransactionResponsibility) []ResponsibilityResponse {
	return lo.Map(responsibilities, func(r entity.TransactionResponsibility, _ int) ResponsibilityResponse {
		response := ResponsibilityResponse{
			ResponsibleID:    r.ResponsibleID,
			Percentage:       r.Percentage.StringFixed(2),
			CalculatedAmount: r.CalculatedAmount.StringFixed(2),
			Notes:            r.Notes,
		}
		if r.ID != 0 {
			id := r.ID
			response.ID = &id
		}
		return response
	})
}

// ImportBatchResponse is one entry of the import history.
type ImportBatchResponse struct {
	ID                  string    `json:"id"`
	FileName            string    `json:"fileName"`
	Format              string    `json:"format"`
	TotalEntries        int       `json:"totalEntries"`
	ProcessedEntries    int       `json:"processedEntries"`
	CreatedTransactions int       `json:"createdTransactions"`
	UpdatedTransactions int       `json:"updatedTransactions"`
	DuplicateEntries    int       `json:"duplicateEntries"`
	IgnoredEntries      int       `json:"ignoredEntries"`
	IssueCount          int       `json:"issueCount"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ImportBatchListResponse represents the response for listing import history.
type ImportBatchListResponse struct {
	Imports []ImportBatchResponse `json:"imports"`
}

// ToImportBatchListResponse converts import batches to the response DTO.
func ToImportBatchListResponse(batches []*entity.ImportBatch) ImportBatchListResponse {
	return ImportBatchListResponse{
		Imports: lo.Map(batches, func(b *entity.ImportBatch, _ int) ImportBatchResponse {
			return ImportBatchResponse{
				ID:                  b.ID.String(),
				FileName:            b.FileName,
				Format:              string(b.Format),
				TotalEntries:        b.TotalEntries,
				ProcessedEntries:    b.ProcessedEntries,
				CreatedTransactions: b.CreatedTransactions,
				UpdatedTransactions: b.UpdatedTransactions,
				DuplicateEntries:    b.DuplicateEntries,
				IgnoredEntries:      b.IgnoredEntries,
				IssueCount:          b.IssueCount,
				CreatedAt:           b.CreatedAt,
			}
		}),
	}
}
