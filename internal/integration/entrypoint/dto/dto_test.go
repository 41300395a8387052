package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/importer/internal/application/usecase/transaction"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

func TestImportConfigurationRequest_ToEntity(t *testing.T) {
	body := `{
		"defaultCategoryId": 7,
		"defaultType": "expense",
		"defaultSubtype": "fixed",
		"defaultSource": "bank_transfer",
		"format": "auto",
		"duplicateStrategy": "overwrite",
		"csv": {"containsHeader": true, "columns": {"amount": "Valor"}, "locale": "pt-BR"},
		"subtypeMapping": {"R": "variable"},
		"sourceMapping": {"CC": "credit_card"},
		"responsibilities": [
			{"responsibleId": 1, "percentage": 33.33},
			{"responsibleId": 2, "percentage": "66.67", "notes": "larger share"}
		]
	}`

	var req ImportConfigurationRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	cfg, err := req.ToEntity()
	require.NoError(t, err)

	assert.Equal(t, uuid.Nil, cfg.UserID)
	require.NotNil(t, cfg.DefaultType)
	assert.Equal(t, entity.TransactionTypeExpense, *cfg.DefaultType)
	assert.Equal(t, entity.TransactionSubtypeFixed, cfg.DefaultSubtype)
	assert.Equal(t, entity.TransactionSourceBankTransfer, cfg.DefaultSource)
	assert.Equal(t, entity.ImportFormatAuto, cfg.Format)
	assert.Equal(t, entity.DuplicateStrategyOverwrite, cfg.DuplicateStrategy)
	assert.Equal(t, "Valor", cfg.CSV.ColumnName(entity.ColumnAmount))
	assert.Equal(t, entity.TransactionSubtypeVariable, cfg.SubtypeMapping["R"])
	assert.Equal(t, entity.TransactionSourceCreditCard, cfg.SourceMapping["CC"])

	require.Len(t, cfg.Responsibilities, 2)
	assert.Equal(t, "33.33", cfg.Responsibilities[0].Percentage.StringFixed(2))
	assert.Equal(t, "66.67", cfg.Responsibilities[1].Percentage.StringFixed(2))
	assert.Equal(t, "larger share", cfg.Responsibilities[1].Notes)
}

func TestImportConfigurationRequest_InvalidUser(t *testing.T) {
	req := ImportConfigurationRequest{UserID: "someone"}
	_, err := req.ToEntity()
	assert.Error(t, err)
}

func TestToImportResultResponse(t *testing.T) {
	batchID := uuid.New()
	id := int64(41)
	result := &entity.ImportResult{
		BatchID:             &batchID,
		Format:              entity.ImportFormatOFX,
		TotalEntries:        3,
		ProcessedEntries:    1,
		CreatedTransactions: 1,
		DuplicateEntries:    1,
		Summaries: []entity.TransactionSummary{{
			ID:          &id,
			LineNumber:  1,
			Date:        time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Description: "Padaria",
			Amount:      decimal.RequireFromString("10"),
			Type:        entity.TransactionTypeExpense,
			CategoryID:  3,
			Responsibilities: []entity.TransactionResponsibility{{
				ResponsibleID:    1,
				Percentage:       decimal.NewFromInt(100),
				CalculatedAmount: decimal.RequireFromString("10"),
			}},
		}},
		Issues: []entity.ImportIssue{{LineNumber: 2, ExternalReference: "FIT2", Message: "already imported", Type: entity.IssueDuplicate}},
	}

	response := ToImportResultResponse(result)

	require.NotNil(t, response.BatchID)
	assert.Equal(t, batchID.String(), *response.BatchID)
	assert.Equal(t, "OFX", response.Format)
	require.Len(t, response.CreatedTransactionSummaries, 1)
	summary := response.CreatedTransactionSummaries[0]
	assert.Equal(t, "2024-01-05", summary.Date)
	assert.Equal(t, "10.00", summary.Amount)
	assert.Equal(t, "100.00", summary.Responsibilities[0].Percentage)
	assert.Nil(t, summary.Responsibilities[0].ID)
	require.Len(t, response.Issues, 1)
	assert.Equal(t, "DUPLICATE", response.Issues[0].IssueType)
}

func TestToImportResultResponse_DryRunHasEmptyLists(t *testing.T) {
	response := ToImportResultResponse(&entity.ImportResult{DryRun: true, Format: entity.ImportFormatCSV})

	raw, err := json.Marshal(response)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"createdTransactionSummaries":[]`)
	assert.Contains(t, string(raw), `"issues":[]`)
	assert.NotContains(t, string(raw), "batchId")
}

func TestCreateTransactionRequest_ToInput(t *testing.T) {
	req := CreateTransactionRequest{
		Date:        "2024-02-29",
		Description: "Aluguel",
		Amount:      decimal.NewFromInt(1500),
		Type:        "expense",
		Subtype:     "fixed",
		Source:      "pix",
		CategoryID:  2,
		Responsibilities: []ResponsibilityRequest{
			{ResponsibleID: 1, Percentage: decimal.NewFromInt(50)},
			{ResponsibleID: 2, Percentage: decimal.NewFromInt(50)},
		},
	}

	input, err := req.ToInput(uuid.New())
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), input.Date)
	assert.Equal(t, entity.TransactionTypeExpense, input.Type)
	assert.Equal(t, entity.TransactionSourcePix, input.Source)
	assert.Len(t, input.Responsibilities, 2)

	req.Date = "29/02/2024"
	_, err = req.ToInput(uuid.New())
	assert.Error(t, err)
}

func TestUpdateTransactionRequest_ToInput(t *testing.T) {
	var req UpdateTransactionRequest
	require.NoError(t, json.Unmarshal([]byte(`{"type":"income","responsibilities":[]}`), &req))

	input, err := req.ToInput(9, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(9), input.TransactionID)
	require.NotNil(t, input.Type)
	assert.Equal(t, entity.TransactionTypeIncome, *input.Type)
	require.NotNil(t, input.Responsibilities)
	assert.Empty(t, *input.Responsibilities)
	assert.Nil(t, input.Amount)
	assert.Nil(t, input.Date)
}

func TestToTransactionResponse(t *testing.T) {
	batchID := uuid.New()
	response := ToTransactionResponse(&transaction.TransactionOutput{
		ID:              5,
		Amount:          decimal.RequireFromString("12.5"),
		Type:            entity.TransactionTypeExpense,
		ImportBatchID:   &batchID,
		PercentageValid: true,
		Responsibilities: []transaction.ResponsibilityOutput{
			{ID: 8, ResponsibleID: 1, Percentage: decimal.NewFromInt(100), CalculatedAmount: decimal.RequireFromString("12.5")},
		},
	})

	assert.Equal(t, "12.50", response.Amount)
	require.NotNil(t, response.ImportBatchID)
	assert.Equal(t, batchID.String(), *response.ImportBatchID)
	require.Len(t, response.Responsibilities, 1)
	assert.Equal(t, int64(8), *response.Responsibilities[0].ID)
	assert.Equal(t, "12.50", response.Responsibilities[0].CalculatedAmount)
}

func TestToCategoryListResponse(t *testing.T) {
	expense := entity.TransactionTypeExpense
	response := ToCategoryListResponse([]*entity.Category{
		{ID: 1, Name: "Moradia", Type: &expense, Subcategories: []*entity.Subcategory{{ID: 3, CategoryID: 1, Name: "Aluguel"}}},
		{ID: 2, Name: "Outros"},
	})

	require.Len(t, response.Categories, 2)
	assert.Equal(t, "EXPENSE", *response.Categories[0].Type)
	assert.Equal(t, "Aluguel", response.Categories[0].Subcategories[0].Name)
	assert.Nil(t, response.Categories[1].Type)
	assert.NotNil(t, response.Categories[1].Subcategories)
}
