package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

const nubankProfile = `
userId: 7b0c5a8e-2f35-4a52-9d0e-0c6f4d1e2a11
defaultCategoryId: 3
defaultSubtype: variable
defaultSource: credit_card
format: csv
duplicateStrategy: skip
timeZone: America/Sao_Paulo
csv:
  delimiter: ";"
  containsHeader: true
  locale: pt-BR
  encoding: ISO-8859-1
  datePatterns: ["dd/MM/yyyy"]
  columns:
    date: Data
    description: Descrição
    amount: Valor
categoryMapping:
  MERCADO: 4
typeMapping:
  D: expense
ignoreDescriptions:
  - Pagamento recebido
responsibilities:
  - responsibleId: 1
    percentage: 60
  - responsibleId: 2
    percentage: "40.00"
    notes: split rent
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(nubankProfile))
	require.NoError(t, err)

	assert.Equal(t, uuid.MustParse("7b0c5a8e-2f35-4a52-9d0e-0c6f4d1e2a11"), cfg.UserID)
	require.NotNil(t, cfg.DefaultCategoryID)
	assert.Equal(t, int64(3), *cfg.DefaultCategoryID)
	assert.Equal(t, entity.TransactionSubtypeVariable, cfg.DefaultSubtype)
	assert.Equal(t, entity.TransactionSourceCreditCard, cfg.DefaultSource)
	assert.Equal(t, entity.ImportFormatCSV, cfg.Format)
	assert.Equal(t, entity.DuplicateStrategySkip, cfg.DuplicateStrategy)
	assert.Equal(t, "America/Sao_Paulo", cfg.TimeZone)

	require.NotNil(t, cfg.CSV)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.True(t, cfg.CSV.ContainsHeader)
	assert.Equal(t, "Descrição", cfg.CSV.ColumnName(entity.ColumnDescription))
	assert.Equal(t, "externalId", cfg.CSV.ColumnName(entity.ColumnExternalID))
	assert.Equal(t, []string{"dd/MM/yyyy"}, cfg.CSV.DatePatterns)

	assert.Equal(t, map[string]int64{"MERCADO": 4}, cfg.CategoryMapping)
	assert.Equal(t, entity.TransactionTypeExpense, cfg.TypeMapping["D"])
	assert.Equal(t, []string{"Pagamento recebido"}, cfg.IgnoreDescriptions)

	require.Len(t, cfg.Responsibilities, 2)
	assert.True(t, decimal.NewFromInt(60).Equal(cfg.Responsibilities[0].Percentage))
	assert.True(t, decimal.NewFromInt(40).Equal(cfg.Responsibilities[1].Percentage))
	assert.Equal(t, "split rent", cfg.Responsibilities[1].Notes)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"unknown field": "defaultCategory: 3\n",
		"bad user":      "userId: nope\n",
		"bad yaml":      "responsibilities: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nubank.yaml")
	require.NoError(t, os.WriteFile(path, []byte(nubankProfile), 0o600))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, entity.ImportFormatCSV, cfg.Format)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
