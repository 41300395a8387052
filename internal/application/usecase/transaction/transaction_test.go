package transaction

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

type memoryRepo struct {
	transactions map[int64]*entity.Transaction
	nextID       int64
	lastFilter   adapter.TransactionFilter
	lastPage     adapter.TransactionPagination
	failUpdate   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{transactions: make(map[int64]*entity.Transaction)}
}

func clone(t *entity.Transaction) *entity.Transaction {
	c := *t
	c.Responsibilities = append([]entity.TransactionResponsibility(nil), t.Responsibilities...)
	return &c
}

func (r *memoryRepo) Create(_ context.Context, t *entity.Transaction) error {
	r.nextID++
	t.ID = r.nextID
	for i := range t.Responsibilities {
		t.Responsibilities[i].ID = int64(i + 1)
		t.Responsibilities[i].TransactionID = t.ID
	}
	r.transactions[t.ID] = clone(t)
	return nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*entity.Transaction, error) {
	if t, ok := r.transactions[id]; ok {
		return clone(t), nil
	}
	return nil, domainerror.ErrTransactionNotFound
}

func (r *memoryRepo) FindByFilter(_ context.Context, filter adapter.TransactionFilter, page adapter.TransactionPagination) (*entity.TransactionListResult, error) {
	r.lastFilter, r.lastPage = filter, page
	var out []*entity.Transaction
	for _, t := range r.transactions {
		if t.UserID == filter.UserID {
			out = append(out, clone(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	start := (page.Page - 1) * page.Limit
	if start > len(out) {
		start = len(out)
	}
	end := start + page.Limit
	if end > len(out) {
		end = len(out)
	}
	return &entity.TransactionListResult{Transactions: out[start:end], Total: total}, nil
}

func (r *memoryRepo) Update(_ context.Context, t *entity.Transaction) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	r.transactions[t.ID] = clone(t)
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id int64) error {
	delete(r.transactions, id)
	return nil
}

func (r *memoryRepo) FindByExternalReferences(context.Context, uuid.UUID, []string) (map[string]*entity.Transaction, error) {
	return map[string]*entity.Transaction{}, nil
}

func (r *memoryRepo) FindByFingerprints(context.Context, uuid.UUID, []string) (map[string]*entity.Transaction, error) {
	return map[string]*entity.Transaction{}, nil
}

type memoryCatalog struct {
	userID         uuid.UUID
	categories     map[int64]bool
	subcategories  map[int64]bool
	sourceEntities map[int64]bool
}

func (c *memoryCatalog) FindCategoryByID(_ context.Context, userID uuid.UUID, id int64) (*entity.Category, error) {
	if userID == c.userID && c.categories[id] {
		return &entity.Category{ID: id, UserID: userID}, nil
	}
	return nil, domainerror.ErrCategoryNotFound
}

func (c *memoryCatalog) FindSubcategoryByID(_ context.Context, userID uuid.UUID, id int64) (*entity.Subcategory, error) {
	if userID == c.userID && c.subcategories[id] {
		return &entity.Subcategory{ID: id, UserID: userID}, nil
	}
	return nil, domainerror.ErrSubcategoryNotFound
}

func (c *memoryCatalog) FindSourceEntityByID(_ context.Context, userID uuid.UUID, id int64) (*entity.SourceEntity, error) {
	if userID == c.userID && c.sourceEntities[id] {
		return &entity.SourceEntity{ID: id, UserID: userID}, nil
	}
	return nil, domainerror.ErrSourceEntityNotFound
}

func (c *memoryCatalog) FindCategoryByName(context.Context, uuid.UUID, string) (*entity.Category, error) {
	return nil, nil
}

func (c *memoryCatalog) FindSubcategoryByName(context.Context, uuid.UUID, string) (*entity.Subcategory, error) {
	return nil, nil
}

func (c *memoryCatalog) FindSourceEntityByName(context.Context, uuid.UUID, string) (*entity.SourceEntity, error) {
	return nil, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func int64Ptr(v int64) *int64 { return &v }

type fixture struct {
	userID  uuid.UUID
	repo    *memoryRepo
	catalog *memoryCatalog
}

func newFixture() *fixture {
	userID := uuid.New()
	return &fixture{
		userID: userID,
		repo:   newMemoryRepo(),
		catalog: &memoryCatalog{
			userID:         userID,
			categories:     map[int64]bool{10: true, 11: true},
			subcategories:  map[int64]bool{20: true},
			sourceEntities: map[int64]bool{30: true},
		},
	}
}

func (f *fixture) validInput() CreateTransactionInput {
	return CreateTransactionInput{
		UserID:      f.userID,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "Dinner",
		Amount:      dec("100.00"),
		Type:        entity.TransactionTypeExpense,
		Subtype:     entity.TransactionSubtypeVariable,
		Source:      entity.TransactionSourceCreditCard,
		CategoryID:  10,
		Responsibilities: []entity.ResponsibilityAllocation{
			{ResponsibleID: 1, Percentage: dec("33.33")},
			{ResponsibleID: 2, Percentage: dec("33.33")},
			{ResponsibleID: 3, Percentage: dec("33.34")},
		},
	}
}

func (f *fixture) create(t *testing.T) *TransactionOutput {
	t.Helper()
	out, err := NewCreateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), f.validInput())
	require.NoError(t, err)
	return out.Transaction
}

func requireTxnCode(t *testing.T, err error, code domainerror.TransactionErrorCode) {
	t.Helper()
	require.Error(t, err)
	var txnErr *domainerror.TransactionError
	require.True(t, errors.As(err, &txnErr), "expected TransactionError, got %v", err)
	assert.Equal(t, code, txnErr.Code)
}

func TestCreateTransaction_AllocatesShares(t *testing.T) {
	f := newFixture()
	input := f.validInput()
	input.SubcategoryID = int64Ptr(20)
	input.SourceEntityID = int64Ptr(30)
	input.Type = "expense"

	out, err := NewCreateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), input)
	require.NoError(t, err)

	txn := out.Transaction
	assert.NotZero(t, txn.ID)
	assert.Equal(t, entity.TransactionTypeExpense, txn.Type)
	assert.True(t, txn.PercentageValid)
	require.Len(t, txn.Responsibilities, 3)
	assert.True(t, dec("33.33").Equal(txn.Responsibilities[0].CalculatedAmount))
	assert.True(t, dec("33.34").Equal(txn.Responsibilities[2].CalculatedAmount))
	assert.Equal(t, int64(20), *txn.SubcategoryID)

	stored := f.repo.transactions[txn.ID]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.Fingerprint)
}

func TestCreateTransaction_WithoutResponsibilities(t *testing.T) {
	f := newFixture()
	input := f.validInput()
	input.Responsibilities = nil

	out, err := NewCreateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Empty(t, out.Transaction.Responsibilities)
	assert.True(t, out.Transaction.PercentageValid)
}

func TestCreateTransaction_Rejections(t *testing.T) {
	long := make([]byte, MaxDescriptionLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name   string
		mutate func(in *CreateTransactionInput)
		code   domainerror.TransactionErrorCode
	}{
		{
			name:   "missing date",
			mutate: func(in *CreateTransactionInput) { in.Date = time.Time{} },
			code:   domainerror.ErrCodeMissingTransactionFields,
		},
		{
			name:   "description too long",
			mutate: func(in *CreateTransactionInput) { in.Description = string(long) },
			code:   domainerror.ErrCodeDescriptionTooLong,
		},
		{
			name:   "unknown type",
			mutate: func(in *CreateTransactionInput) { in.Type = "TRANSFER" },
			code:   domainerror.ErrCodeInvalidTransactionType,
		},
		{
			name:   "unknown subtype",
			mutate: func(in *CreateTransactionInput) { in.Subtype = "ONCE" },
			code:   domainerror.ErrCodeInvalidTransactionSubtype,
		},
		{
			name:   "unknown source",
			mutate: func(in *CreateTransactionInput) { in.Source = "CHEQUE" },
			code:   domainerror.ErrCodeInvalidTransactionSource,
		},
		{
			name:   "zero amount",
			mutate: func(in *CreateTransactionInput) { in.Amount = decimal.Zero },
			code:   domainerror.ErrCodeInvalidTransactionAmount,
		},
		{
			name: "percentages short of whole",
			mutate: func(in *CreateTransactionInput) {
				in.Responsibilities = []entity.ResponsibilityAllocation{{ResponsibleID: 1, Percentage: dec("99.99")}}
			},
			code: domainerror.ErrCodeResponsibilitiesNotWhole,
		},
		{
			name: "three decimals",
			mutate: func(in *CreateTransactionInput) {
				in.Responsibilities = []entity.ResponsibilityAllocation{
					{ResponsibleID: 1, Percentage: dec("50.005")},
					{ResponsibleID: 2, Percentage: dec("49.995")},
				}
			},
			code: domainerror.ErrCodeInvalidResponsibility,
		},
		{
			name: "repeated party",
			mutate: func(in *CreateTransactionInput) {
				in.Responsibilities = []entity.ResponsibilityAllocation{
					{ResponsibleID: 1, Percentage: dec("50")},
					{ResponsibleID: 1, Percentage: dec("50")},
				}
			},
			code: domainerror.ErrCodeDuplicateResponsibleParty,
		},
		{
			name:   "unknown category",
			mutate: func(in *CreateTransactionInput) { in.CategoryID = 99 },
			code:   domainerror.ErrCodeTxnCategoryNotFound,
		},
		{
			name:   "unknown subcategory",
			mutate: func(in *CreateTransactionInput) { in.SubcategoryID = int64Ptr(99) },
			code:   domainerror.ErrCodeTxnSubcategoryNotFound,
		},
		{
			name:   "unknown source entity",
			mutate: func(in *CreateTransactionInput) { in.SourceEntityID = int64Ptr(99) },
			code:   domainerror.ErrCodeTxnSourceEntityNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			input := f.validInput()
			tt.mutate(&input)

			_, err := NewCreateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), input)
			requireTxnCode(t, err, tt.code)
			assert.Empty(t, f.repo.transactions)
		})
	}
}

func TestGetTransaction_Ownership(t *testing.T) {
	f := newFixture()
	created := f.create(t)
	uc := NewGetTransactionUseCase(f.repo)

	out, err := uc.Execute(context.Background(), GetTransactionInput{TransactionID: created.ID, UserID: f.userID})
	require.NoError(t, err)
	assert.Equal(t, created.ID, out.Transaction.ID)

	_, err = uc.Execute(context.Background(), GetTransactionInput{TransactionID: created.ID, UserID: uuid.New()})
	requireTxnCode(t, err, domainerror.ErrCodeNotAuthorizedTransaction)

	_, err = uc.Execute(context.Background(), GetTransactionInput{TransactionID: 404, UserID: f.userID})
	requireTxnCode(t, err, domainerror.ErrCodeTransactionNotFound)
}

func TestListTransactions_Pagination(t *testing.T) {
	f := newFixture()
	for i := 0; i < 5; i++ {
		f.create(t)
	}
	batchID := uuid.New()
	uc := NewListTransactionsUseCase(f.repo)

	tests := []struct {
		name          string
		page, limit   int
		expectedPage  int
		expectedLimit int
		expectedCount int
		expectedPages int
	}{
		{name: "defaults", expectedPage: 1, expectedLimit: 20, expectedCount: 5, expectedPages: 1},
		{name: "second page of two", page: 2, limit: 2, expectedPage: 2, expectedLimit: 2, expectedCount: 2, expectedPages: 3},
		{name: "limit capped", limit: 500, expectedPage: 1, expectedLimit: 100, expectedCount: 5, expectedPages: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := uc.Execute(context.Background(), ListTransactionsInput{
				UserID:        f.userID,
				ImportBatchID: &batchID,
				Page:          tt.page,
				Limit:         tt.limit,
			})
			require.NoError(t, err)
			assert.Len(t, out.Transactions, tt.expectedCount)
			assert.Equal(t, tt.expectedPage, out.Pagination.Page)
			assert.Equal(t, tt.expectedLimit, out.Pagination.Limit)
			assert.Equal(t, int64(5), out.Pagination.Total)
			assert.Equal(t, tt.expectedPages, out.Pagination.TotalPages)
			assert.Equal(t, &batchID, f.repo.lastFilter.ImportBatchID)
		})
	}
}

func TestUpdateTransaction_AmountRecalculatesShares(t *testing.T) {
	f := newFixture()
	created := f.create(t)
	before := f.repo.transactions[created.ID].Fingerprint

	amount := dec("200.00")
	out, err := NewUpdateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), UpdateTransactionInput{
		TransactionID: created.ID,
		UserID:        f.userID,
		Amount:        &amount,
	})
	require.NoError(t, err)

	shares := out.Transaction.Responsibilities
	require.Len(t, shares, 3)
	assert.True(t, dec("66.66").Equal(shares[0].CalculatedAmount))
	assert.True(t, dec("66.68").Equal(shares[2].CalculatedAmount))
	assert.NotEqual(t, before, f.repo.transactions[created.ID].Fingerprint)
}

func TestUpdateTransaction_ReplacesResponsibilities(t *testing.T) {
	f := newFixture()
	created := f.create(t)

	replacement := []entity.ResponsibilityAllocation{
		{ResponsibleID: 4, Percentage: dec("75")},
		{ResponsibleID: 5, Percentage: dec("25"), Notes: "guest"},
	}
	out, err := NewUpdateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), UpdateTransactionInput{
		TransactionID:    created.ID,
		UserID:           f.userID,
		Responsibilities: &replacement,
	})
	require.NoError(t, err)

	shares := out.Transaction.Responsibilities
	require.Len(t, shares, 2)
	assert.Equal(t, int64(4), shares[0].ResponsibleID)
	assert.True(t, dec("75.00").Equal(shares[0].CalculatedAmount))
	assert.Equal(t, "guest", shares[1].Notes)
}

func TestUpdateTransaction_Rejections(t *testing.T) {
	bad := []entity.ResponsibilityAllocation{{ResponsibleID: 1, Percentage: dec("40")}}
	zero := decimal.Zero
	badType := entity.TransactionType("REFUND")

	tests := []struct {
		name  string
		input func(id int64, userID uuid.UUID) UpdateTransactionInput
		code  domainerror.TransactionErrorCode
	}{
		{
			name: "other user",
			input: func(id int64, _ uuid.UUID) UpdateTransactionInput {
				return UpdateTransactionInput{TransactionID: id, UserID: uuid.New()}
			},
			code: domainerror.ErrCodeNotAuthorizedTransaction,
		},
		{
			name: "percentages short of whole",
			input: func(id int64, userID uuid.UUID) UpdateTransactionInput {
				return UpdateTransactionInput{TransactionID: id, UserID: userID, Responsibilities: &bad}
			},
			code: domainerror.ErrCodeResponsibilitiesNotWhole,
		},
		{
			name: "zero amount",
			input: func(id int64, userID uuid.UUID) UpdateTransactionInput {
				return UpdateTransactionInput{TransactionID: id, UserID: userID, Amount: &zero}
			},
			code: domainerror.ErrCodeInvalidTransactionAmount,
		},
		{
			name: "unknown type",
			input: func(id int64, userID uuid.UUID) UpdateTransactionInput {
				return UpdateTransactionInput{TransactionID: id, UserID: userID, Type: &badType}
			},
			code: domainerror.ErrCodeInvalidTransactionType,
		},
		{
			name: "unknown category",
			input: func(id int64, userID uuid.UUID) UpdateTransactionInput {
				return UpdateTransactionInput{TransactionID: id, UserID: userID, CategoryID: int64Ptr(77)}
			},
			code: domainerror.ErrCodeTxnCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			created := f.create(t)
			before := clone(f.repo.transactions[created.ID])

			_, err := NewUpdateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), tt.input(created.ID, f.userID))
			requireTxnCode(t, err, tt.code)
			assert.Equal(t, before, f.repo.transactions[created.ID])
		})
	}
}

func TestUpdateTransaction_ClearsOptionalReferences(t *testing.T) {
	f := newFixture()
	input := f.validInput()
	input.SubcategoryID = int64Ptr(20)
	input.SourceEntityID = int64Ptr(30)
	created, err := NewCreateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), input)
	require.NoError(t, err)

	out, err := NewUpdateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), UpdateTransactionInput{
		TransactionID:     created.Transaction.ID,
		UserID:            f.userID,
		ClearSubcategory:  true,
		ClearSourceEntity: true,
	})
	require.NoError(t, err)
	assert.Nil(t, out.Transaction.SubcategoryID)
	assert.Nil(t, out.Transaction.SourceEntityID)
}

func TestUpdateTransaction_WrapsStorageFailure(t *testing.T) {
	f := newFixture()
	created := f.create(t)
	f.repo.failUpdate = errors.New("connection reset")

	notes := "paid back"
	_, err := NewUpdateTransactionUseCase(f.repo, f.catalog).Execute(context.Background(), UpdateTransactionInput{
		TransactionID: created.ID,
		UserID:        f.userID,
		Notes:         &notes,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update transaction")
}

func TestDeleteTransaction(t *testing.T) {
	f := newFixture()
	created := f.create(t)
	uc := NewDeleteTransactionUseCase(f.repo)

	_, err := uc.Execute(context.Background(), DeleteTransactionInput{TransactionID: created.ID, UserID: uuid.New()})
	requireTxnCode(t, err, domainerror.ErrCodeNotAuthorizedTransaction)
	assert.Len(t, f.repo.transactions, 1)

	out, err := uc.Execute(context.Background(), DeleteTransactionInput{TransactionID: created.ID, UserID: f.userID})
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Empty(t, f.repo.transactions)
}
