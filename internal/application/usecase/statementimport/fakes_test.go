package statementimport

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

// stubParser returns canned entries and counts invocations.
type stubParser struct {
	entries []entity.ImportedEntry
	err     error
	calls   int
}

func (p *stubParser) Parse(_ context.Context, _ []byte, _ *entity.ImportConfiguration, _ *time.Location) ([]entity.ImportedEntry, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	out := make([]entity.ImportedEntry, len(p.entries))
	copy(out, p.entries)
	return out, nil
}

// fixedDetector always resolves to the same format unless the preference is explicit.
type fixedDetector struct {
	format entity.ImportFormat
}

func (d fixedDetector) Detect(preference entity.ImportFormat, _ string, _ []byte) (entity.ImportFormat, error) {
	if preference == entity.ImportFormatOFX || preference == entity.ImportFormatCSV {
		return preference, nil
	}
	return d.format, nil
}

type fakeCatalog struct {
	categories     map[int64]*entity.Category
	subcategories  map[int64]*entity.Subcategory
	sourceEntities map[int64]*entity.SourceEntity
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		categories:     make(map[int64]*entity.Category),
		subcategories:  make(map[int64]*entity.Subcategory),
		sourceEntities: make(map[int64]*entity.SourceEntity),
	}
}

func (c *fakeCatalog) addCategory(userID uuid.UUID, id int64, name string) {
	c.categories[id] = &entity.Category{ID: id, UserID: userID, Name: name}
}

func (c *fakeCatalog) addSubcategory(userID uuid.UUID, id, categoryID int64, name string) {
	c.subcategories[id] = &entity.Subcategory{ID: id, CategoryID: categoryID, UserID: userID, Name: name}
}

func (c *fakeCatalog) addSourceEntity(userID uuid.UUID, id int64, name string) {
	c.sourceEntities[id] = &entity.SourceEntity{ID: id, UserID: userID, Name: name}
}

func (c *fakeCatalog) FindCategoryByID(_ context.Context, userID uuid.UUID, id int64) (*entity.Category, error) {
	if category, ok := c.categories[id]; ok && category.UserID == userID {
		return category, nil
	}
	return nil, domainerror.ErrCategoryNotFound
}

func (c *fakeCatalog) FindSubcategoryByID(_ context.Context, userID uuid.UUID, id int64) (*entity.Subcategory, error) {
	if subcategory, ok := c.subcategories[id]; ok && subcategory.UserID == userID {
		return subcategory, nil
	}
	return nil, domainerror.ErrSubcategoryNotFound
}

func (c *fakeCatalog) FindSourceEntityByID(_ context.Context, userID uuid.UUID, id int64) (*entity.SourceEntity, error) {
	if sourceEntity, ok := c.sourceEntities[id]; ok && sourceEntity.UserID == userID {
		return sourceEntity, nil
	}
	return nil, domainerror.ErrSourceEntityNotFound
}

func (c *fakeCatalog) FindCategoryByName(_ context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	for _, category := range c.categories {
		if category.UserID == userID && strings.EqualFold(category.Name, name) {
			return category, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) FindSubcategoryByName(_ context.Context, userID uuid.UUID, name string) (*entity.Subcategory, error) {
	for _, subcategory := range c.subcategories {
		if subcategory.UserID == userID && strings.EqualFold(subcategory.Name, name) {
			return subcategory, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) FindSourceEntityByName(_ context.Context, userID uuid.UUID, name string) (*entity.SourceEntity, error) {
	for _, sourceEntity := range c.sourceEntities {
		if sourceEntity.UserID == userID && strings.EqualFold(sourceEntity.Name, name) {
			return sourceEntity, nil
		}
	}
	return nil, nil
}

// fakeStore backs the transaction and batch repositories so the transaction manager can
// snapshot and restore both together.
type fakeStore struct {
	mu           sync.Mutex
	transactions map[int64]*entity.Transaction
	batches      []*entity.ImportBatch
	nextID       int64
	nextRespID   int64

	createCalls  int
	failOnCreate int // 1-based create call that fails, 0 disables
	createErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{transactions: make(map[int64]*entity.Transaction)}
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	c.Responsibilities = append([]entity.TransactionResponsibility(nil), t.Responsibilities...)
	return &c
}

func (s *fakeStore) seed(t *entity.Transaction) *entity.Transaction {
	s.nextID++
	t.ID = s.nextID
	for i := range t.Responsibilities {
		s.nextRespID++
		t.Responsibilities[i].ID = s.nextRespID
		t.Responsibilities[i].TransactionID = t.ID
	}
	s.transactions[t.ID] = cloneTransaction(t)
	return t
}

func (s *fakeStore) transactionRepo() adapter.TransactionRepository { return &fakeTransactionRepo{s} }
func (s *fakeStore) batchRepo() adapter.ImportBatchRepository       { return &fakeBatchRepo{s} }
func (s *fakeStore) txManager() adapter.TransactionManager          { return &fakeTxManager{s} }

func (s *fakeStore) sorted() []*entity.Transaction {
	out := make([]*entity.Transaction, 0, len(s.transactions))
	for _, t := range s.transactions {
		out = append(out, cloneTransaction(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type fakeTransactionRepo struct{ s *fakeStore }

func (r *fakeTransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	r.s.createCalls++
	if r.s.failOnCreate != 0 && r.s.createCalls == r.s.failOnCreate {
		if r.s.createErr != nil {
			return r.s.createErr
		}
		return errors.New("connection reset")
	}
	r.s.seed(t)
	return nil
}

func (r *fakeTransactionRepo) FindByID(_ context.Context, id int64) (*entity.Transaction, error) {
	if t, ok := r.s.transactions[id]; ok {
		return cloneTransaction(t), nil
	}
	return nil, domainerror.ErrTransactionNotFound
}

func (r *fakeTransactionRepo) FindByFilter(_ context.Context, filter adapter.TransactionFilter, _ adapter.TransactionPagination) (*entity.TransactionListResult, error) {
	var out []*entity.Transaction
	for _, t := range r.s.sorted() {
		if t.UserID == filter.UserID {
			out = append(out, t)
		}
	}
	return &entity.TransactionListResult{Transactions: out, Total: int64(len(out))}, nil
}

func (r *fakeTransactionRepo) Update(_ context.Context, t *entity.Transaction) error {
	if _, ok := r.s.transactions[t.ID]; !ok {
		return domainerror.ErrTransactionNotFound
	}
	for i := range t.Responsibilities {
		r.s.nextRespID++
		t.Responsibilities[i].ID = r.s.nextRespID
	}
	r.s.transactions[t.ID] = cloneTransaction(t)
	return nil
}

func (r *fakeTransactionRepo) Delete(_ context.Context, id int64) error {
	delete(r.s.transactions, id)
	return nil
}

func (r *fakeTransactionRepo) FindByExternalReferences(_ context.Context, userID uuid.UUID, refs []string) (map[string]*entity.Transaction, error) {
	out := make(map[string]*entity.Transaction)
	for _, t := range r.s.sorted() {
		if t.UserID != userID || t.ExternalReference == nil {
			continue
		}
		for _, ref := range refs {
			if *t.ExternalReference == ref {
				out[ref] = t
			}
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) FindByFingerprints(_ context.Context, userID uuid.UUID, fps []string) (map[string]*entity.Transaction, error) {
	out := make(map[string]*entity.Transaction)
	for _, t := range r.s.sorted() {
		if t.UserID != userID {
			continue
		}
		for _, fp := range fps {
			if _, seen := out[fp]; !seen && t.Fingerprint == fp {
				out[fp] = t
			}
		}
	}
	return out, nil
}

type fakeBatchRepo struct{ s *fakeStore }

func (r *fakeBatchRepo) Create(_ context.Context, batch *entity.ImportBatch) error {
	r.s.batches = append(r.s.batches, batch)
	return nil
}

func (r *fakeBatchRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]*entity.ImportBatch, error) {
	var out []*entity.ImportBatch
	for _, b := range r.s.batches {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeTxManager restores the store when the unit of work fails.
type fakeTxManager struct{ s *fakeStore }

func (m *fakeTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	snapshot := make(map[int64]*entity.Transaction, len(m.s.transactions))
	for id, t := range m.s.transactions {
		snapshot[id] = cloneTransaction(t)
	}
	batches := append([]*entity.ImportBatch(nil), m.s.batches...)
	nextID, nextRespID := m.s.nextID, m.s.nextRespID

	if err := fn(ctx); err != nil {
		m.s.transactions = snapshot
		m.s.batches = batches
		m.s.nextID, m.s.nextRespID = nextID, nextRespID
		return err
	}
	return nil
}

type staticUser struct {
	id  uuid.UUID
	err error
}

func (u staticUser) CurrentUserID(context.Context) (uuid.UUID, error) {
	return u.id, u.err
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func int64Ptr(v int64) *int64 {
	return &v
}
