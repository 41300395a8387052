// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// TransactionFilter defines filter options for listing transactions.
type TransactionFilter struct {
	UserID        uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	CategoryIDs   []int64
	Type          *entity.TransactionType
	ImportBatchID *uuid.UUID
	Search        string // Case-insensitive description match
}

// TransactionPagination defines pagination options.
type TransactionPagination struct {
	Page  int
	Limit int
}

// TransactionRepository defines the interface for transaction persistence operations.
// Every method loads and stores the responsibility set together with its transaction.
type TransactionRepository interface {
	// Create stores a new transaction with its responsibilities and assigns their IDs.
	Create(ctx context.Context, transaction *entity.Transaction) error

	// FindByID retrieves a transaction by its ID.
	FindByID(ctx context.Context, id int64) (*entity.Transaction, error)

	// FindByFilter retrieves transactions based on filter criteria with pagination.
	FindByFilter(ctx context.Context, filter TransactionFilter, pagination TransactionPagination) (*entity.TransactionListResult, error)

	// Update saves the transaction and replaces its responsibility set.
	Update(ctx context.Context, transaction *entity.Transaction) error

	// Delete removes a transaction and its responsibilities.
	Delete(ctx context.Context, id int64) error

	// FindByExternalReferences returns the user's transactions keyed by external reference.
	FindByExternalReferences(ctx context.Context, userID uuid.UUID, references []string) (map[string]*entity.Transaction, error)

	// FindByFingerprints returns the user's transactions keyed by fingerprint.
	// When several share a fingerprint the oldest one wins.
	FindByFingerprints(ctx context.Context, userID uuid.UUID, fingerprints []string) (map[string]*entity.Transaction, error)
}

// TransactionManager runs a unit of work inside one database transaction.
// Repositories called with the callback's context take part in it.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
