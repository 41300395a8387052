package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// CatalogLookup resolves categories, subcategories and source entities for a user.
// ID lookups return the domain not-found error, name lookups return nil when nothing matches.
type CatalogLookup interface {
	FindCategoryByID(ctx context.Context, userID uuid.UUID, id int64) (*entity.Category, error)
	FindSubcategoryByID(ctx context.Context, userID uuid.UUID, id int64) (*entity.Subcategory, error)
	FindSourceEntityByID(ctx context.Context, userID uuid.UUID, id int64) (*entity.SourceEntity, error)

	FindCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error)
	FindSubcategoryByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Subcategory, error)
	FindSourceEntityByName(ctx context.Context, userID uuid.UUID, name string) (*entity.SourceEntity, error)
}

// CategoryRepository defines the interface for catalog persistence operations.
type CategoryRepository interface {
	CatalogLookup

	// CreateCategory creates a new category in the database.
	CreateCategory(ctx context.Context, category *entity.Category) error

	// CreateSubcategory creates a new subcategory in the database.
	CreateSubcategory(ctx context.Context, subcategory *entity.Subcategory) error

	// CreateSourceEntity creates a new source entity in the database.
	CreateSourceEntity(ctx context.Context, sourceEntity *entity.SourceEntity) error

	// ListCategories retrieves the user's categories with their subcategories, ordered by name.
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)

	// ListSourceEntities retrieves the user's source entities, ordered by name.
	ListSourceEntities(ctx context.Context, userID uuid.UUID) ([]*entity.SourceEntity, error)
}
