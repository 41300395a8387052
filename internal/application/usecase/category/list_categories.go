package category

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

// ListCategoriesInput represents the input for listing categories.
type ListCategoriesInput struct {
	UserID uuid.UUID
	Type   *entity.TransactionType // Optional filter, untyped categories always match
}

// ListCategoriesOutput represents the output of listing categories.
type ListCategoriesOutput struct {
	Categories []*entity.Category
}

// ListCategoriesUseCase handles listing categories logic.
type ListCategoriesUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewListCategoriesUseCase creates a new ListCategoriesUseCase instance.
func NewListCategoriesUseCase(categoryRepo adapter.CategoryRepository) *ListCategoriesUseCase {
	return &ListCategoriesUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute performs the category listing. Subcategories come nested in each category.
func (uc *ListCategoriesUseCase) Execute(ctx context.Context, input ListCategoriesInput) (*ListCategoriesOutput, error) {
	categories, err := uc.categoryRepo.ListCategories(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	if input.Type != nil {
		filtered := make([]*entity.Category, 0, len(categories))
		for _, c := range categories {
			if c.Type == nil || *c.Type == *input.Type {
				filtered = append(filtered, c)
			}
		}
		categories = filtered
	}

	return &ListCategoriesOutput{Categories: categories}, nil
}

// ListSourceEntitiesInput represents the input for listing source entities.
type ListSourceEntitiesInput struct {
	UserID uuid.UUID
}

// ListSourceEntitiesOutput represents the output of listing source entities.
type ListSourceEntitiesOutput struct {
	SourceEntities []*entity.SourceEntity
}

// ListSourceEntitiesUseCase lists the user's source entities.
type ListSourceEntitiesUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewListSourceEntitiesUseCase creates a new ListSourceEntitiesUseCase instance.
func NewListSourceEntitiesUseCase(categoryRepo adapter.CategoryRepository) *ListSourceEntitiesUseCase {
	return &ListSourceEntitiesUseCase{categoryRepo: categoryRepo}
}

// Execute performs the listing.
func (uc *ListSourceEntitiesUseCase) Execute(ctx context.Context, input ListSourceEntitiesInput) (*ListSourceEntitiesOutput, error) {
	sourceEntities, err := uc.categoryRepo.ListSourceEntities(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list source entities: %w", err)
	}
	return &ListSourceEntitiesOutput{SourceEntities: sourceEntities}, nil
}
