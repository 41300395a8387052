// Package category contains catalog maintenance use cases: categories, subcategories and source entities.
package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

// MaxNameLength is the maximum allowed length for catalog entry names.
const MaxNameLength = 100

// CreateCategoryInput represents the input for category creation.
type CreateCategoryInput struct {
	UserID uuid.UUID
	Name   string
	Type   *entity.TransactionType // Optional
}

// CreateCategoryOutput represents the output of category creation.
type CreateCategoryOutput struct {
	Category *entity.Category
}

// CreateCategoryUseCase handles category creation logic.
type CreateCategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewCreateCategoryUseCase creates a new CreateCategoryUseCase instance.
func NewCreateCategoryUseCase(categoryRepo adapter.CategoryRepository) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{
		categoryRepo: categoryRepo,
	}
}

// Execute performs the category creation.
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, input CreateCategoryInput) (*CreateCategoryOutput, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	var categoryType *entity.TransactionType
	if input.Type != nil {
		parsed, ok := entity.ParseTransactionType(string(*input.Type))
		if !ok {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeInvalidCategoryType,
				"category type must be INCOME or EXPENSE",
				domainerror.ErrInvalidTransactionType,
			)
		}
		categoryType = &parsed
	}

	existing, err := uc.categoryRepo.FindCategoryByName(ctx, input.UserID, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to check category name existence: %w", err)
	}
	if existing != nil {
		return nil, nameExists("category")
	}

	category := entity.NewCategory(input.UserID, input.Name, categoryType)
	if err := uc.categoryRepo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return &CreateCategoryOutput{Category: category}, nil
}

func validateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeCatalogNameRequired,
			"name is required",
			domainerror.ErrCatalogNameRequired,
		)
	}
	if len(trimmed) > MaxNameLength {
		return domainerror.NewCategoryError(
			domainerror.ErrCodeCatalogNameTooLong,
			fmt.Sprintf("name must not exceed %d characters", MaxNameLength),
			domainerror.ErrCatalogNameTooLong,
		)
	}
	return nil
}

func nameExists(kind string) error {
	return domainerror.NewCategoryError(
		domainerror.ErrCodeCatalogNameExists,
		fmt.Sprintf("a %s with this name already exists", kind),
		domainerror.ErrCatalogNameExists,
	)
}
