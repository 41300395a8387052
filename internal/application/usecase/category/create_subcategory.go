package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
)

// CreateSubcategoryInput represents the input for subcategory creation.
type CreateSubcategoryInput struct {
	UserID     uuid.UUID
	CategoryID int64
	Name       string
}

// CreateSubcategoryOutput represents the output of subcategory creation.
type CreateSubcategoryOutput struct {
	Subcategory *entity.Subcategory
}

// CreateSubcategoryUseCase adds a subcategory under one of the user's categories.
type CreateSubcategoryUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewCreateSubcategoryUseCase creates a new CreateSubcategoryUseCase instance.
func NewCreateSubcategoryUseCase(categoryRepo adapter.CategoryRepository) *CreateSubcategoryUseCase {
	return &CreateSubcategoryUseCase{categoryRepo: categoryRepo}
}

// Execute performs the subcategory creation.
func (uc *CreateSubcategoryUseCase) Execute(ctx context.Context, input CreateSubcategoryInput) (*CreateSubcategoryOutput, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	if _, err := uc.categoryRepo.FindCategoryByID(ctx, input.UserID, input.CategoryID); err != nil {
		if errors.Is(err, domainerror.ErrCategoryNotFound) {
			return nil, domainerror.NewCategoryError(
				domainerror.ErrCodeCategoryNotFound,
				"category not found",
				domainerror.ErrCategoryNotFound,
			)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	// Subcategory names are unique per user so that name-based resolution stays unambiguous.
	existing, err := uc.categoryRepo.FindSubcategoryByName(ctx, input.UserID, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to check subcategory name existence: %w", err)
	}
	if existing != nil {
		return nil, nameExists("subcategory")
	}

	subcategory := entity.NewSubcategory(input.UserID, input.CategoryID, input.Name)
	if err := uc.categoryRepo.CreateSubcategory(ctx, subcategory); err != nil {
		return nil, fmt.Errorf("failed to create subcategory: %w", err)
	}

	return &CreateSubcategoryOutput{Subcategory: subcategory}, nil
}
