package category

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
)

// CreateSourceEntityInput represents the input for source entity creation.
type CreateSourceEntityInput struct {
	UserID uuid.UUID
	Name   string
}

// CreateSourceEntityOutput represents the output of source entity creation.
type CreateSourceEntityOutput struct {
	SourceEntity *entity.SourceEntity
}

// CreateSourceEntityUseCase registers an institution or account transactions can come from.
type CreateSourceEntityUseCase struct {
	categoryRepo adapter.CategoryRepository
}

// NewCreateSourceEntityUseCase creates a new CreateSourceEntityUseCase instance.
func NewCreateSourceEntityUseCase(categoryRepo adapter.CategoryRepository) *CreateSourceEntityUseCase {
	return &CreateSourceEntityUseCase{categoryRepo: categoryRepo}
}

// Execute performs the source entity creation.
func (uc *CreateSourceEntityUseCase) Execute(ctx context.Context, input CreateSourceEntityInput) (*CreateSourceEntityOutput, error) {
	if err := validateName(input.Name); err != nil {
		return nil, err
	}

	existing, err := uc.categoryRepo.FindSourceEntityByName(ctx, input.UserID, strings.TrimSpace(input.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to check source entity name existence: %w", err)
	}
	if existing != nil {
		return nil, nameExists("source entity")
	}

	sourceEntity := entity.NewSourceEntity(input.UserID, input.Name)
	if err := uc.categoryRepo.CreateSourceEntity(ctx, sourceEntity); err != nil {
		return nil, fmt.Errorf("failed to create source entity: %w", err)
	}

	return &CreateSourceEntityOutput{SourceEntity: sourceEntity}, nil
}
