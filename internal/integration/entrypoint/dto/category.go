package dto

import (
	"time"

	"github.com/samber/lo"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// CreateCategoryRequest represents the request body for category creation.
type CreateCategoryRequest struct {
	Name string  `json:"name"`
	Type *string `json:"type,omitempty"`
}

// CreateCatalogEntryRequest is the request body for subcategories and source entities.
type CreateCatalogEntryRequest struct {
	Name string `json:"name"`
}

// SubcategoryResponse represents a subcategory in API responses.
type SubcategoryResponse struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"categoryId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CategoryResponse represents a single category in API responses.
type CategoryResponse struct {
	ID            int64                 `json:"id"`
	Name          string                `json:"name"`
	Type          *string               `json:"type,omitempty"`
	Subcategories []SubcategoryResponse `json:"subcategories"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// CategoryListResponse represents the response for listing categories.
type CategoryListResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// SourceEntityResponse represents a source entity in API responses.
type SourceEntityResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// SourceEntityListResponse represents the response for listing source entities.
type SourceEntityListResponse struct {
	SourceEntities []SourceEntityResponse `json:"sourceEntities"`
}

// ToCategoryResponse converts a domain Category entity to a CategoryResponse DTO.
func ToCategoryResponse(cat *entity.Category) CategoryResponse {
	response := CategoryResponse{
		ID:            cat.ID,
		Name:          cat.Name,
		Subcategories: lo.Map(cat.Subcategories, func(s *entity.Subcategory, _ int) SubcategoryResponse { return ToSubcategoryResponse(s) }),
		CreatedAt:     cat.CreatedAt,
		UpdatedAt:     cat.UpdatedAt,
	}
	if cat.Type != nil {
		t := string(*cat.Type)
		response.Type = &t
	}
	return response
}

// ToSubcategoryResponse converts a domain Subcategory entity to its DTO.
func ToSubcategoryResponse(sub *entity.Subcategory) SubcategoryResponse {
	return SubcategoryResponse{
		ID:         sub.ID,
		CategoryID: sub.CategoryID,
		Name:       sub.Name,
		CreatedAt:  sub.CreatedAt,
	}
}

// ToCategoryListResponse converts categories to a CategoryListResponse DTO.
func ToCategoryListResponse(categories []*entity.Category) CategoryListResponse {
	return CategoryListResponse{
		Categories: lo.Map(categories, func(c *entity.Category, _ int) CategoryResponse { return ToCategoryResponse(c) }),
	}
}

// ToSourceEntityResponse converts a domain SourceEntity entity to its DTO.
func ToSourceEntityResponse(source *entity.SourceEntity) SourceEntityResponse {
	return SourceEntityResponse{
		ID:        source.ID,
		Name:      source.Name,
		CreatedAt: source.CreatedAt,
	}
}

// ToSourceEntityListResponse converts source entities to a SourceEntityListResponse DTO.
func ToSourceEntityListResponse(sources []*entity.SourceEntity) SourceEntityListResponse {
	return SourceEntityListResponse{
		SourceEntities: lo.Map(sources, func(s *entity.SourceEntity, _ int) SourceEntityResponse { return ToSourceEntityResponse(s) }),
	}
}
