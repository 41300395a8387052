package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/finance-tracker/importer/internal/domain/entity"
)

// CategoryModel represents the categories table in the database.
type CategoryModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Type      *string   `gorm:"type:varchar(10)"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Subcategories []SubcategoryModel `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the CategoryModel.
func (CategoryModel) TableName() string {
	return "categories"
}

// ToEntity converts a CategoryModel to a domain Category entity.
func (m *CategoryModel) ToEntity() *entity.Category {
	var categoryType *entity.TransactionType
	if m.Type != nil {
		t := entity.TransactionType(*m.Type)
		categoryType = &t
	}

	subcategories := make([]*entity.Subcategory, len(m.Subcategories))
	for i := range m.Subcategories {
		subcategories[i] = m.Subcategories[i].ToEntity()
	}

	return &entity.Category{
		ID:            m.ID,
		UserID:        m.UserID,
		Name:          m.Name,
		Type:          categoryType,
		Subcategories: subcategories,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// CategoryFromEntity creates a CategoryModel from a domain Category entity.
func CategoryFromEntity(category *entity.Category) *CategoryModel {
	var categoryType *string
	if category.Type != nil {
		t := string(*category.Type)
		categoryType = &t
	}

	return &CategoryModel{
		ID:        category.ID,
		UserID:    category.UserID,
		Name:      category.Name,
		Type:      categoryType,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

// SubcategoryModel represents the subcategories table in the database.
type SubcategoryModel struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	CategoryID int64     `gorm:"not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(100);not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for the SubcategoryModel.
func (SubcategoryModel) TableName() string {
	return "subcategories"
}

// ToEntity converts a SubcategoryModel to a domain Subcategory entity.
func (m *SubcategoryModel) ToEntity() *entity.Subcategory {
	return &entity.Subcategory{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		UserID:     m.UserID,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// SubcategoryFromEntity creates a SubcategoryModel from a domain Subcategory entity.
func SubcategoryFromEntity(subcategory *entity.Subcategory) *SubcategoryModel {
	return &SubcategoryModel{
		ID:         subcategory.ID,
		CategoryID: subcategory.CategoryID,
		UserID:     subcategory.UserID,
		Name:       subcategory.Name,
		CreatedAt:  subcategory.CreatedAt,
		UpdatedAt:  subcategory.UpdatedAt,
	}
}

// SourceEntityModel represents the source_entities table in the database.
type SourceEntityModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the SourceEntityModel.
func (SourceEntityModel) TableName() string {
	return "source_entities"
}

// ToEntity converts a SourceEntityModel to a domain SourceEntity.
func (m *SourceEntityModel) ToEntity() *entity.SourceEntity {
	return &entity.SourceEntity{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// SourceEntityFromEntity creates a SourceEntityModel from a domain SourceEntity.
func SourceEntityFromEntity(sourceEntity *entity.SourceEntity) *SourceEntityModel {
	return &SourceEntityModel{
		ID:        sourceEntity.ID,
		UserID:    sourceEntity.UserID,
		Name:      sourceEntity.Name,
		CreatedAt: sourceEntity.CreatedAt,
		UpdatedAt: sourceEntity.UpdatedAt,
	}
}
