package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/integration/persistence/model"
)

// categoryRepository implements the adapter.CategoryRepository interface.
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository instance.
func NewCategoryRepository(db *gorm.DB) adapter.CategoryRepository {
	return &categoryRepository{
		db: db,
	}
}

// CreateCategory creates a new category in the database.
func (r *categoryRepository) CreateCategory(ctx context.Context, category *entity.Category) error {
	categoryModel := model.CategoryFromEntity(category)
	if err := conn(ctx, r.db).Omit("Subcategories").Create(categoryModel).Error; err != nil {
		return err
	}
	category.ID = categoryModel.ID
	return nil
}

// CreateSubcategory creates a new subcategory in the database.
func (r *categoryRepository) CreateSubcategory(ctx context.Context, subcategory *entity.Subcategory) error {
	subcategoryModel := model.SubcategoryFromEntity(subcategory)
	if err := conn(ctx, r.db).Create(subcategoryModel).Error; err != nil {
		return err
	}
	subcategory.ID = subcategoryModel.ID
	return nil
}

// CreateSourceEntity creates a new source entity in the database.
func (r *categoryRepository) CreateSourceEntity(ctx context.Context, sourceEntity *entity.SourceEntity) error {
	sourceEntityModel := model.SourceEntityFromEntity(sourceEntity)
	if err := conn(ctx, r.db).Create(sourceEntityModel).Error; err != nil {
		return err
	}
	sourceEntity.ID = sourceEntityModel.ID
	return nil
}

// FindCategoryByID retrieves one of the user's categories by its ID.
func (r *categoryRepository) FindCategoryByID(ctx context.Context, userID uuid.UUID, id int64) (*entity.Category, error) {
	var categoryModel model.CategoryModel
	result := conn(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&categoryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrCategoryNotFound
		}
		return nil, result.Error
	}
	return categoryModel.ToEntity(), nil
}

// FindSubcategoryByID retrieves one of the user's subcategories by its ID.
func (r *categoryRepository) FindSubcategoryByID(ctx context.Context, userID uuid.UUID, id int64) (*entity.Subcategory, error) {
	var subcategoryModel model.SubcategoryModel
	result := conn(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&subcategoryModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSubcategoryNotFound
		}
		return nil, result.Error
	}
	return subcategoryModel.ToEntity(), nil
}

// FindSourceEntityByID retrieves one of the user's source entities by its ID.
func (r *categoryRepository) FindSourceEntityByID(ctx context.Context, userID uuid.UUID, id int64) (*entity.SourceEntity, error) {
	var sourceEntityModel model.SourceEntityModel
	result := conn(ctx, r.db).Where("id = ? AND user_id = ?", id, userID).First(&sourceEntityModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrSourceEntityNotFound
		}
		return nil, result.Error
	}
	return sourceEntityModel.ToEntity(), nil
}

// FindCategoryByName matches a category name case-insensitively. Returns nil when none matches.
func (r *categoryRepository) FindCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	var categoryModel model.CategoryModel
	found, err := r.firstByName(ctx, userID, name, &categoryModel)
	if err != nil || !found {
		return nil, err
	}
	return categoryModel.ToEntity(), nil
}

// FindSubcategoryByName matches a subcategory name case-insensitively. Returns nil when none matches.
func (r *categoryRepository) FindSubcategoryByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Subcategory, error) {
	var subcategoryModel model.SubcategoryModel
	found, err := r.firstByName(ctx, userID, name, &subcategoryModel)
	if err != nil || !found {
		return nil, err
	}
	return subcategoryModel.ToEntity(), nil
}

// FindSourceEntityByName matches a source entity name case-insensitively. Returns nil when none matches.
func (r *categoryRepository) FindSourceEntityByName(ctx context.Context, userID uuid.UUID, name string) (*entity.SourceEntity, error) {
	var sourceEntityModel model.SourceEntityModel
	found, err := r.firstByName(ctx, userID, name, &sourceEntityModel)
	if err != nil || !found {
		return nil, err
	}
	return sourceEntityModel.ToEntity(), nil
}

func (r *categoryRepository) firstByName(ctx context.Context, userID uuid.UUID, name string, dest interface{}) (bool, error) {
	result := conn(ctx, r.db).
		Where("user_id = ? AND LOWER(name) = ?", userID, strings.ToLower(strings.TrimSpace(name))).
		Order("id ASC").
		Limit(1).
		Find(dest)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListCategories retrieves the user's categories with their subcategories, ordered by name.
func (r *categoryRepository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	var categoryModels []model.CategoryModel
	result := conn(ctx, r.db).
		Preload("Subcategories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&categoryModels)
	if result.Error != nil {
		return nil, result.Error
	}

	categories := make([]*entity.Category, len(categoryModels))
	for i := range categoryModels {
		categories[i] = categoryModels[i].ToEntity()
	}
	return categories, nil
}

// ListSourceEntities retrieves the user's source entities, ordered by name.
func (r *categoryRepository) ListSourceEntities(ctx context.Context, userID uuid.UUID) ([]*entity.SourceEntity, error) {
	var sourceEntityModels []model.SourceEntityModel
	result := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&sourceEntityModels)
	if result.Error != nil {
		return nil, result.Error
	}

	sourceEntities := make([]*entity.SourceEntity, len(sourceEntityModels))
	for i := range sourceEntityModels {
		sourceEntities[i] = sourceEntityModels[i].ToEntity()
	}
	return sourceEntities, nil
}
