package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/importer/internal/application/usecase/category"
	"github.com/finance-tracker/importer/internal/domain/entity"
	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/dto"
)

// CategoryController handles the catalog endpoints: categories, subcategories and source entities.
type CategoryController struct {
	listUseCase               *category.ListCategoriesUseCase
	createUseCase             *category.CreateCategoryUseCase
	createSubcategoryUseCase  *category.CreateSubcategoryUseCase
	listSourceEntitiesUseCase *category.ListSourceEntitiesUseCase
	createSourceEntityUseCase *category.CreateSourceEntityUseCase
}

// NewCategoryController creates a new category controller instance.
func NewCategoryController(
	listUseCase *category.ListCategoriesUseCase,
	createUseCase *category.CreateCategoryUseCase,
	createSubcategoryUseCase *category.CreateSubcategoryUseCase,
	listSourceEntitiesUseCase *category.ListSourceEntitiesUseCase,
	createSourceEntityUseCase *category.CreateSourceEntityUseCase,
) *CategoryController {
	return &CategoryController{
		listUseCase:               listUseCase,
		createUseCase:             createUseCase,
		createSubcategoryUseCase:  createSubcategoryUseCase,
		listSourceEntitiesUseCase: listSourceEntitiesUseCase,
		createSourceEntityUseCase: createSourceEntityUseCase,
	}
}

// List handles GET /categories requests.
func (c *CategoryController) List(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	input := category.ListCategoriesInput{UserID: userID}
	if typeFilter := ctx.Query("type"); typeFilter != "" {
		parsed, ok := entity.ParseTransactionType(typeFilter)
		if !ok {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error: "Invalid type filter. Must be 'INCOME' or 'EXPENSE'",
				Code:  string(domainerror.ErrCodeInvalidCategoryType),
			})
			return
		}
		input.Type = &parsed
	}

	output, err := c.listUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToCategoryListResponse(output.Categories))
}

// Create handles POST /categories requests.
func (c *CategoryController) Create(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	input := category.CreateCategoryInput{
		UserID: userID,
		Name:   req.Name,
	}
	if req.Type != nil {
		t := entity.TransactionType(*req.Type)
		input.Type = &t
	}

	output, err := c.createUseCase.Execute(ctx.Request.Context(), input)
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToCategoryResponse(output.Category))
}

// CreateSubcategory handles POST /categories/:id/subcategories requests.
func (c *CategoryController) CreateSubcategory(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	categoryID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.CreateCatalogEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.createSubcategoryUseCase.Execute(ctx.Request.Context(), category.CreateSubcategoryInput{
		UserID:     userID,
		CategoryID: categoryID,
		Name:       req.Name,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSubcategoryResponse(output.Subcategory))
}

// ListSourceEntities handles GET /source-entities requests.
func (c *CategoryController) ListSourceEntities(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	output, err := c.listSourceEntitiesUseCase.Execute(ctx.Request.Context(), category.ListSourceEntitiesInput{UserID: userID})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToSourceEntityListResponse(output.SourceEntities))
}

// CreateSourceEntity handles POST /source-entities requests.
func (c *CategoryController) CreateSourceEntity(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}

	var req dto.CreateCatalogEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Code:    string(domainerror.ErrCodeMissingCategoryFields),
			Details: err.Error(),
		})
		return
	}

	output, err := c.createSourceEntityUseCase.Execute(ctx.Request.Context(), category.CreateSourceEntityInput{
		UserID: userID,
		Name:   req.Name,
	})
	if err != nil {
		c.handleCategoryError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToSourceEntityResponse(output.SourceEntity))
}

// handleCategoryError handles catalog errors and returns appropriate HTTP responses.
func (c *CategoryController) handleCategoryError(ctx *gin.Context, err error) {
	var catErr *domainerror.CategoryError
	if errors.As(err, &catErr) {
		ctx.JSON(c.getStatusCodeForCategoryError(catErr.Code), dto.ErrorResponse{
			Error: catErr.Message,
			Code:  string(catErr.Code),
		})
		return
	}

	slog.Error("Catalog request failed", "path", ctx.FullPath(), "error", err)
	internalError(ctx)
}

// getStatusCodeForCategoryError maps category error codes to HTTP status codes.
func (c *CategoryController) getStatusCodeForCategoryError(code domainerror.CategoryErrorCode) int {
	switch code {
	case domainerror.ErrCodeCategoryNotFound,
		domainerror.ErrCodeSubcategoryNotFound,
		domainerror.ErrCodeSourceEntityNotFound:
		return http.StatusNotFound
	case domainerror.ErrCodeCatalogNameExists:
		return http.StatusConflict
	case domainerror.ErrCodeCatalogNameRequired,
		domainerror.ErrCodeCatalogNameTooLong,
		domainerror.ErrCodeInvalidCategoryType,
		domainerror.ErrCodeMissingCategoryFields:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
