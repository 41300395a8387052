// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/importer/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	importController      *controller.ImportController
	transactionController *controller.TransactionController
	categoryController    *controller.CategoryController
	importRateLimiter     *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	importController *controller.ImportController,
	transactionController *controller.TransactionController,
	categoryController *controller.CategoryController,
	importRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:      healthController,
		importController:      importController,
		transactionController: transactionController,
		categoryController:    categoryController,
		importRateLimiter:     importRateLimiter,
		authMiddleware:        authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes. Every route requires a bearer token.
func (r *Router) setupAPIRoutes() {
	if r.authMiddleware == nil {
		return
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())

	if r.importController != nil {
		imports := v1.Group("/imports")
		{
			upload := []gin.HandlerFunc{r.importController.Import}
			if r.importRateLimiter != nil {
				upload = append([]gin.HandlerFunc{r.importRateLimiter.Middleware()}, upload...)
			}
			imports.POST("", upload...)
			imports.GET("", r.importController.List)
		}
	}

	if r.transactionController != nil {
		transactions := v1.Group("/transactions")
		{
			transactions.GET("", r.transactionController.List)
			transactions.POST("", r.transactionController.Create)
			transactions.GET("/:id", r.transactionController.Get)
			transactions.PATCH("/:id", r.transactionController.Update)
			transactions.DELETE("/:id", r.transactionController.Delete)
		}
	}

	if r.categoryController != nil {
		categories := v1.Group("/categories")
		{
			categories.GET("", r.categoryController.List)
			categories.POST("", r.categoryController.Create)
			categories.POST("/:id/subcategories", r.categoryController.CreateSubcategory)
		}

		sourceEntities := v1.Group("/source-entities")
		{
			sourceEntities.GET("", r.categoryController.ListSourceEntities)
			sourceEntities.POST("", r.categoryController.CreateSourceEntity)
		}
	}
}
