// Package dependency provides dependency injection for the application.
package dependency

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/finance-tracker/importer/config"
	"github.com/finance-tracker/importer/internal/application/adapter"
	"github.com/finance-tracker/importer/internal/application/usecase/category"
	"github.com/finance-tracker/importer/internal/application/usecase/statementimport"
	"github.com/finance-tracker/importer/internal/application/usecase/transaction"
	"github.com/finance-tracker/importer/internal/infra/cache"
	"github.com/finance-tracker/importer/internal/infra/server/router"
	"github.com/finance-tracker/importer/internal/integration/adapters"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/middleware"
	"github.com/finance-tracker/importer/internal/integration/persistence"
	"github.com/finance-tracker/importer/internal/integration/statement"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Cache  *redis.Client
	Router *router.Router

	ImportRateLimiter *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
// cacheClient may be nil, in which case rate limiting keeps its counters in process.
func NewInjector(cfg *config.Config, db *gorm.DB, cacheClient *redis.Client) *Injector {
	// Repositories
	categoryRepo := persistence.NewCategoryRepository(db)
	transactionRepo := persistence.NewTransactionRepository(db)
	batchRepo := persistence.NewImportBatchRepository(db)

	// Adapters
	tokenService := adapters.NewTokenService(cfg.JWT.Secret)

	// Statement import use cases
	importUseCase := NewImportStatementUseCase(cfg, db, adapters.NewContextUserProvider())
	listImportsUseCase := statementimport.NewListImportBatchesUseCase(batchRepo)

	// Transaction use cases
	listTransactionsUseCase := transaction.NewListTransactionsUseCase(transactionRepo)
	getTransactionUseCase := transaction.NewGetTransactionUseCase(transactionRepo)
	createTransactionUseCase := transaction.NewCreateTransactionUseCase(transactionRepo, categoryRepo)
	updateTransactionUseCase := transaction.NewUpdateTransactionUseCase(transactionRepo, categoryRepo)
	deleteTransactionUseCase := transaction.NewDeleteTransactionUseCase(transactionRepo)

	// Catalog use cases
	listCategoriesUseCase := category.NewListCategoriesUseCase(categoryRepo)
	createCategoryUseCase := category.NewCreateCategoryUseCase(categoryRepo)
	createSubcategoryUseCase := category.NewCreateSubcategoryUseCase(categoryRepo)
	listSourceEntitiesUseCase := category.NewListSourceEntitiesUseCase(categoryRepo)
	createSourceEntityUseCase := category.NewCreateSourceEntityUseCase(categoryRepo)

	// Controllers
	var cacheHealthChecker controller.HealthChecker
	if cacheClient != nil {
		cacheHealthChecker = cache.HealthCheck(cacheClient)
	}
	healthController := controller.NewHealthController(func() bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, cacheHealthChecker)

	importController := controller.NewImportController(importUseCase, listImportsUseCase, cfg.Import.MaxUploadBytes)

	transactionController := controller.NewTransactionController(
		listTransactionsUseCase,
		getTransactionUseCase,
		createTransactionUseCase,
		updateTransactionUseCase,
		deleteTransactionUseCase,
	)

	categoryController := controller.NewCategoryController(
		listCategoriesUseCase,
		createCategoryUseCase,
		createSubcategoryUseCase,
		listSourceEntitiesUseCase,
		createSourceEntityUseCase,
	)

	// Middleware
	importRateLimiter := middleware.NewRateLimiterWithConfig(cacheClient, cfg.RateLimit.ImportRequests, cfg.RateLimit.Window)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	r := router.NewRouter(
		healthController,
		importController,
		transactionController,
		categoryController,
		importRateLimiter,
		authMiddleware,
	)

	return &Injector{
		Config: cfg,
		DB:     db,
		Cache:  cacheClient,
		Router: r,

		ImportRateLimiter: importRateLimiter,
	}
}

// NewImportStatementUseCase wires the import engine over db. The HTTP API resolves the acting
// user from the request context; the command-line importer passes a static provider.
func NewImportStatementUseCase(cfg *config.Config, db *gorm.DB, currentUser adapter.CurrentUserProvider) *statementimport.ImportStatementUseCase {
	return statementimport.NewImportStatementUseCase(
		statement.NewDetector(),
		statement.NewParsers(),
		persistence.NewCategoryRepository(db),
		persistence.NewTransactionRepository(db),
		persistence.NewImportBatchRepository(db),
		persistence.NewTransactionManager(db),
		currentUser,
		statementimport.Defaults{
			Location: cfg.Import.Location(),
			Locale:   cfg.Import.DefaultLocale,
		},
	)
}
