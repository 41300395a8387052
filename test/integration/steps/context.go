//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/finance-tracker/importer/config"
	"github.com/finance-tracker/importer/internal/infra/dependency"
	"github.com/finance-tracker/importer/internal/integration/adapters"
	"github.com/finance-tracker/importer/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// testContext holds the state of one scenario.
type testContext struct {
	uri           string
	client        *http.Client
	db            *mock.Db
	redis         *mock.Redis
	cfg           *config.Config
	tokens        *adapters.TokenService
	headers       map[string]string
	accessToken   string
	currentUserID uuid.UUID
	fixtures      map[string]int64
	fileName      string
	fileContent   []byte
	lastID        int64
	lastBatchID   string
	response      *response
}

type response struct {
	status int
	body   any
}

var (
	serverOnce sync.Once
	serverURL  string
)

// startServer boots the API once per suite over the sqlite and miniredis mocks.
func startServer(cfg *config.Config, db *mock.Db, redis *mock.Redis) string {
	serverOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		injector := dependency.NewInjector(cfg, db.DbConn, redis.Client)
		serverURL = httptest.NewServer(injector.Router.Setup("test")).URL
	})
	return serverURL
}

func testConfig() *config.Config {
	cfg := config.Load()
	cfg.Server.Environment = "test"
	cfg.JWT.Secret = testJWTSecret
	cfg.RateLimit.ImportRequests = 5
	cfg.RateLimit.Window = time.Minute
	cfg.Import.DefaultTimeZone = "UTC"
	cfg.Import.DefaultLocale = "en-US"
	cfg.Import.MaxUploadBytes = 64 << 10
	return cfg
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	cfg := testConfig()
	test := &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
		db:     mock.NewDb(),
		redis:  mock.NewRedis(),
		cfg:    cfg,
		tokens: adapters.NewTokenService(cfg.JWT.Secret),
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	// Background steps
	ctx.Given(`^the API server is running$`, test.theAPIServerIsRunning)
	ctx.Given(`^I am authenticated as a new user$`, test.iAmAuthenticatedAsANewUser)

	// Catalog setup steps
	ctx.Given(`^a category "([^"]*)" exists$`, test.aCategoryExists)
	ctx.Given(`^a category "([^"]*)" of type "([^"]*)" exists$`, test.aCategoryOfTypeExists)
	ctx.Given(`^a subcategory "([^"]*)" exists under "([^"]*)"$`, test.aSubcategoryExistsUnder)
	ctx.Given(`^a source entity "([^"]*)" exists$`, test.aSourceEntityExists)
	ctx.Given(`^a category "([^"]*)" exists for another user$`, test.aCategoryExistsForAnotherUser)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Import steps
	ctx.Given(`^the statement file "([^"]*)" contains:$`, test.theStatementFileContains)
	ctx.Step(`^I import the statement with configuration:$`, test.iImportTheStatementWithConfiguration)
	ctx.When(`^I import the statement (\d+) times with configuration:$`, test.iImportTheStatementTimesWithConfiguration)
	ctx.When(`^the rate limit window elapses$`, test.theRateLimitWindowElapses)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.Step(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) items$`, test.theResponseFieldShouldHaveItems)

	// Database assertion steps
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^the db should contain (\d+) objects in "([^"]*)" with the values$`, test.theDbShouldContainObjectsInWithTheValues)
}

func (t *testContext) before() error {
	t.headers = make(map[string]string)
	t.accessToken = ""
	t.currentUserID = uuid.Nil
	t.fixtures = make(map[string]int64)
	t.fileName = ""
	t.fileContent = nil
	t.lastID = 0
	t.lastBatchID = ""
	t.response = nil

	if err := t.db.ClearDB(); err != nil {
		return err
	}
	return t.redis.Clear()
}
