package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func() bool

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker    HealthChecker
	cacheHealthChecker HealthChecker
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Cache     string `json:"cache"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance. Either checker may be nil.
func NewHealthController(dbHealthChecker, cacheHealthChecker HealthChecker) *HealthController {
	return &HealthController{
		dbHealthChecker:    dbHealthChecker,
		cacheHealthChecker: cacheHealthChecker,
	}
}

// Check handles GET /health requests.
// The database is required; a missing cache only degrades rate limiting to local counters.
func (h *HealthController) Check(c *gin.Context) {
	dbStatus := probe(h.dbHealthChecker)
	cacheStatus := probe(h.cacheHealthChecker)

	status, code := "ok", http.StatusOK
	if dbStatus != "connected" {
		status, code = "unavailable", http.StatusServiceUnavailable
	} else if cacheStatus == "disconnected" {
		status = "degraded"
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Database:  dbStatus,
		Cache:     cacheStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func probe(checker HealthChecker) string {
	switch {
	case checker == nil:
		return "disabled"
	case checker():
		return "connected"
	default:
		return "disconnected"
	}
}
