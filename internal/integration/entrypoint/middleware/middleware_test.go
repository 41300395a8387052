package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/finance-tracker/importer/internal/domain/error"
	"github.com/finance-tracker/importer/internal/integration/adapters"
	"github.com/finance-tracker/importer/internal/integration/entrypoint/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthEngine(tokens *adapters.TokenService) *gin.Engine {
	engine := gin.New()
	engine.GET("/me", NewAuthMiddleware(tokens).Authenticate(), func(c *gin.Context) {
		fromGin, _ := GetUserIDFromContext(c)
		fromRequest, err := adapters.NewContextUserProvider().CurrentUserID(c.Request.Context())
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"gin": fromGin.String(), "request": fromRequest.String()})
	})
	return engine
}

func TestAuthenticate(t *testing.T) {
	tokens := adapters.NewTokenService("secret")
	userID := uuid.New()
	valid, err := tokens.GenerateAccessToken(userID, "ana@example.com", time.Hour)
	require.NoError(t, err)
	expired, err := tokens.GenerateAccessToken(userID, "ana@example.com", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedCode   string
	}{
		{name: "missing header", header: "", expectedStatus: http.StatusUnauthorized, expectedCode: string(domainerror.ErrCodeMissingToken)},
		{name: "wrong scheme", header: "Basic abc", expectedStatus: http.StatusUnauthorized, expectedCode: string(domainerror.ErrCodeInvalidToken)},
		{name: "empty bearer", header: "Bearer ", expectedStatus: http.StatusUnauthorized, expectedCode: string(domainerror.ErrCodeMissingToken)},
		{name: "invalid token", header: "Bearer nope", expectedStatus: http.StatusUnauthorized, expectedCode: string(domainerror.ErrCodeInvalidToken)},
		{name: "expired token", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized, expectedCode: string(domainerror.ErrCodeExpiredToken)},
		{name: "valid token", header: "Bearer " + valid, expectedStatus: http.StatusOK},
	}

	engine := newAuthEngine(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var body dto.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body.Code)
				return
			}

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, userID.String(), body["gin"])
			assert.Equal(t, userID.String(), body["request"])
		})
	}
}

func TestRateLimiter_Local(t *testing.T) {
	limiter := NewRateLimiterWithConfig(nil, 2, time.Minute)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	ctx := context.Background()
	assert.True(t, limiter.Allow(ctx, "a"))
	assert.True(t, limiter.Allow(ctx, "a"))
	assert.False(t, limiter.Allow(ctx, "a"))
	assert.True(t, limiter.Allow(ctx, "b"))

	now = now.Add(2 * time.Minute)
	assert.True(t, limiter.Allow(ctx, "a"))

	now = now.Add(2 * time.Minute)
	limiter.Cleanup()
	assert.Empty(t, limiter.entries)
}

func TestRateLimiter_RunCleanup(t *testing.T) {
	limiter := NewRateLimiterWithConfig(nil, 1, 10*time.Millisecond)
	require.True(t, limiter.Allow(context.Background(), "a"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		limiter.RunCleanup(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		limiter.mu.Lock()
		defer limiter.mu.Unlock()
		return len(limiter.entries) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop kept running after cancel")
	}
}

func TestRateLimiter_Redis(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	limiter := NewRateLimiterWithConfig(client, 2, time.Minute)

	ctx := context.Background()
	assert.True(t, limiter.Allow(ctx, "user"))
	assert.True(t, limiter.Allow(ctx, "user"))
	assert.False(t, limiter.Allow(ctx, "user"))
	assert.True(t, server.Exists(rateLimitKeyPrefix+"user"))

	server.FastForward(2 * time.Minute)
	assert.True(t, limiter.Allow(ctx, "user"))
}

func TestRateLimiter_RedisDownFallsBack(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	server.Close()

	limiter := NewRateLimiterWithConfig(client, 1, time.Minute)
	ctx := context.Background()
	assert.True(t, limiter.Allow(ctx, "user"))
	assert.False(t, limiter.Allow(ctx, "user"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	tokens := adapters.NewTokenService("secret")
	token, err := tokens.GenerateAccessToken(uuid.New(), "", time.Hour)
	require.NoError(t, err)

	limiter := NewRateLimiterWithConfig(nil, 1, time.Minute)
	engine := gin.New()
	engine.POST("/imports", NewAuthMiddleware(tokens).Authenticate(), limiter.Middleware(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/imports", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusCreated, send().Code)

	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, string(domainerror.ErrCodeRateLimited), body.Code)
}
