package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/common/middleware"
)

func newRateLimitedRouter(ctx context.Context, requests int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	limiter := middleware.NewRateLimiterMiddleware(ctx, requests, window, logger)

	router := gin.New()
	router.Use(limiter.Handler())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	return router
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := newRateLimitedRouter(ctx, 2, time.Second)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, "запрос %d должен проходить", i+1)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code, "третий запрос должен быть заблокирован")

	retryAfter := w.Header().Get("Retry-After")
	require.NotEmpty(t, retryAfter, "должен быть заголовок Retry-After")

	retrySeconds, err := strconv.Atoi(retryAfter)
	require.NoError(t, err, "Retry-After должен быть числом")
	assert.Positive(t, retrySeconds)

	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimiter_SeparateClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := newRateLimitedRouter(ctx, 1, time.Second)

	first := httptest.NewRecorder()
	reqFirst := httptest.NewRequest(http.MethodGet, "/ping", nil)
	reqFirst.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(first, reqFirst)
	assert.Equal(t, http.StatusOK, first.Code)

	blocked := httptest.NewRecorder()
	reqBlocked := httptest.NewRequest(http.MethodGet, "/ping", nil)
	reqBlocked.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(blocked, reqBlocked)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

	other := httptest.NewRecorder()
	reqOther := httptest.NewRequest(http.MethodGet, "/ping", nil)
	reqOther.RemoteAddr = "10.0.0.2:54321"
	router.ServeHTTP(other, reqOther)
	assert.Equal(t, http.StatusOK, other.Code, "другой клиент не должен быть затронут лимитом")
}

func TestRateLimiter_ResetsAfterWindow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := newRateLimitedRouter(ctx, 1, 200*time.Millisecond)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	blocked := httptest.NewRecorder()
	reqBlocked := httptest.NewRequest(http.MethodGet, "/ping", nil)
	reqBlocked.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(blocked, reqBlocked)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)

	time.Sleep(300 * time.Millisecond)

	after := httptest.NewRecorder()
	reqAfter := httptest.NewRequest(http.MethodGet, "/ping", nil)
	reqAfter.RemoteAddr = "10.0.0.1:12345"
	router.ServeHTTP(after, reqAfter)
	assert.Equal(t, http.StatusOK, after.Code, "после окна лимит должен сброситься")
}
