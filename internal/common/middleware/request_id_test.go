package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/common/middleware"
)

func newRequestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	return router
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	t.Parallel()

	router := newRequestIDRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	id := w.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, id)

	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.Equal(t, id, w.Body.String(), "обработчик видит тот же идентификатор")
}

func TestRequestID_KeepsClientValue(t *testing.T) {
	t.Parallel()

	router := newRequestIDRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(middleware.RequestIDHeader, "client-supplied-id")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "client-supplied-id", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "client-supplied-id", w.Body.String())
}
