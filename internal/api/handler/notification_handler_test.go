package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/api/handler"
	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	repomocks "github.com/leadstream-dev/go-leadstream/internal/repository/mocks"
)

type notificationHandlerFixture struct {
	notificationRepo *repomocks.NotificationRepository
	router           *gin.Engine
}

func newNotificationHandlerFixture(t *testing.T) *notificationHandlerFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	f := &notificationHandlerFixture{
		notificationRepo: repomocks.NewNotificationRepository(t),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	notificationService := service.NewNotificationService(f.notificationRepo, logger)

	f.router = gin.New()
	group := f.router.Group("/api/v1")
	handler.NewNotificationHandler(notificationService, logger).Register(group)

	return f
}

func (f *notificationHandlerFixture) get(path, tenant string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if tenant != "" {
		req.Header.Set("X-Tenant-ID", tenant)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	return w
}

func TestNotificationHandler_Get(t *testing.T) {
	t.Parallel()

	t.Run("возвращает уведомление по ID", func(t *testing.T) {
		t.Parallel()

		f := newNotificationHandlerFixture(t)

		f.notificationRepo.On("FindByID", mock.Anything, int64(1), int64(7)).
			Return(&models.Notification{
				ID:        7,
				TenantID:  1,
				Type:      models.NotificationLeadCreated,
				Title:     "Новый лид",
				Message:   "Найден потенциальный клиент",
				IsRead:    false,
				CreatedAt: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
			}, nil).Once()

		w := f.get("/api/v1/notifications/7", "1")

		require.Equal(t, http.StatusOK, w.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.EqualValues(t, 7, body["id"])
		assert.Equal(t, "lead_created", body["type"])
		assert.Equal(t, "Новый лид", body["title"])
		assert.Equal(t, false, body["is_read"])
	})

	t.Run("отсутствующее уведомление отвечает 404", func(t *testing.T) {
		t.Parallel()

		f := newNotificationHandlerFixture(t)

		f.notificationRepo.On("FindByID", mock.Anything, int64(1), int64(99)).
			Return(nil, &errors.ErrNotificationNotFound{NotificationID: 99}).Once()

		w := f.get("/api/v1/notifications/99", "1")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("статический маршрут stats не перехватывается параметром", func(t *testing.T) {
		t.Parallel()

		f := newNotificationHandlerFixture(t)

		f.notificationRepo.On("Stats", mock.Anything, int64(1)).
			Return(&models.NotificationStats{Total: 3, Unread: 1}, nil).Once()

		w := f.get("/api/v1/notifications/stats", "1")

		assert.Equal(t, http.StatusOK, w.Code)
		f.notificationRepo.AssertNotCalled(t, "FindByID")
	})
}
