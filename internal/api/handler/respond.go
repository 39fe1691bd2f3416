package handler

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
)

const (
	tenantHeader = "X-Tenant-ID"
	timeFormat   = "2006-01-02T15:04:05Z07:00"
)

// tenantID достаёт идентификатор арендатора, проставленный шлюзом
// аутентификации. Запрос без заголовка не проходит дальше.
func tenantID(c *gin.Context) (int64, bool) {
	raw := c.GetHeader(tenantHeader)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "не указан арендатор"})
		return 0, false
	}

	return id, true
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный идентификатор"})
		return 0, false
	}

	return id, true
}

func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		logger.Error("Ошибка при обработке запроса",
			"error", err,
			"path", c.FullPath(),
		)

		c.JSON(status, gin.H{"error": "внутренняя ошибка сервера"})

		return
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case stderrors.Is(err, &errors.ErrRuleNotFound{}),
		stderrors.Is(err, &errors.ErrLeadNotFound{}),
		stderrors.Is(err, &errors.ErrMessageNotFound{}),
		stderrors.Is(err, &errors.ErrChannelNotFound{}),
		stderrors.Is(err, &errors.ErrSubscriptionNotFound{}),
		stderrors.Is(err, &errors.ErrAccountNotFound{}),
		stderrors.Is(err, &errors.ErrNotificationNotFound{}),
		stderrors.Is(err, &errors.ErrUserNotFound{}):
		return http.StatusNotFound
	case stderrors.Is(err, &errors.ErrPromptTooShort{}),
		stderrors.Is(err, &errors.ErrThresholdOutOfRange{}),
		stderrors.Is(err, &errors.ErrChannelNotSubscribed{}),
		stderrors.Is(err, &errors.ErrInvalidLeadStatus{}),
		stderrors.Is(err, &errors.ErrVerificationCodeInvalid{}),
		stderrors.Is(err, &errors.ErrBadRequest{}):
		return http.StatusBadRequest
	case stderrors.Is(err, &errors.ErrSubscriptionAlreadyExists{}):
		return http.StatusConflict
	case stderrors.Is(err, &errors.ErrGatewayUnavailable{}),
		stderrors.Is(err, &errors.ErrLLMTimeout{}):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
