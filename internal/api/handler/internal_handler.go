package handler

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

const internalTokenHeader = "X-Internal-Token"

// InternalHandler принимает события конвейера по HTTP, когда Kafka
// недоступна. Доступ закрыт общим секретом движка и API.
type InternalHandler struct {
	eventSink service.LeadEventSink
	token     string
	logger    *slog.Logger
}

func NewInternalHandler(eventSink service.LeadEventSink, token string, logger *slog.Logger) *InternalHandler {
	return &InternalHandler{
		eventSink: eventSink,
		token:     token,
		logger:    logger,
	}
}

func (h *InternalHandler) Register(router *gin.Engine) {
	router.POST("/internal/lead-events", h.HandleLeadEvent)
}

func (h *InternalHandler) HandleLeadEvent(c *gin.Context) {
	provided := c.GetHeader(internalTokenHeader)
	if subtle.ConstantTimeCompare([]byte(provided), []byte(h.token)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "неверный внутренний токен"})
		return
	}

	var event models.LeadEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	if event.Kind == "" || event.TenantID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "событие без kind или tenant_id"})
		return
	}

	if err := h.eventSink.HandleLeadEvent(c.Request.Context(), &event); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusAccepted)
}
