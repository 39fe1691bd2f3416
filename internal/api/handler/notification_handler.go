package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *slog.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

func (h *NotificationHandler) Register(group *gin.RouterGroup) {
	group.GET("/notifications", h.List)
	group.GET("/notifications/stats", h.Stats)
	group.GET("/notifications/:id", h.Get)
	group.POST("/notifications/mark-all-read", h.MarkAllRead)
	group.PATCH("/notifications/:id", h.MarkRead)
	group.DELETE("/notifications/:id", h.Delete)
}

func (h *NotificationHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var isRead *bool

	if raw, present := c.GetQuery("is_read"); present {
		value := raw == "true"
		isRead = &value
	}

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notificationService.ListNotifications(c.Request.Context(), tenant, isRead, skip, limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		items = append(items, toNotificationResponse(notification))
	}

	c.JSON(http.StatusOK, gin.H{"notifications": items, "count": len(items)})
}

func (h *NotificationHandler) Get(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	notification, err := h.notificationService.GetNotification(c.Request.Context(), tenant, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toNotificationResponse(notification))
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), tenant, id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	marked, err := h.notificationService.MarkAllRead(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": marked})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.DeleteNotification(c.Request.Context(), tenant, id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Stats(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	stats, err := h.notificationService.Stats(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

type notificationResponse struct {
	ID        int64          `json:"id"`
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Payload   map[string]any `json:"payload,omitempty"`
	IsRead    bool           `json:"is_read"`
	CreatedAt string         `json:"created_at"`
}

func toNotificationResponse(notification *models.Notification) notificationResponse {
	return notificationResponse{
		ID:        notification.ID,
		Type:      string(notification.Type),
		Title:     notification.Title,
		Message:   notification.Message,
		Payload:   notification.Payload,
		IsRead:    notification.IsRead,
		CreatedAt: notification.CreatedAt.Format(timeFormat),
	}
}
