package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type subscribeRequest struct {
	TelegramAccountID int64    `json:"telegram_account_id" binding:"required"`
	TgChannelID       int64    `json:"tg_channel_id" binding:"required"`
	Username          string   `json:"username"`
	Title             string   `json:"title"`
	Tags              []string `json:"tags"`
}

type updateSubscriptionRequest struct {
	IsActive *bool     `json:"is_active"`
	Tags     *[]string `json:"tags"`
}

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
	logger              *slog.Logger
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

func (h *SubscriptionHandler) Register(group *gin.RouterGroup) {
	group.POST("/subscriptions", h.Create)
	group.GET("/subscriptions", h.List)
	group.PATCH("/subscriptions/:id", h.Update)
	group.DELETE("/subscriptions/:id", h.Delete)
}

func (h *SubscriptionHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	channel := &models.Channel{
		TgChannelID: req.TgChannelID,
		Username:    req.Username,
		Title:       req.Title,
		IsActive:    true,
	}

	subscription, err := h.subscriptionService.Subscribe(c.Request.Context(), tenant, req.TelegramAccountID, channel, req.Tags)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toSubscriptionResponse(subscription))
}

func (h *SubscriptionHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	onlyActive := c.Query("only_active") == "true"

	subscriptions, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), tenant, onlyActive)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items := make([]subscriptionResponse, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		items = append(items, toSubscriptionResponse(subscription))
	}

	c.JSON(http.StatusOK, gin.H{"subscriptions": items, "count": len(items)})
}

func (h *SubscriptionHandler) Update(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	subscription, err := h.subscriptionService.UpdateSubscription(c.Request.Context(), tenant, id, &service.SubscriptionPatch{
		IsActive: req.IsActive,
		Tags:     req.Tags,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(subscription))
}

func (h *SubscriptionHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), tenant, id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type subscriptionResponse struct {
	ID                int64    `json:"id"`
	ChannelID         int64    `json:"channel_id"`
	TelegramAccountID int64    `json:"telegram_account_id"`
	IsActive          bool     `json:"is_active"`
	Tags              []string `json:"tags"`
	CreatedAt         string   `json:"created_at"`
}

func toSubscriptionResponse(subscription *models.Subscription) subscriptionResponse {
	return subscriptionResponse{
		ID:                subscription.ID,
		ChannelID:         subscription.ChannelID,
		TelegramAccountID: subscription.TelegramAccountID,
		IsActive:          subscription.IsActive,
		Tags:              subscription.Tags,
		CreatedAt:         subscription.CreatedAt.Format(timeFormat),
	}
}
