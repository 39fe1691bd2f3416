package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type preferencesRequest struct {
	EmailEnabled             bool `json:"email_enabled"`
	InAppEnabled             bool `json:"in_app_enabled"`
	NotifyOnNewLead          bool `json:"notify_on_new_lead"`
	NotifyOnLeadStatusChange bool `json:"notify_on_lead_status_change"`
	NotifyOnLeadAssignment   bool `json:"notify_on_lead_assignment"`
}

type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

func (h *UserHandler) Register(group *gin.RouterGroup) {
	group.GET("/users/me", h.Me)
	group.GET("/users/me/notification-preferences", h.GetPreferences)
	group.PATCH("/users/me/notification-preferences", h.UpdatePreferences)
	group.GET("/users/me/telegram-bot", h.BotStatus)
	group.POST("/users/me/telegram-bot/generate-code", h.GenerateBindingCode)
	group.POST("/users/me/telegram-bot/verify", h.VerifyBinding)
	group.POST("/users/me/telegram-bot/disconnect", h.Unbind)
}

func (h *UserHandler) Me(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"is_active":  user.IsActive,
		"created_at": user.CreatedAt.Format(timeFormat),
	})
}

func (h *UserHandler) BotStatus(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	_, botState, err := h.userService.GetPreferences(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enabled": botState.Enabled,
		"bound":   botState.Bound,
	})
}

// VerifyBinding опрашивается фронтендом после выдачи кода: привязку
// завершает бот, здесь только отдаётся её текущее состояние.
func (h *UserHandler) VerifyBinding(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	_, botState, err := h.userService.GetPreferences(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"verified": botState.Bound,
		"enabled":  botState.Enabled,
	})
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	prefs, botState, err := h.userService.GetPreferences(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email_enabled":                prefs.EmailEnabled,
		"in_app_enabled":               prefs.InAppEnabled,
		"notify_on_new_lead":           prefs.NotifyOnNewLead,
		"notify_on_lead_status_change": prefs.NotifyOnLeadStatusChange,
		"notify_on_lead_assignment":    prefs.NotifyOnLeadAssignment,
		"telegram_bot": gin.H{
			"enabled": botState.Enabled,
			"bound":   botState.Bound,
		},
	})
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	prefs := models.NotificationPreferences{
		EmailEnabled:             req.EmailEnabled,
		InAppEnabled:             req.InAppEnabled,
		NotifyOnNewLead:          req.NotifyOnNewLead,
		NotifyOnLeadStatusChange: req.NotifyOnLeadStatusChange,
		NotifyOnLeadAssignment:   req.NotifyOnLeadAssignment,
	}

	if err := h.userService.UpdatePreferences(c.Request.Context(), tenant, prefs); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) GenerateBindingCode(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	code, err := h.userService.GenerateBindingCode(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":       code.Code,
		"expires_at": code.ExpiresAt.Format(timeFormat),
	})
}

func (h *UserHandler) Unbind(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	if err := h.userService.UnbindTelegram(c.Request.Context(), tenant); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
