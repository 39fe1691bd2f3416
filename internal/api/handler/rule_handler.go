package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type createRuleRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Prompt      string  `json:"prompt" binding:"required"`
	Threshold   float64 `json:"threshold"`
	ChannelIDs  []int64 `json:"channel_ids"`
	IsActive    *bool   `json:"is_active"`
	Schedule    string  `json:"schedule"`
}

type updateRuleRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Prompt      *string  `json:"prompt"`
	Threshold   *float64 `json:"threshold"`
	ChannelIDs  *[]int64 `json:"channel_ids"`
	IsActive    *bool    `json:"is_active"`
	Schedule    *string  `json:"schedule"`
}

type testRuleRequest struct {
	Prompt    *string  `json:"prompt"`
	Threshold *float64 `json:"threshold"`
	Text      string   `json:"text" binding:"required"`
}

type RuleHandler struct {
	ruleService *service.RuleService
	logger      *slog.Logger
}

func NewRuleHandler(ruleService *service.RuleService, logger *slog.Logger) *RuleHandler {
	return &RuleHandler{
		ruleService: ruleService,
		logger:      logger,
	}
}

func (h *RuleHandler) Register(group *gin.RouterGroup) {
	group.POST("/rules", h.Create)
	group.GET("/rules", h.List)
	group.GET("/rules/:id", h.Get)
	group.PATCH("/rules/:id", h.Update)
	group.DELETE("/rules/:id", h.Delete)
	group.POST("/rules/:id/test", h.Test)
}

func (h *RuleHandler) Create(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	rule := &models.Rule{
		TenantID:    tenant,
		Name:        req.Name,
		Description: req.Description,
		Prompt:      req.Prompt,
		Threshold:   req.Threshold,
		ChannelIDs:  req.ChannelIDs,
		IsActive:    true,
		Schedule:    req.Schedule,
	}

	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := h.ruleService.CreateRule(c.Request.Context(), rule); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toRuleResponse(rule))
}

func (h *RuleHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var isActive *bool

	if raw, present := c.GetQuery("is_active"); present {
		value := raw == "true"
		isActive = &value
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), tenant, isActive)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		items = append(items, toRuleResponse(rule))
	}

	c.JSON(http.StatusOK, gin.H{"rules": items, "count": len(items)})
}

func (h *RuleHandler) Get(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rule, err := h.ruleService.GetRule(c.Request.Context(), tenant, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (h *RuleHandler) Update(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	patch := &service.RulePatch{
		Name:        req.Name,
		Description: req.Description,
		Prompt:      req.Prompt,
		Threshold:   req.Threshold,
		ChannelIDs:  req.ChannelIDs,
		IsActive:    req.IsActive,
		Schedule:    req.Schedule,
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), tenant, id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toRuleResponse(rule))
}

func (h *RuleHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ruleService.DeleteRule(c.Request.Context(), tenant, id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Test прогоняет текст через правило без сохранения результата.
// Промпт и порог из тела позволяют проверить черновик до записи.
func (h *RuleHandler) Test(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req testRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	rule, err := h.ruleService.GetRule(c.Request.Context(), tenant, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	prompt := rule.Prompt
	if req.Prompt != nil {
		prompt = *req.Prompt
	}

	threshold := rule.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}

	result, err := h.ruleService.TestRule(c.Request.Context(), prompt, threshold, req.Text)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_match":          result.IsMatch,
		"confidence":        result.Confidence,
		"reasoning":         result.Reasoning,
		"would_create_lead": result.WouldMatch,
	})
}

type ruleResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Prompt      string  `json:"prompt"`
	Threshold   float64 `json:"threshold"`
	ChannelIDs  []int64 `json:"channel_ids"`
	IsActive    bool    `json:"is_active"`
	Schedule    string  `json:"schedule"`
	Generation  int64   `json:"generation"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toRuleResponse(rule *models.Rule) ruleResponse {
	return ruleResponse{
		ID:          rule.ID,
		Name:        rule.Name,
		Description: rule.Description,
		Prompt:      rule.Prompt,
		Threshold:   rule.Threshold,
		ChannelIDs:  rule.ChannelIDs,
		IsActive:    rule.IsActive,
		Schedule:    rule.Schedule,
		Generation:  rule.Generation,
		CreatedAt:   rule.CreatedAt.Format(timeFormat),
		UpdatedAt:   rule.UpdatedAt.Format(timeFormat),
	}
}
