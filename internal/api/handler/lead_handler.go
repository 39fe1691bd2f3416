package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type updateLeadRequest struct {
	Status     *string `json:"status"`
	AssigneeID *int64  `json:"assignee_id"`
}

type LeadHandler struct {
	leadService *service.LeadService
	logger      *slog.Logger
}

func NewLeadHandler(leadService *service.LeadService, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

func (h *LeadHandler) Register(group *gin.RouterGroup) {
	group.GET("/leads", h.List)
	group.GET("/leads/stats", h.Stats)
	group.GET("/leads/export/csv", h.Export)
	group.GET("/leads/:id", h.Get)
	group.PATCH("/leads/:id", h.Update)
	group.DELETE("/leads/:id", h.Delete)
}

func (h *LeadHandler) List(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	filter, err := leadFilterFromQuery(c, tenant)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректные параметры фильтра", "details": err.Error()})
		return
	}

	leads, total, err := h.leadService.ListLeads(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	items := make([]leadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	c.JSON(http.StatusOK, gin.H{
		"leads": items,
		"total": total,
		"skip":  filter.Skip,
		"limit": filter.Limit,
	})
}

func (h *LeadHandler) Get(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.leadService.GetLead(c.Request.Context(), tenant, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toLeadDetailResponse(detail))
}

func (h *LeadHandler) Update(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректное тело запроса", "details": err.Error()})
		return
	}

	lead, err := h.leadService.UpdateLead(c.Request.Context(), tenant, id, &service.LeadPatch{
		Status:     req.Status,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toLeadResponse(lead))
}

func (h *LeadHandler) Delete(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.leadService.DeleteLead(c.Request.Context(), tenant, id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LeadHandler) Stats(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	stats, err := h.leadService.Stats(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":        stats.Total,
		"by_status":    stats.ByStatus,
		"by_rule":      stats.ByRule,
		"by_channel":   stats.ByChannel,
		"avg_score":    stats.AvgScore,
		"recent_count": stats.RecentCount,
	})
}

func (h *LeadHandler) Export(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	filter, err := leadFilterFromQuery(c, tenant)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "некорректные параметры фильтра", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)

	if err := h.leadService.ExportCSV(c.Request.Context(), filter, c.Writer); err != nil {
		h.logger.Error("Ошибка при экспорте лидов", "error", err, "tenantId", tenant)
	}
}

func leadFilterFromQuery(c *gin.Context, tenant int64) (*models.LeadFilter, error) {
	filter := &models.LeadFilter{
		TenantID: tenant,
		Limit:    50,
	}

	if raw := c.Query("status"); raw != "" {
		status := models.LeadStatus(raw)
		filter.Status = &status
	}

	for name, dst := range map[string]**int64{
		"rule_id":     &filter.RuleID,
		"channel_id":  &filter.ChannelID,
		"assignee_id": &filter.AssigneeID,
	} {
		if raw := c.Query(name); raw != "" {
			value, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, err
			}

			*dst = &value
		}
	}

	if raw := c.Query("min_score"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}

		filter.MinScore = &value
	}

	for name, dst := range map[string]**time.Time{
		"date_from": &filter.DateFrom,
		"date_to":   &filter.DateTo,
	} {
		if raw := c.Query(name); raw != "" {
			value, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, err
			}

			*dst = &value
		}
	}

	if raw := c.Query("skip"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}

		if value > 0 {
			filter.Skip = value
		}
	}

	if raw := c.Query("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}

		if value > 0 && value <= 100 {
			filter.Limit = value
		}
	}

	return filter, nil
}

type leadResponse struct {
	ID         int64                      `json:"id"`
	MessageID  int64                      `json:"message_id"`
	RuleID     int64                      `json:"rule_id"`
	Score      float64                    `json:"score"`
	Reasoning  string                     `json:"reasoning"`
	Entities   *models.ExtractedEntities  `json:"entities,omitempty"`
	Status     string                     `json:"status"`
	AssigneeID *int64                     `json:"assignee_id,omitempty"`
	CreatedAt  string                     `json:"created_at"`
	UpdatedAt  string                     `json:"updated_at"`
}

type leadDetailResponse struct {
	leadResponse

	RuleName            string `json:"rule_name"`
	AssigneeName        string `json:"assignee_name,omitempty"`
	ChannelTitle        string `json:"channel_title,omitempty"`
	MessageText         string `json:"message_text,omitempty"`
	MessagePostedAt     string `json:"message_posted_at,omitempty"`
	TelegramMessageLink string `json:"telegram_message_link,omitempty"`
}

func toLeadResponse(lead *models.Lead) leadResponse {
	return leadResponse{
		ID:         lead.ID,
		MessageID:  lead.MessageID,
		RuleID:     lead.RuleID,
		Score:      lead.Score,
		Reasoning:  lead.Reasoning,
		Entities:   lead.Entities,
		Status:     string(lead.Status),
		AssigneeID: lead.AssigneeID,
		CreatedAt:  lead.CreatedAt.Format(timeFormat),
		UpdatedAt:  lead.UpdatedAt.Format(timeFormat),
	}
}

func toLeadDetailResponse(detail *models.LeadDetail) leadDetailResponse {
	resp := leadDetailResponse{
		leadResponse:        toLeadResponse(&detail.Lead),
		RuleName:            detail.RuleName,
		AssigneeName:        detail.AssigneeName,
		TelegramMessageLink: detail.TelegramMessageLink,
	}

	if detail.Channel != nil {
		resp.ChannelTitle = detail.Channel.Title
	}

	if detail.Message != nil {
		resp.MessageText = detail.Message.Text
		resp.MessagePostedAt = detail.Message.PostedAt.Format(timeFormat)
	}

	return resp
}
