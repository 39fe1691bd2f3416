package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	logger           *slog.Logger
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, logger *slog.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           logger,
	}
}

func (h *AnalyticsHandler) Register(group *gin.RouterGroup) {
	group.GET("/analytics/summary", h.Summary)
	group.GET("/analytics/leads-time-series", h.LeadsTimeSeries)
	group.GET("/analytics/conversion-funnel", h.Funnel)
	group.GET("/analytics/channel-performance", h.Channels)
	group.GET("/analytics/rule-performance", h.Rules)
	group.GET("/analytics/activity-trends", h.Trends)
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	periodDays := 30
	if raw := c.Query("period_days"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "некорректный период"})
			return
		}

		periodDays = value
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), tenant, periodDays)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *AnalyticsHandler) LeadsTimeSeries(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	var from, to time.Time

	for name, dst := range map[string]*time.Time{"from": &from, "to": &to} {
		if raw := c.Query(name); raw != "" {
			value, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "некорректная дата", "details": err.Error()})
				return
			}

			*dst = value
		}
	}

	points, err := h.analyticsService.LeadsTimeSeries(c.Request.Context(), tenant, c.Query("granularity"), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"points": points})
}

func (h *AnalyticsHandler) Funnel(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	stages, err := h.analyticsService.Funnel(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

func (h *AnalyticsHandler) Channels(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	channels, err := h.analyticsService.ChannelPerformance(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *AnalyticsHandler) Rules(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	rules, err := h.analyticsService.RulePerformance(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	tenant, ok := tenantID(c)
	if !ok {
		return
	}

	trends, err := h.analyticsService.Trends(c.Request.Context(), tenant)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, trends)
}
