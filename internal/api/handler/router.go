package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/common/middleware"
	"github.com/leadstream-dev/go-leadstream/internal/config"
)

type Services struct {
	Rules         *service.RuleService
	Leads         *service.LeadService
	Subscriptions *service.SubscriptionService
	Accounts      *service.AccountService
	Analytics     *service.AnalyticsService
	Notifications *service.NotificationService
	Users         *service.UserService
	EventSink     service.LeadEventSink
}

func NewRouter(ctx context.Context, cfg *config.Config, services *Services, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.NewMetricsMiddleware("api").Handler())
	router.Use(middleware.NewRateLimiterMiddleware(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow, logger).Handler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	NewRuleHandler(services.Rules, logger).Register(api)
	NewLeadHandler(services.Leads, logger).Register(api)
	NewSubscriptionHandler(services.Subscriptions, logger).Register(api)
	NewAccountHandler(services.Accounts, logger).Register(api)
	NewAnalyticsHandler(services.Analytics, logger).Register(api)
	NewNotificationHandler(services.Notifications, logger).Register(api)
	NewUserHandler(services.Users, logger).Register(api)

	NewInternalHandler(services.EventSink, cfg.InternalAPIToken, logger).Register(router)

	return router
}
