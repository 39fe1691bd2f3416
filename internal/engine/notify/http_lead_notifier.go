package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"

	"github.com/leadstream-dev/go-leadstream/internal/common/httputil"
	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

// HTTPLeadNotifier доставляет события о лидах напрямую в API-сервис,
// минуя брокер. Используется как резервный транспорт.
type HTTPLeadNotifier struct {
	client  *resty.Client
	baseURL string
	token   string
	logger  *slog.Logger
}

func NewHTTPLeadNotifier(baseURL string, cfg *config.Config, logger *slog.Logger) *HTTPLeadNotifier {
	if baseURL == "" {
		baseURL = "http://leadstream_api:8080"
	}

	client := httputil.CreateResilientHTTPClient(cfg, logger, "api_service")

	return &HTTPLeadNotifier{
		client:  client,
		baseURL: baseURL,
		token:   cfg.InternalAPIToken,
		logger:  logger,
	}
}

func (n *HTTPLeadNotifier) PublishLeadEvent(ctx context.Context, event *models.LeadEvent) error {
	n.logger.Info("Отправка события о лиде по HTTP",
		"kind", event.Kind,
		"leadId", event.LeadID,
		"tenantId", event.TenantID,
	)

	request := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(event)

	if n.token != "" {
		request.SetHeader("X-Internal-Token", n.token)
	}

	resp, err := request.Post(n.baseURL + "/internal/lead-events")
	if err != nil {
		metrics.RecordLeadEventPublished("http", "error")
		return fmt.Errorf("ошибка при отправке события в API: %w", err)
	}

	if !resp.IsSuccess() {
		metrics.RecordLeadEventPublished("http", "error")
		return fmt.Errorf("API вернул статус: %d", resp.StatusCode())
	}

	metrics.RecordLeadEventPublished("http", "success")

	return nil
}
