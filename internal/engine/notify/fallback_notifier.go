package notify

import (
	"context"
	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type FallbackLeadNotifier struct {
	primary   LeadNotifier
	secondary LeadNotifier
	logger    *slog.Logger
}

func NewFallbackLeadNotifier(primary, secondary LeadNotifier, logger *slog.Logger) *FallbackLeadNotifier {
	return &FallbackLeadNotifier{
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}
}

func (n *FallbackLeadNotifier) PublishLeadEvent(ctx context.Context, event *models.LeadEvent) error {
	err := n.primary.PublishLeadEvent(ctx, event)
	if err == nil {
		return nil
	}

	n.logger.Warn("Основной транспорт недоступен, переключаемся на резервный",
		"primaryError", err,
		"leadId", event.LeadID,
	)

	fallbackErr := n.secondary.PublishLeadEvent(ctx, event)
	if fallbackErr != nil {
		return err
	}

	n.logger.Info("Событие успешно отправлено через резервный транспорт",
		"leadId", event.LeadID,
	)

	return nil
}
