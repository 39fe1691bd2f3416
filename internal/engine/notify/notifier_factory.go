package notify

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type LeadNotifier interface {
	PublishLeadEvent(ctx context.Context, event *models.LeadEvent) error
}

type NotifierType string

const (
	HTTPNotifier  NotifierType = "HTTP"
	KafkaNotifier NotifierType = "KAFKA"
)

type NotifierFactory struct {
	config *config.Config
	logger *slog.Logger
}

func NewNotifierFactory(config *config.Config, logger *slog.Logger) *NotifierFactory {
	return &NotifierFactory{
		config: config,
		logger: logger,
	}
}

// CreateNotifier собирает транспорт по MESSAGE_TRANSPORT и, если задан
// FALLBACK_TRANSPORT, оборачивает его в каскад с резервом.
func (f *NotifierFactory) CreateNotifier() (LeadNotifier, error) {
	primary, err := f.createByType(f.config.MessageTransport)
	if err != nil {
		return nil, err
	}

	if f.config.FallbackTransport == "" ||
		strings.EqualFold(f.config.FallbackTransport, f.config.MessageTransport) {
		return primary, nil
	}

	secondary, err := f.createByType(f.config.FallbackTransport)
	if err != nil {
		return nil, err
	}

	return NewFallbackLeadNotifier(primary, secondary, f.logger), nil
}

func (f *NotifierFactory) createByType(transport string) (LeadNotifier, error) {
	notifierType := NotifierType(strings.ToUpper(transport))

	f.logger.Info("Создание нотификатора",
		"type", notifierType,
	)

	switch notifierType {
	case HTTPNotifier:
		return NewHTTPLeadNotifier(f.config.APIBaseURL, f.config, f.logger), nil
	case KafkaNotifier:
		brokers := strings.Split(f.config.KafkaBrokers, ",")
		return NewKafkaLeadNotifier(brokers, f.config.TopicLeadEvents, f.config.TopicDeadLetterQueue, f.logger), nil
	default:
		return nil, &errors.ErrUnknownTransport{Transport: transport}
	}
}
