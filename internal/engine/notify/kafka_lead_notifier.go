package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

type KafkaLeadNotifier struct {
	producer    *kafka.Writer
	dlqProducer *kafka.Writer
	logger      *slog.Logger
	eventTopic  string
	dlqTopic    string
}

func NewKafkaLeadNotifier(brokers []string, eventTopic, dlqTopic string, logger *slog.Logger) *KafkaLeadNotifier {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        eventTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	dlqProducer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &KafkaLeadNotifier{
		producer:    producer,
		dlqProducer: dlqProducer,
		logger:      logger,
		eventTopic:  eventTopic,
		dlqTopic:    dlqTopic,
	}
}

func (n *KafkaLeadNotifier) PublishLeadEvent(ctx context.Context, event *models.LeadEvent) error {
	n.logger.Info("Отправка события о лиде в Kafka",
		"kind", event.Kind,
		"leadId", event.LeadID,
		"tenantId", event.TenantID,
		"topic", n.eventTopic,
	)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации события: %w", err)
	}

	// Ключ — арендатор: события одного арендатора сохраняют порядок.
	err = n.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.TenantID)),
		Value: value,
		Time:  time.Now(),
	})

	if err != nil {
		metrics.RecordLeadEventPublished("kafka", "error")

		n.logger.Error("Ошибка при отправке события в Kafka",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке события в Kafka: %w", err)
	}

	metrics.RecordLeadEventPublished("kafka", "success")

	return nil
}

func (n *KafkaLeadNotifier) SendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	n.logger.Info("Отправка события в DLQ",
		"error", errMsg,
		"topic", n.dlqTopic,
	)

	err := n.dlqProducer.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})

	if err != nil {
		n.logger.Error("Ошибка при отправке события в DLQ",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке события в DLQ: %w", err)
	}

	return nil
}

func (n *KafkaLeadNotifier) Close() error {
	if err := n.producer.Close(); err != nil {
		return err
	}

	return n.dlqProducer.Close()
}
