package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	apierrors "github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

// EventHandler обрабатывает доменные события конвейера на стороне API.
type EventHandler interface {
	HandleLeadEvent(ctx context.Context, event *models.LeadEvent) error
}

type Consumer struct {
	reader       *kafka.Reader
	dlqWriter    *kafka.Writer
	eventHandler EventHandler
	logger       *slog.Logger
	eventTopic   string
	dlqTopic     string
}

func NewConsumer(
	brokers []string,
	groupID string,
	eventTopic string,
	dlqTopic string,
	eventHandler EventHandler,
	logger *slog.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          eventTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: 1 * time.Second,
		Logger:         kafka.LoggerFunc(logger.Debug),
		ErrorLogger:    kafka.LoggerFunc(logger.Error),
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &Consumer{
		reader:       reader,
		dlqWriter:    dlqWriter,
		eventHandler: eventHandler,
		logger:       logger,
		eventTopic:   eventTopic,
		dlqTopic:     dlqTopic,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Запуск потребления событий из Kafka",
		"topic", c.eventTopic,
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Остановка потребления событий из Kafka")
				return
			default:
				msg, err := c.reader.ReadMessage(ctx)
				if err != nil {
					c.logger.Error("Ошибка при чтении события из Kafka",
						"error", err,
					)

					continue
				}

				c.logger.Info("Получено событие из Kafka",
					"topic", msg.Topic,
					"partition", msg.Partition,
					"offset", msg.Offset,
				)

				if err := c.processMessage(ctx, &msg); err != nil {
					c.logger.Error("Ошибка при обработке события",
						"error", err,
					)
				}
			}
		}
	}()
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) error {
	var event models.LeadEvent

	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Ошибка при десериализации события",
			"error", err,
		)

		if sendErr := c.sendToDLQ(ctx, msg.Value, fmt.Sprintf("Ошибка десериализации: %s", err)); sendErr != nil {
			c.logger.Error("Ошибка при отправке события в DLQ",
				"error", sendErr,
			)
		}

		return fmt.Errorf("ошибка при десериализации события: %w", err)
	}

	if event.Kind == "" || event.TenantID == 0 {
		newErr := &apierrors.ErrBadRequest{Message: "событие без kind или tenant_id"}

		c.logger.Error("Событие не прошло валидацию",
			"error", newErr,
		)

		if sendErr := c.sendToDLQ(ctx, msg.Value, newErr.Error()); sendErr != nil {
			c.logger.Error("Ошибка при отправке события в DLQ",
				"error", sendErr,
			)
		}

		return newErr
	}

	if err := c.eventHandler.HandleLeadEvent(ctx, &event); err != nil {
		c.logger.Error("Ошибка при обработке события о лиде",
			"error", err,
		)

		return fmt.Errorf("ошибка при обработке события о лиде: %w", err)
	}

	c.logger.Info("Событие успешно обработано",
		"kind", event.Kind,
		"leadId", event.LeadID,
	)

	return nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Info("Отправка события в DLQ",
		"error", errMsg,
		"topic", c.dlqTopic,
	)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})

	if err != nil {
		c.logger.Error("Ошибка при отправке события в DLQ",
			"error", err,
		)

		return fmt.Errorf("ошибка при отправке события в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}

	return c.dlqWriter.Close()
}
