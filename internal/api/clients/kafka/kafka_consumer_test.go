package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	kafkaClient "github.com/leadstream-dev/go-leadstream/internal/api/clients/kafka"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	segkafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

type MockEventHandler struct {
	events []*models.LeadEvent
	mu     sync.Mutex
}

func (m *MockEventHandler) HandleLeadEvent(_ context.Context, event *models.LeadEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	slog.Info("MockEventHandler: получено событие", slog.String("kind", string(event.Kind)), slog.Int64("leadId", event.LeadID))
	m.events = append(m.events, event)

	return nil
}

func (m *MockEventHandler) findByLeadID(leadID int64) *models.LeadEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, event := range m.events {
		if event.LeadID == leadID {
			return event
		}
	}

	return nil
}

func createTopicsAdmin(ctx context.Context, brokers []string, topics ...string) error {
	logger := slog.Default().With(slog.String("component", "createTopicsAdmin"))

	topicConfigs := make([]segkafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		topicConfigs = append(topicConfigs, segkafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		})
	}

	transport := &segkafka.Transport{
		DialTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}
	defer transport.CloseIdleConnections()

	client := &segkafka.Client{
		Addr:      segkafka.TCP(brokers...),
		Timeout:   30 * time.Second,
		Transport: transport,
	}

	deadline := time.Now().Add(90 * time.Second)

	var lastErr error

	for attempt := 1; time.Now().Before(deadline); attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("контекст отменен во время создания топиков: %w", ctx.Err())
		default:
		}

		createCtx, createCancel := context.WithTimeout(ctx, 25*time.Second)
		resp, err := client.CreateTopics(createCtx, &segkafka.CreateTopicsRequest{
			Topics: topicConfigs,
		})

		createCancel()

		if err != nil {
			lastErr = err

			logger.Warn("Ошибка при вызове CreateTopics", slog.Int("attempt", attempt), slog.Any("error", err))
			time.Sleep(5 * time.Second)

			continue
		}

		allReady := true

		for topicName, topicErr := range resp.Errors {
			if topicErr != nil && !errors.Is(topicErr, segkafka.TopicAlreadyExists) {
				lastErr = fmt.Errorf("ошибка создания топика %s: %w", topicName, topicErr)
				logger.Warn(lastErr.Error())

				allReady = false
			}
		}

		if allReady {
			logger.Info("Все запрошенные топики созданы или уже существовали")
			return nil
		}

		time.Sleep(5 * time.Second)
	}

	return fmt.Errorf("не удалось создать топики %v: %w", topics, lastErr)
}

func TestKafkaConsumerMock(t *testing.T) {
	eventHandler := &MockEventHandler{
		events: make([]*models.LeadEvent, 0),
	}

	event := &models.LeadEvent{
		Kind:       models.NotificationLeadCreated,
		TenantID:   1,
		LeadID:     123,
		RuleID:     10,
		RuleName:   "Поиск заказов",
		ChannelID:  5,
		Channel:    "freelance_ru",
		Score:      0.85,
		OccurredAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	err := eventHandler.HandleLeadEvent(context.Background(), event)
	require.NoError(t, err)

	received := eventHandler.findByLeadID(123)
	require.NotNil(t, received)
	assert.Equal(t, models.NotificationLeadCreated, received.Kind)
	assert.Equal(t, int64(1), received.TenantID)
}

func TestKafkaIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в режиме short")
	}

	logHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	ctx := context.Background()

	kafkaContainer, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "Не удалось запустить контейнер Kafka")

	defer func() {
		termCtx, termCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer termCancel()

		if err := kafkaContainer.Terminate(termCtx); err != nil {
			logger.Error("Ошибка при остановке контейнера Kafka", slog.Any("error", err))
		}
	}()

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "Не удалось получить адрес брокеров Kafka")
	require.NotEmpty(t, kafkaBrokers)

	topicLeadEvents := fmt.Sprintf("test-lead-events-%d", time.Now().UnixNano())
	topicDeadLetterQueue := fmt.Sprintf("test-dlq-%d", time.Now().UnixNano())

	createCtx, createCancel := context.WithTimeout(ctx, 95*time.Second)
	defer createCancel()

	err = createTopicsAdmin(createCtx, kafkaBrokers, topicLeadEvents, topicDeadLetterQueue)
	require.NoError(t, err, "Не удалось создать топики через AdminClient")

	writer := &segkafka.Writer{
		Addr:         segkafka.TCP(kafkaBrokers...),
		Topic:        topicLeadEvents,
		Balancer:     &segkafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 15 * time.Second,
		RequiredAcks: segkafka.RequireOne,
	}

	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("Ошибка при закрытии Kafka writer", slog.Any("error", err))
		}
	}()

	eventHandler := &MockEventHandler{
		events: make([]*models.LeadEvent, 0),
	}

	consumerGroupID := fmt.Sprintf("test-group-%d", time.Now().UnixNano())
	consumer := kafkaClient.NewConsumer(
		kafkaBrokers,
		consumerGroupID,
		topicLeadEvents,
		topicDeadLetterQueue,
		eventHandler,
		logger,
	)

	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("Ошибка при закрытии Kafka consumer", slog.Any("error", err))
		}
	}()

	consumerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	consumer.Start(consumerCtx)

	logger.Info("Ожидание запуска и стабилизации консьюмера (5 секунд)...")
	time.Sleep(5 * time.Second)

	occurredAt := time.Now().UTC().Truncate(time.Millisecond)
	event := &models.LeadEvent{
		Kind:       models.NotificationLeadCreated,
		TenantID:   1,
		LeadID:     910,
		RuleID:     10,
		RuleName:   "Поиск заказов на интеграции",
		ChannelID:  5,
		Channel:    "freelance_ru",
		Score:      0.91,
		OccurredAt: occurredAt,
	}

	jsonData, err := json.Marshal(event)
	require.NoError(t, err)

	sendCtx, sendCancel := context.WithTimeout(ctx, 20*time.Second)
	defer sendCancel()

	err = writer.WriteMessages(sendCtx, segkafka.Message{
		Key:   []byte(fmt.Sprintf("lead-%d", event.LeadID)),
		Value: jsonData,
		Time:  time.Now(),
	})
	require.NoError(t, err, "Ошибка при отправке события в Kafka")

	// Невалидное событие должно уйти в DLQ, не ломая консьюмер.
	err = writer.WriteMessages(sendCtx, segkafka.Message{
		Key:   []byte("broken"),
		Value: []byte("{не json"),
		Time:  time.Now(),
	})
	require.NoError(t, err)

	receiveDeadline := time.Now().Add(30 * time.Second)

	var received *models.LeadEvent

	for time.Now().Before(receiveDeadline) {
		received = eventHandler.findByLeadID(event.LeadID)
		if received != nil {
			break
		}

		time.Sleep(500 * time.Millisecond)
	}

	require.NotNil(t, received, "Событие LeadID=%d не было получено обработчиком", event.LeadID)
	assert.Equal(t, event.Kind, received.Kind)
	assert.Equal(t, event.TenantID, received.TenantID)
	assert.Equal(t, event.RuleName, received.RuleName)
	assert.InDelta(t, event.Score, received.Score, 0.001)
	assert.Equal(t, occurredAt, received.OccurredAt.UTC().Truncate(time.Millisecond))

	dlqReader := segkafka.NewReader(segkafka.ReaderConfig{
		Brokers:  kafkaBrokers,
		GroupID:  consumerGroupID + "-dlq",
		Topic:    topicDeadLetterQueue,
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	defer func() {
		if err := dlqReader.Close(); err != nil {
			logger.Error("Ошибка при закрытии DLQ reader", slog.Any("error", err))
		}
	}()

	dlqCtx, dlqCancel := context.WithTimeout(ctx, 30*time.Second)
	defer dlqCancel()

	dlqMsg, err := dlqReader.ReadMessage(dlqCtx)
	require.NoError(t, err, "Невалидное событие должно попасть в DLQ")
	assert.Equal(t, []byte("{не json"), dlqMsg.Value)

	cancel()
}
