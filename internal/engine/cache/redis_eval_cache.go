package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
)

const scopeVersionKey = "rules:scope:version"

// RedisEvalCache хранит ответы LLM, claim-ключи на пары (сообщение, правило)
// и версию области действия правил.
type RedisEvalCache struct {
	client   *redis.Client
	llmTTL   time.Duration
	claimTTL time.Duration
	logger   *slog.Logger
}

func NewRedisEvalCache(
	ctx context.Context,
	redisURL, password string,
	db int,
	llmTTL, claimTTL time.Duration,
	logger *slog.Logger,
) (*RedisEvalCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     redisURL,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка при подключении к Redis: %w", err)
	}

	logger.Info("Соединение с Redis для кэша оценок успешно установлено")

	return &RedisEvalCache{
		client:   client,
		llmTTL:   llmTTL,
		claimTTL: claimTTL,
		logger:   logger,
	}, nil
}

func (c *RedisEvalCache) GetEvaluation(ctx context.Context, key string) (*models.EvaluationResult, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("ошибка при получении оценки из Redis: %w", err)
	}

	var result models.EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("ошибка при десериализации оценки из Redis: %w", err)
	}

	return &result, nil
}

func (c *RedisEvalCache) SetEvaluation(ctx context.Context, key string, result *models.EvaluationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации оценки для Redis: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.llmTTL).Err(); err != nil {
		return fmt.Errorf("ошибка при сохранении оценки в Redis: %w", err)
	}

	return nil
}

// ClaimTask пытается захватить пару (сообщение, правило) на время оценки.
// Возвращает false, если пара уже захвачена другим воркером.
func (c *RedisEvalCache) ClaimTask(ctx context.Context, messageID, ruleID int64) (bool, error) {
	key := fmt.Sprintf("eval:claim:%d:%d", messageID, ruleID)

	acquired, err := c.client.SetNX(ctx, key, 1, c.claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка при захвате задачи в Redis: %w", err)
	}

	return acquired, nil
}

func (c *RedisEvalCache) ReleaseClaim(ctx context.Context, messageID, ruleID int64) error {
	key := fmt.Sprintf("eval:claim:%d:%d", messageID, ruleID)

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("ошибка при освобождении задачи в Redis: %w", err)
	}

	return nil
}

// ScopeVersion возвращает текущую версию области действия правил.
// Отсутствующий ключ означает версию 0.
func (c *RedisEvalCache) ScopeVersion(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, scopeVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, fmt.Errorf("ошибка при получении версии области правил из Redis: %w", err)
	}

	return version, nil
}

// BumpScopeVersion сигнализирует планировщику, что набор правил или
// подписок изменился и кэшированную область нужно перечитать.
func (c *RedisEvalCache) BumpScopeVersion(ctx context.Context) error {
	if err := c.client.Incr(ctx, scopeVersionKey).Err(); err != nil {
		return fmt.Errorf("ошибка при инкременте версии области правил в Redis: %w", err)
	}

	return nil
}

func (c *RedisEvalCache) Close() error {
	return c.client.Close()
}
