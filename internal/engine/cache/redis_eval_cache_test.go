package cache_test

import (
	"context"
	"testing"
	"time"

	"log/slog"
	"os"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisEvalCache(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционный тест в коротком режиме")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	redisC, redisPort := startRedisContainer(t)
	defer func() {
		if err := redisC.Terminate(context.Background()); err != nil {
			t.Logf("Ошибка при остановке Redis контейнера: %v", err)
		}
	}()

	ctx := context.Background()
	redisURL := "localhost:" + redisPort

	evalCache, err := cache.NewRedisEvalCache(ctx, redisURL, "", 0, 30*time.Second, 2*time.Second, logger)
	require.NoError(t, err)

	defer evalCache.Close()

	t.Run("кэш оценок LLM", func(t *testing.T) {
		key := "eval:rule:1:gen:2:msg:hash"

		cached, err := evalCache.GetEvaluation(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, cached)

		result := &models.EvaluationResult{
			IsMatch:    true,
			Confidence: 0.87,
			Reasoning:  "прямой запрос на услугу",
			Entities: &models.ExtractedEntities{
				Keywords: []string{"интеграция", "api"},
				Summary:  "Заказ на интеграцию",
			},
		}
		require.NoError(t, evalCache.SetEvaluation(ctx, key, result))

		cached, err = evalCache.GetEvaluation(ctx, key)
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.True(t, cached.IsMatch)
		assert.InDelta(t, 0.87, cached.Confidence, 0.001)
		assert.Equal(t, result.Reasoning, cached.Reasoning)
		require.NotNil(t, cached.Entities)
		assert.Equal(t, result.Entities.Keywords, cached.Entities.Keywords)
	})

	t.Run("claim пары идемпотентен до истечения TTL", func(t *testing.T) {
		claimed, err := evalCache.ClaimTask(ctx, 100, 10)
		require.NoError(t, err)
		assert.True(t, claimed)

		claimed, err = evalCache.ClaimTask(ctx, 100, 10)
		require.NoError(t, err)
		assert.False(t, claimed, "вторая попытка до освобождения должна отклоняться")

		require.NoError(t, evalCache.ReleaseClaim(ctx, 100, 10))

		claimed, err = evalCache.ClaimTask(ctx, 100, 10)
		require.NoError(t, err)
		assert.True(t, claimed)

		// Истёкший claim освобождает пару без явного Release.
		time.Sleep(3 * time.Second)

		claimed, err = evalCache.ClaimTask(ctx, 100, 10)
		require.NoError(t, err)
		assert.True(t, claimed)
	})

	t.Run("версия области правил монотонно растёт", func(t *testing.T) {
		before, err := evalCache.ScopeVersion(ctx)
		require.NoError(t, err)

		require.NoError(t, evalCache.BumpScopeVersion(ctx))
		require.NoError(t, evalCache.BumpScopeVersion(ctx))

		after, err := evalCache.ScopeVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, before+2, after)
	})
}

func startRedisContainer(t *testing.T) (container testcontainers.Container, port string) {
	ctx := context.Background()

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)

	mappedPort, err := redisC.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return redisC, mappedPort.Port()
}
