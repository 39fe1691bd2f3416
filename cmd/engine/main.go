package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/database"
	"github.com/leadstream-dev/go-leadstream/internal/engine/cache"
	"github.com/leadstream-dev/go-leadstream/internal/engine/clients"
	"github.com/leadstream-dev/go-leadstream/internal/engine/llm"
	"github.com/leadstream-dev/go-leadstream/internal/engine/notify"
	"github.com/leadstream-dev/go-leadstream/internal/engine/scheduler"
	"github.com/leadstream-dev/go-leadstream/internal/engine/service"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
	"github.com/leadstream-dev/go-leadstream/pkg"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска движка: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx := context.Background()

	db, err := database.NewPostgresDB(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Ошибка при подключении к базе данных",
			"error", err,
		)

		return fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	defer db.Close()

	txManager := txs.NewTxManager(db.Pool, appLogger)

	repos, err := repository.NewFactory(db, txManager, cfg, appLogger).CreateRepositories()
	if err != nil {
		appLogger.Error("Ошибка при создании репозиториев",
			"error", err,
		)

		return err
	}

	evalCache, err := cache.NewRedisEvalCache(
		ctx,
		cfg.RedisURL,
		cfg.RedisPassword,
		cfg.RedisDB,
		cfg.LLMCacheTTL,
		cfg.ClaimTTL,
		appLogger,
	)
	if err != nil {
		appLogger.Error("Ошибка при подключении к Redis",
			"error", err,
		)

		return err
	}

	defer func() {
		if err := evalCache.Close(); err != nil {
			appLogger.Error("Ошибка при закрытии соединения с Redis", "error", err)
		}
	}()

	gateway := clients.NewTelegramGatewayClient(cfg.TelegramGatewayURL, cfg.TelegramGatewayToken, cfg, appLogger)

	evaluator := llm.NewOpenAIEvaluator(cfg, evalCache, appLogger)

	notifierFactory := notify.NewNotifierFactory(cfg, appLogger)

	leadNotifier, err := notifierFactory.CreateNotifier()
	if err != nil {
		appLogger.Error("Ошибка при создании нотификатора событий",
			"error", err,
		)

		return err
	}

	collectorService := service.NewCollectorService(
		repos.Channels,
		repos.Messages,
		gateway,
		cfg.DatabaseBatchSize,
		appLogger,
	)

	evaluationService := service.NewEvaluationService(
		repos.Rules,
		repos.Messages,
		repos.Leads,
		repos.Channels,
		repos.Failures,
		evaluator,
		leadNotifier,
		txManager,
		appLogger,
	)

	sch := scheduler.NewParallelScheduler(
		collectorService,
		evaluationService,
		evalCache,
		repos.Rules,
		repos.Progress,
		repos.Messages,
		repos.Subscriptions,
		scheduler.Options{
			CollectInterval:  cfg.CollectInterval,
			EvalInterval:     cfg.EvalInterval,
			BatchSize:        cfg.EvalBatchSize,
			Workers:          cfg.EvalWorkers,
			LookbackDays:     cfg.LookbackDays,
			LookbackMessages: cfg.LookbackMessages,
		},
		appLogger,
	)

	sch.Start()

	metricsServer := metrics.NewMetricsServer(cfg.EngineMetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	waitForShutdown(appLogger)

	sch.Stop()

	if err := metricsServer.Stop(ctx); err != nil {
		appLogger.Error("Ошибка при остановке сервера метрик", "error", err)
	}

	appLogger.Info("Движок успешно остановлен")

	return nil
}

func waitForShutdown(appLogger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	appLogger.Info("Получен системный сигнал",
		"signal", sig.String(),
	)
}
