package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/api/clients/kafka"
	"github.com/leadstream-dev/go-leadstream/internal/api/email"
	"github.com/leadstream-dev/go-leadstream/internal/api/handler"
	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	"github.com/leadstream-dev/go-leadstream/internal/api/telegram"
	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/config"
	"github.com/leadstream-dev/go-leadstream/internal/database"
	"github.com/leadstream-dev/go-leadstream/internal/engine/cache"
	"github.com/leadstream-dev/go-leadstream/internal/engine/clients"
	"github.com/leadstream-dev/go-leadstream/internal/engine/llm"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
	"github.com/leadstream-dev/go-leadstream/pkg"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска сервиса: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	appLogger := pkg.NewLogger(os.Stdout)

	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	emailSender := email.NewSMTPSender(cfg, appLogger)

	var bot *telegram.Bot

	var telegramSender service.TelegramSender

	if cfg.TelegramBotToken != "" {
		bot, err = telegram.NewBot(cfg.TelegramBotToken, repos.Users, appLogger)
		if err != nil {
			appLogger.Error("Ошибка при создании Telegram-бота",
				"error", err,
			)

			appLogger.Warn("Продолжаем без Telegram-уведомлений")
		} else {
			telegramSender = bot
			bot.Start()
		}
	} else {
		appLogger.Info("Токен Telegram-бота не задан, уведомления в Telegram отключены")
	}

	dispatcher := service.NewDispatcherService(repos.Users, repos.Notifications, emailSender, telegramSender, appLogger)

	gateway := clients.NewTelegramGatewayClient(cfg.TelegramGatewayURL, cfg.TelegramGatewayToken, cfg, appLogger)

	evaluator := llm.NewOpenAIEvaluator(cfg, evalCache, appLogger)

	services := &handler.Services{
		Rules:         service.NewRuleService(repos.Rules, repos.Progress, repos.Subscriptions, evalCache, evaluator, txManager, appLogger),
		Leads:         service.NewLeadService(repos.Leads, repos.Users, dispatcher, appLogger),
		Subscriptions: service.NewSubscriptionService(repos.Subscriptions, repos.Accounts, repos.Channels, evalCache, appLogger),
		Accounts:      service.NewAccountService(repos.Accounts, gateway, appLogger),
		Analytics:     service.NewAnalyticsService(repos.Analytics, appLogger),
		Notifications: service.NewNotificationService(repos.Notifications, appLogger),
		Users:         service.NewUserService(repos.Users, appLogger),
		EventSink:     dispatcher,
	}

	router := handler.NewRouter(ctx, cfg, services, appLogger)

	consumer := kafka.NewConsumer(
		strings.Split(cfg.KafkaBrokers, ","),
		"leadstream-api",
		cfg.TopicLeadEvents,
		cfg.TopicDeadLetterQueue,
		dispatcher,
		appLogger,
	)

	consumer.Start(ctx)

	metricsServer := metrics.NewMetricsServer(cfg.APIMetricsPort, appLogger)

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка при запуске сервера метрик",
				"error", err,
			)
		}
	}()

	httpServer := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.APIServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCh := make(chan struct{})

	startHTTPServer(httpServer, cfg.APIServerPort, stopCh, appLogger)

	<-stopCh
	appLogger.Info("Получен сигнал завершения")

	cancel()

	if bot != nil {
		bot.Stop()
	}

	if err := consumer.Close(); err != nil {
		appLogger.Error("Ошибка при остановке Kafka-консьюмера", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Ошибка при остановке HTTP сервера",
			"error", err,
		)
	}

	appLogger.Info("Сервер успешно остановлен")

	return nil
}

func startHTTPServer(server *http.Server, port int, stopCh chan struct{}, appLogger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLogger.Info("Получен системный сигнал",
			"signal", sig.String(),
		)
		close(stopCh)
	}()

	go func() {
		appLogger.Info("Запуск HTTP сервера API",
			"port", port,
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Ошибка при запуске HTTP сервера",
				"error", err,
			)
			close(stopCh)
		}
	}()
}
