package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/service"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

type Collector interface {
	CollectAll(ctx context.Context) error
}

type TaskProcessor interface {
	ProcessTask(ctx context.Context, task *models.EvaluationTask) (service.TaskOutcome, error)
}

// TaskClaimer обеспечивает эксклюзивность обработки пары между
// несколькими экземплярами движка.
type TaskClaimer interface {
	ClaimTask(ctx context.Context, messageID, ruleID int64) (bool, error)
	ReleaseClaim(ctx context.Context, messageID, ruleID int64) error
	ScopeVersion(ctx context.Context) (int64, error)
}

type Options struct {
	CollectInterval  time.Duration
	EvalInterval     time.Duration
	BatchSize        int
	Workers          int
	LookbackDays     int
	LookbackMessages int
}

// ParallelScheduler планирует сбор сообщений и циклы оценки.
// Внутри цикла пары (правило, канал) обходятся последовательно,
// сообщения каждой пары оцениваются пулом воркеров.
type ParallelScheduler struct {
	scheduler    *gocron.Scheduler
	collector    Collector
	processor    TaskProcessor
	claimer      TaskClaimer
	ruleRepo     repository.RuleRepository
	progressRepo repository.ProgressRepository
	messageRepo  repository.MessageRepository
	subsRepo     repository.SubscriptionRepository
	opts         Options
	logger       *slog.Logger

	scopeMu      sync.Mutex
	scopeVersion int64
	scopeCache   map[int64][]int64
}

func NewParallelScheduler(
	collector Collector,
	processor TaskProcessor,
	claimer TaskClaimer,
	ruleRepo repository.RuleRepository,
	progressRepo repository.ProgressRepository,
	messageRepo repository.MessageRepository,
	subsRepo repository.SubscriptionRepository,
	opts Options,
	logger *slog.Logger,
) *ParallelScheduler {
	return &ParallelScheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		collector:    collector,
		processor:    processor,
		claimer:      claimer,
		ruleRepo:     ruleRepo,
		progressRepo: progressRepo,
		messageRepo:  messageRepo,
		subsRepo:     subsRepo,
		opts:         opts,
		logger:       logger,
		scopeVersion: -1,
		scopeCache:   make(map[int64][]int64),
	}
}

func (s *ParallelScheduler) Start() {
	s.logger.Info("Запуск планировщика движка",
		"collectInterval", s.opts.CollectInterval.String(),
		"evalInterval", s.opts.EvalInterval.String(),
		"workers", s.opts.Workers,
	)

	_, err := s.scheduler.Every(s.opts.CollectInterval).Do(func() {
		ctx := context.Background()
		if err := s.collector.CollectAll(ctx); err != nil {
			s.logger.Error("Ошибка при сборе сообщений",
				"error", err,
			)
		}
	})
	if err != nil {
		s.logger.Error("Ошибка при настройке задачи сбора",
			"error", err,
		)

		return
	}

	_, err = s.scheduler.Every(s.opts.EvalInterval).Do(func() {
		ctx := context.Background()
		if err := s.RunEvaluationCycle(ctx); err != nil {
			s.logger.Error("Ошибка цикла оценки",
				"error", err,
			)
		}
	})
	if err != nil {
		s.logger.Error("Ошибка при настройке задачи оценки",
			"error", err,
		)

		return
	}

	s.scheduler.StartAsync()
}

func (s *ParallelScheduler) Stop() {
	s.logger.Info("Остановка планировщика движка")
	s.scheduler.Stop()
}

// RunEvaluationCycle обходит активные правила страницами и для каждой
// пары (правило, канал) оценивает очередную порцию сообщений.
func (s *ParallelScheduler) RunEvaluationCycle(ctx context.Context) error {
	s.refreshScopeCache(ctx)

	offset := 0

	for {
		rules, err := s.ruleRepo.FindDue(ctx, s.opts.BatchSize, offset)
		if err != nil {
			return err
		}

		if len(rules) == 0 {
			return nil
		}

		for _, rule := range rules {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			s.evaluateRule(ctx, rule)
		}

		if len(rules) < s.opts.BatchSize {
			return nil
		}

		offset += s.opts.BatchSize
	}
}

// refreshScopeCache сбрасывает кэш областей каналов, если версия в
// Redis изменилась (создана или изменена подписка либо правило).
func (s *ParallelScheduler) refreshScopeCache(ctx context.Context) {
	version, err := s.claimer.ScopeVersion(ctx)
	if err != nil {
		s.logger.Warn("Не удалось прочитать версию области правил, кэш сброшен",
			"error", err,
		)

		version = -1
	}

	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()

	if version != s.scopeVersion {
		s.scopeCache = make(map[int64][]int64)
		s.scopeVersion = version
	}
}

func (s *ParallelScheduler) channelScope(ctx context.Context, rule *models.Rule) ([]int64, error) {
	if len(rule.ChannelIDs) > 0 {
		return rule.ChannelIDs, nil
	}

	s.scopeMu.Lock()
	cached, ok := s.scopeCache[rule.TenantID]
	s.scopeMu.Unlock()

	if ok {
		return cached, nil
	}

	channelIDs, err := s.subsRepo.SubscribedChannelIDs(ctx, rule.TenantID)
	if err != nil {
		return nil, err
	}

	s.scopeMu.Lock()
	s.scopeCache[rule.TenantID] = channelIDs
	s.scopeMu.Unlock()

	return channelIDs, nil
}

func (s *ParallelScheduler) evaluateRule(ctx context.Context, rule *models.Rule) {
	channelIDs, err := s.channelScope(ctx, rule)
	if err != nil {
		s.logger.Error("Ошибка при определении области каналов правила",
			"error", err,
			"ruleId", rule.ID,
		)

		return
	}

	for _, channelID := range channelIDs {
		if ctx.Err() != nil {
			return
		}

		if err := s.evaluatePair(ctx, rule, channelID); err != nil {
			s.logger.Error("Ошибка при оценке пары правило-канал",
				"error", err,
				"ruleId", rule.ID,
				"channelId", channelID,
			)
		}
	}
}

//nolint:funlen // Обработка порции пары целостная
func (s *ParallelScheduler) evaluatePair(ctx context.Context, rule *models.Rule, channelID int64) error {
	progress, err := s.progressRepo.Find(ctx, rule.ID, channelID)
	if err != nil {
		return err
	}

	var (
		after   *time.Time
		afterID int64
		since   time.Time
		limit   int
		reason  string
	)

	if progress == nil {
		// Новая пара: ограниченный ретроспективный прогон, от старых к новым.
		since = time.Now().AddDate(0, 0, -s.opts.LookbackDays)
		limit = s.opts.LookbackMessages
		reason = "new_pair"
	} else {
		after = progress.LastPostedAt
		afterID = progress.LastMessageID
		limit = s.opts.BatchSize
		reason = "incremental"
	}

	messages, err := s.messageRepo.FindForEvaluation(ctx, channelID, after, afterID, since, limit)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		return nil
	}

	tasks := make([]*models.EvaluationTask, 0, len(messages))
	for _, message := range messages {
		tasks = append(tasks, &models.EvaluationTask{
			MessageID:  message.ID,
			RuleID:     rule.ID,
			ChannelID:  channelID,
			Generation: rule.Generation,
		})

		metrics.RecordTaskScheduled(reason)
	}

	evaluated, leads, transientFailures, stale := s.runWorkers(ctx, tasks)

	// Позиция сдвигается только если порция обработана без временных
	// сбоев, иначе неудавшиеся сообщения будут потеряны.
	if transientFailures > 0 {
		s.logger.Warn("Порция завершилась с временными сбоями, позиция не сдвинута",
			"ruleId", rule.ID,
			"channelId", channelID,
			"failures", transientFailures,
		)

		return nil
	}

	// Устаревшие задачи означают, что правило изменилось во время цикла
	// (UpdateRule уже сбросил прогресс под новое поколение) либо пару
	// держит другой экземпляр. Upsert здесь воскресил бы удалённую
	// позицию и новое поколение не перечитало бы окно ретроспективы.
	if stale > 0 {
		s.logger.Info("В порции есть устаревшие задачи, позиция не сдвинута",
			"ruleId", rule.ID,
			"channelId", channelID,
			"stale", stale,
		)

		return nil
	}

	last := messages[len(messages)-1]
	lastPostedAt := last.PostedAt

	return s.progressRepo.Upsert(ctx, &models.RuleProgress{
		RuleID:            rule.ID,
		ChannelID:         channelID,
		LastMessageID:     last.ID,
		LastPostedAt:      &lastPostedAt,
		MessagesEvaluated: evaluated,
		LeadsCreated:      leads,
	})
}

func (s *ParallelScheduler) runWorkers(ctx context.Context, tasks []*models.EvaluationTask) (evaluated, leads, transientFailures, stale int64) {
	taskCh := make(chan *models.EvaluationTask)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	workers := s.opts.Workers
	if workers < 1 {
		workers = 1
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for task := range taskCh {
				outcome, failed := s.processClaimed(ctx, task)

				mu.Lock()
				switch {
				case failed:
					transientFailures++
				case outcome == service.OutcomeStale:
					stale++
				case outcome == service.OutcomeMatch:
					evaluated++
					leads++
				case outcome != service.OutcomeDiscarded:
					evaluated++
				}
				mu.Unlock()
			}
		}()
	}

	for _, task := range tasks {
		taskCh <- task
	}

	close(taskCh)
	wg.Wait()

	return evaluated, leads, transientFailures, stale
}

// processClaimed захватывает пару, обрабатывает её и освобождает claim.
// Возвращает failed == true только при временном сбое.
func (s *ParallelScheduler) processClaimed(ctx context.Context, task *models.EvaluationTask) (service.TaskOutcome, bool) {
	acquired, err := s.claimer.ClaimTask(ctx, task.MessageID, task.RuleID)
	if err != nil {
		s.logger.Error("Ошибка при захвате задачи",
			"error", err,
			"messageId", task.MessageID,
			"ruleId", task.RuleID,
		)

		return service.OutcomeFailed, true
	}

	if !acquired {
		// Пара уже обрабатывается другим экземпляром: сообщение не
		// оценено нами, позицию за него сдвигать нельзя.
		return service.OutcomeStale, false
	}

	defer func() {
		if err := s.claimer.ReleaseClaim(ctx, task.MessageID, task.RuleID); err != nil {
			s.logger.Warn("Не удалось освободить claim задачи",
				"error", err,
				"messageId", task.MessageID,
				"ruleId", task.RuleID,
			)
		}
	}()

	outcome, err := s.processor.ProcessTask(ctx, task)
	if err != nil {
		return outcome, true
	}

	return outcome, false
}
