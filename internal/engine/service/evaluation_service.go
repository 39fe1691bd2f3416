package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/llm"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

// TaskOutcome — итог обработки одной пары (сообщение, правило).
type TaskOutcome string

const (
	OutcomeMatch        TaskOutcome = "match"
	OutcomeNoMatch      TaskOutcome = "no_match"
	OutcomeBelowDoubt   TaskOutcome = "below_threshold"
	OutcomeSkippedEmpty TaskOutcome = "skipped_empty"
	OutcomeDiscarded    TaskOutcome = "discarded"
	// OutcomeStale: задача построена по устаревшему снимку правила
	// (смена поколения или деактивация). Сообщение не оценено, позиция
	// прогресса по такой порции сдвигаться не должна.
	OutcomeStale  TaskOutcome = "stale"
	OutcomeFailed TaskOutcome = "failed"
)

// LeadNotifier публикует доменные события о лидах.
type LeadNotifier interface {
	PublishLeadEvent(ctx context.Context, event *models.LeadEvent) error
}

// EvaluationService выполняет оценку пары (сообщение, правило) и
// материализует лид при совпадении. Ключ идемпотентности — сама пара:
// повторная обработка с тем же поколением правила не создаёт дубликата.
type EvaluationService struct {
	ruleRepo    repository.RuleRepository
	messageRepo repository.MessageRepository
	leadRepo    repository.LeadRepository
	channelRepo repository.ChannelRepository
	failureRepo repository.FailureRepository
	evaluator   llm.Evaluator
	notifier    LeadNotifier
	txManager   Transactor
	logger      *slog.Logger
}

func NewEvaluationService(
	ruleRepo repository.RuleRepository,
	messageRepo repository.MessageRepository,
	leadRepo repository.LeadRepository,
	channelRepo repository.ChannelRepository,
	failureRepo repository.FailureRepository,
	evaluator llm.Evaluator,
	notifier LeadNotifier,
	txManager Transactor,
	logger *slog.Logger,
) *EvaluationService {
	return &EvaluationService{
		ruleRepo:    ruleRepo,
		messageRepo: messageRepo,
		leadRepo:    leadRepo,
		channelRepo: channelRepo,
		failureRepo: failureRepo,
		evaluator:   evaluator,
		notifier:    notifier,
		txManager:   txManager,
		logger:      logger,
	}
}

// ProcessTask возвращает итог обработки. Ошибка возвращается только при
// временном сбое (таймаут LLM, недоступность базы): такая пара будет
// переобработана в следующем цикле, позиция прогресса не сдвигается.
func (s *EvaluationService) ProcessTask(ctx context.Context, task *models.EvaluationTask) (TaskOutcome, error) {
	rule, err := s.ruleRepo.FindByID(ctx, task.RuleID)
	if err != nil {
		return OutcomeFailed, err
	}

	if !rule.IsActive {
		s.logger.Info("Правило деактивировано, задача отброшена",
			"ruleId", task.RuleID,
			"messageId", task.MessageID,
		)
		metrics.RecordTaskEvaluated(string(OutcomeStale))

		return OutcomeStale, nil
	}

	if rule.Generation > task.Generation {
		s.logger.Info("Поколение правила изменилось, задача устарела",
			"ruleId", task.RuleID,
			"messageId", task.MessageID,
			"taskGeneration", task.Generation,
			"ruleGeneration", rule.Generation,
		)
		metrics.RecordTaskEvaluated(string(OutcomeStale))

		return OutcomeStale, nil
	}

	message, err := s.messageRepo.FindByID(ctx, task.MessageID)
	if err != nil {
		return OutcomeFailed, err
	}

	if strings.TrimSpace(message.Text) == "" {
		metrics.RecordTaskEvaluated(string(OutcomeSkippedEmpty))
		return OutcomeSkippedEmpty, nil
	}

	result, err := s.evaluator.Evaluate(ctx, rule.Prompt, message.Text)
	if err != nil {
		return s.handleEvaluationError(ctx, task, err)
	}

	if !result.IsMatch {
		metrics.RecordTaskEvaluated(string(OutcomeNoMatch))
		return OutcomeNoMatch, nil
	}

	if result.Confidence < rule.Threshold {
		metrics.RecordTaskEvaluated(string(OutcomeBelowDoubt))
		return OutcomeBelowDoubt, nil
	}

	outcome, err := s.materializeLead(ctx, task, message, result)
	if err != nil {
		return OutcomeFailed, err
	}

	metrics.RecordTaskEvaluated(string(outcome))

	return outcome, nil
}

// handleEvaluationError разделяет неразбираемые ответы модели
// (фиксируются и считаются обработанными) и временные сбои.
func (s *EvaluationService) handleEvaluationError(ctx context.Context, task *models.EvaluationTask, evalErr error) (TaskOutcome, error) {
	var failure *errors.ErrEvaluationFailure
	if stderrors.As(evalErr, &failure) {
		s.logger.Error("Ответ модели не удалось разобрать",
			"messageId", task.MessageID,
			"ruleId", task.RuleID,
			"reason", failure.Reason,
		)

		if err := s.failureRepo.Save(ctx, &models.EvaluationFailure{
			MessageID:   task.MessageID,
			RuleID:      task.RuleID,
			Reason:      failure.Reason,
			RawResponse: failure.RawResponse,
		}); err != nil {
			s.logger.Error("Не удалось сохранить запись об ошибке оценки", "error", err)
		}

		metrics.RecordTaskFailed("unparseable_response")

		return OutcomeFailed, nil
	}

	var timeout *errors.ErrLLMTimeout
	if stderrors.As(evalErr, &timeout) {
		metrics.RecordTaskFailed("llm_timeout")
	} else {
		metrics.RecordTaskFailed("transient")
	}

	return OutcomeFailed, evalErr
}

//nolint:funlen // Транзакция материализации целостная
func (s *EvaluationService) materializeLead(
	ctx context.Context,
	task *models.EvaluationTask,
	message *models.Message,
	result *models.EvaluationResult,
) (TaskOutcome, error) {
	entities, err := s.evaluator.ExtractEntities(ctx, message.Text)
	if err != nil {
		s.logger.Warn("Извлечение сущностей не удалось, лид будет создан без них",
			"error", err,
			"messageId", task.MessageID,
		)
	}

	var created *models.Lead

	outcome := OutcomeDiscarded

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		rule, err := s.ruleRepo.FindByID(ctx, task.RuleID)
		if err != nil {
			return err
		}

		// Правило могли деактивировать, пока шла оценка.
		if !rule.IsActive {
			return nil
		}

		existing, err := s.leadRepo.FindActual(ctx, task.MessageID, task.RuleID)
		if err != nil {
			return err
		}

		if existing != nil {
			if existing.Generation >= task.Generation {
				return nil
			}

			if err := s.leadRepo.Supersede(ctx, existing.ID, task.Generation); err != nil {
				return err
			}
		}

		lead := &models.Lead{
			TenantID:   rule.TenantID,
			MessageID:  task.MessageID,
			RuleID:     task.RuleID,
			Score:      result.Confidence,
			Reasoning:  result.Reasoning,
			Entities:   entities,
			Status:     models.LeadStatusNew,
			Generation: task.Generation,
		}

		if err := s.leadRepo.Save(ctx, lead); err != nil {
			var duplicate *errors.ErrDuplicateLead
			if stderrors.As(err, &duplicate) {
				s.logger.Info("Лид уже создан параллельным воркером",
					"messageId", task.MessageID,
					"ruleId", task.RuleID,
				)

				return nil
			}

			return err
		}

		created = lead
		outcome = OutcomeMatch

		return nil
	})

	if err != nil {
		return OutcomeFailed, err
	}

	if created == nil {
		return outcome, nil
	}

	metrics.RecordLeadCreated()

	s.publishLeadCreated(ctx, created, task)

	return OutcomeMatch, nil
}

func (s *EvaluationService) publishLeadCreated(ctx context.Context, lead *models.Lead, task *models.EvaluationTask) {
	event := &models.LeadEvent{
		Kind:       models.NotificationLeadCreated,
		TenantID:   lead.TenantID,
		LeadID:     lead.ID,
		RuleID:     lead.RuleID,
		ChannelID:  task.ChannelID,
		Score:      lead.Score,
		OccurredAt: time.Now(),
	}

	if rule, err := s.ruleRepo.FindByID(ctx, lead.RuleID); err == nil {
		event.RuleName = rule.Name
	}

	if channel, err := s.channelRepo.FindByID(ctx, task.ChannelID); err == nil {
		event.Channel = channel.Title
	}

	if err := s.notifier.PublishLeadEvent(ctx, event); err != nil {
		s.logger.Error("Не удалось опубликовать событие о новом лиде",
			"error", err,
			"leadId", lead.ID,
		)
	}
}
