package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

const minPromptLength = 10

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ScopeInvalidator сообщает движку, что область каналов изменилась.
type ScopeInvalidator interface {
	BumpScopeVersion(ctx context.Context) error
}

// RuleEvaluator нужен только для пробного прогона правила по тексту.
type RuleEvaluator interface {
	Evaluate(ctx context.Context, rulePrompt, messageText string) (*models.EvaluationResult, error)
}

type RulePatch struct {
	Name        *string
	Description *string
	Prompt      *string
	Threshold   *float64
	ChannelIDs  *[]int64
	IsActive    *bool
	Schedule    *string
}

// RuleTestResult — вердикт пробного прогона без материализации лида.
type RuleTestResult struct {
	IsMatch    bool
	Confidence float64
	Reasoning  string
	WouldMatch bool
}

type RuleService struct {
	ruleRepo         repository.RuleRepository
	progressRepo     repository.ProgressRepository
	subscriptionRepo repository.SubscriptionRepository
	scopeCache       ScopeInvalidator
	evaluator        RuleEvaluator
	txManager        Transactor
	logger           *slog.Logger
}

func NewRuleService(
	ruleRepo repository.RuleRepository,
	progressRepo repository.ProgressRepository,
	subscriptionRepo repository.SubscriptionRepository,
	scopeCache ScopeInvalidator,
	evaluator RuleEvaluator,
	txManager Transactor,
	logger *slog.Logger,
) *RuleService {
	return &RuleService{
		ruleRepo:         ruleRepo,
		progressRepo:     progressRepo,
		subscriptionRepo: subscriptionRepo,
		scopeCache:       scopeCache,
		evaluator:        evaluator,
		txManager:        txManager,
		logger:           logger,
	}
}

func (s *RuleService) CreateRule(ctx context.Context, rule *models.Rule) error {
	if err := s.validate(rule.Prompt, rule.Threshold); err != nil {
		return err
	}

	if err := s.validateScope(ctx, rule.TenantID, rule.ChannelIDs); err != nil {
		return err
	}

	rule.Generation = 1

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return err
	}

	s.logger.Info("Правило создано",
		"ruleId", rule.ID,
		"tenantId", rule.TenantID,
	)

	s.bumpScope(ctx)

	return nil
}

func (s *RuleService) GetRule(ctx context.Context, tenantID, ruleID int64) (*models.Rule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	if rule.TenantID != tenantID {
		return nil, &errors.ErrRuleNotFound{RuleID: ruleID}
	}

	return rule, nil
}

func (s *RuleService) ListRules(ctx context.Context, tenantID int64, isActive *bool) ([]*models.Rule, error) {
	return s.ruleRepo.FindByTenant(ctx, tenantID, isActive)
}

// UpdateRule применяет частичное обновление. Смена промпта или порога
// поднимает поколение и сбрасывает позиции анализа: старые сообщения
// будут переоценены заново, прежние лиды вытеснены новым поколением.
func (s *RuleService) UpdateRule(ctx context.Context, tenantID, ruleID int64, patch *RulePatch) (*models.Rule, error) {
	var updated *models.Rule

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		rule, err := s.ruleRepo.FindByID(ctx, ruleID)
		if err != nil {
			return err
		}

		if rule.TenantID != tenantID {
			return &errors.ErrRuleNotFound{RuleID: ruleID}
		}

		reprocess := false
		scopeChanged := false

		if patch.Prompt != nil && *patch.Prompt != rule.Prompt {
			rule.Prompt = *patch.Prompt
			reprocess = true
		}

		if patch.Threshold != nil && *patch.Threshold != rule.Threshold {
			rule.Threshold = *patch.Threshold
			reprocess = true
		}

		if patch.ChannelIDs != nil {
			if err := s.validateScope(ctx, tenantID, *patch.ChannelIDs); err != nil {
				return err
			}

			rule.ChannelIDs = *patch.ChannelIDs
			scopeChanged = true
		}

		if patch.Name != nil {
			rule.Name = *patch.Name
		}

		if patch.Description != nil {
			rule.Description = *patch.Description
		}

		if patch.IsActive != nil {
			rule.IsActive = *patch.IsActive
		}

		if patch.Schedule != nil {
			rule.Schedule = *patch.Schedule
		}

		if err := s.validate(rule.Prompt, rule.Threshold); err != nil {
			return err
		}

		if reprocess {
			rule.Generation++

			if err := s.progressRepo.DeleteByRule(ctx, rule.ID); err != nil {
				return err
			}

			s.logger.Info("Поколение правила поднято, позиции анализа сброшены",
				"ruleId", rule.ID,
				"generation", rule.Generation,
			)
		} else if scopeChanged && len(rule.ChannelIDs) > 0 {
			if err := s.progressRepo.DeleteDetached(ctx, rule.ID, rule.ChannelIDs); err != nil {
				return err
			}
		}

		if err := s.ruleRepo.Update(ctx, rule); err != nil {
			return err
		}

		updated = rule

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bumpScope(ctx)

	return updated, nil
}

func (s *RuleService) DeleteRule(ctx context.Context, tenantID, ruleID int64) error {
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		rule, err := s.ruleRepo.FindByID(ctx, ruleID)
		if err != nil {
			return err
		}

		if rule.TenantID != tenantID {
			return &errors.ErrRuleNotFound{RuleID: ruleID}
		}

		if err := s.progressRepo.DeleteByRule(ctx, ruleID); err != nil {
			return err
		}

		return s.ruleRepo.Delete(ctx, ruleID)
	})
	if err != nil {
		return err
	}

	s.bumpScope(ctx)

	return nil
}

// TestRule прогоняет промпт по образцу текста без сохранения результата.
func (s *RuleService) TestRule(ctx context.Context, prompt string, threshold float64, sampleText string) (*RuleTestResult, error) {
	if err := s.validate(prompt, threshold); err != nil {
		return nil, err
	}

	if strings.TrimSpace(sampleText) == "" {
		return nil, &errors.ErrBadRequest{Message: "пустой текст для пробного прогона"}
	}

	result, err := s.evaluator.Evaluate(ctx, prompt, sampleText)
	if err != nil {
		return nil, err
	}

	return &RuleTestResult{
		IsMatch:    result.IsMatch,
		Confidence: result.Confidence,
		Reasoning:  result.Reasoning,
		WouldMatch: result.IsMatch && result.Confidence >= threshold,
	}, nil
}

func (s *RuleService) validate(prompt string, threshold float64) error {
	length := utf8.RuneCountInString(strings.TrimSpace(prompt))
	if length < minPromptLength {
		return &errors.ErrPromptTooShort{Length: length}
	}

	if threshold < 0 || threshold > 1 {
		return &errors.ErrThresholdOutOfRange{Threshold: threshold}
	}

	return nil
}

func (s *RuleService) validateScope(ctx context.Context, tenantID int64, channelIDs []int64) error {
	if len(channelIDs) == 0 {
		return nil
	}

	subscribed, err := s.subscriptionRepo.SubscribedChannelIDs(ctx, tenantID)
	if err != nil {
		return err
	}

	allowed := make(map[int64]struct{}, len(subscribed))
	for _, id := range subscribed {
		allowed[id] = struct{}{}
	}

	for _, id := range channelIDs {
		if _, ok := allowed[id]; !ok {
			return &errors.ErrChannelNotSubscribed{ChannelID: id}
		}
	}

	return nil
}

func (s *RuleService) bumpScope(ctx context.Context) {
	if err := s.scopeCache.BumpScopeVersion(ctx); err != nil {
		s.logger.Error("Ошибка при инвалидации области правил", "error", err)
	}
}
