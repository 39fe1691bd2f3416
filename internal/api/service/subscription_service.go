package service

import (
	"context"
	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

type SubscriptionPatch struct {
	IsActive *bool
	Tags     *[]string
}

type SubscriptionService struct {
	subscriptionRepo repository.SubscriptionRepository
	accountRepo      repository.AccountRepository
	channelRepo      repository.ChannelRepository
	scopeCache       ScopeInvalidator
	logger           *slog.Logger
}

func NewSubscriptionService(
	subscriptionRepo repository.SubscriptionRepository,
	accountRepo repository.AccountRepository,
	channelRepo repository.ChannelRepository,
	scopeCache ScopeInvalidator,
	logger *slog.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepo: subscriptionRepo,
		accountRepo:      accountRepo,
		channelRepo:      channelRepo,
		scopeCache:       scopeCache,
		logger:           logger,
	}
}

// Subscribe подключает канал к арендатору. Канал создаётся при первом
// упоминании и переиспользуется между арендаторами.
func (s *SubscriptionService) Subscribe(ctx context.Context, tenantID, accountID int64, channel *models.Channel, tags []string) (*models.Subscription, error) {
	account, err := s.accountRepo.FindByID(ctx, tenantID, accountID)
	if err != nil {
		return nil, err
	}

	if account.Status != models.AccountActive {
		return nil, &errors.ErrBadRequest{Message: "аккаунт-источник не подключён"}
	}

	if err := s.channelRepo.Save(ctx, channel); err != nil {
		return nil, err
	}

	existing, err := s.subscriptionRepo.FindByTenant(ctx, tenantID, false)
	if err != nil {
		return nil, err
	}

	for _, sub := range existing {
		if sub.ChannelID == channel.ID {
			return nil, &errors.ErrSubscriptionAlreadyExists{ChannelID: channel.ID}
		}
	}

	subscription := &models.Subscription{
		TenantID:          tenantID,
		ChannelID:         channel.ID,
		TelegramAccountID: accountID,
		IsActive:          true,
		Tags:              tags,
	}

	if err := s.subscriptionRepo.Save(ctx, subscription); err != nil {
		return nil, err
	}

	s.logger.Info("Подписка создана",
		"subscriptionId", subscription.ID,
		"tenantId", tenantID,
		"channelId", channel.ID,
	)

	s.bumpScope(ctx)

	return subscription, nil
}

func (s *SubscriptionService) ListSubscriptions(ctx context.Context, tenantID int64, onlyActive bool) ([]*models.Subscription, error) {
	return s.subscriptionRepo.FindByTenant(ctx, tenantID, onlyActive)
}

func (s *SubscriptionService) UpdateSubscription(ctx context.Context, tenantID, subscriptionID int64, patch *SubscriptionPatch) (*models.Subscription, error) {
	subscription, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if subscription.TenantID != tenantID {
		return nil, &errors.ErrSubscriptionNotFound{SubscriptionID: subscriptionID}
	}

	scopeChanged := false

	if patch.IsActive != nil && *patch.IsActive != subscription.IsActive {
		subscription.IsActive = *patch.IsActive
		scopeChanged = true
	}

	if patch.Tags != nil {
		subscription.Tags = *patch.Tags
	}

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return nil, err
	}

	if scopeChanged {
		s.bumpScope(ctx)
	}

	return subscription, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, tenantID, subscriptionID int64) error {
	subscription, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return err
	}

	if subscription.TenantID != tenantID {
		return &errors.ErrSubscriptionNotFound{SubscriptionID: subscriptionID}
	}

	if err := s.subscriptionRepo.Delete(ctx, subscriptionID); err != nil {
		return err
	}

	s.logger.Info("Подписка удалена",
		"subscriptionId", subscriptionID,
		"tenantId", tenantID,
	)

	s.bumpScope(ctx)

	return nil
}

func (s *SubscriptionService) bumpScope(ctx context.Context) {
	if err := s.scopeCache.BumpScopeVersion(ctx); err != nil {
		s.logger.Error("Ошибка при инвалидации области правил", "error", err)
	}
}
