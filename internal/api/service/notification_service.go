package service

import (
	"context"
	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	logger           *slog.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *NotificationService) ListNotifications(ctx context.Context, tenantID int64, isRead *bool, skip, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	return s.notificationRepo.FindByTenant(ctx, tenantID, isRead, skip, limit)
}

func (s *NotificationService) GetNotification(ctx context.Context, tenantID, notificationID int64) (*models.Notification, error) {
	return s.notificationRepo.FindByID(ctx, tenantID, notificationID)
}

func (s *NotificationService) MarkRead(ctx context.Context, tenantID, notificationID int64) error {
	return s.notificationRepo.MarkRead(ctx, tenantID, notificationID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, tenantID int64) (int64, error) {
	marked, err := s.notificationRepo.MarkAllRead(ctx, tenantID)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Уведомления прочитаны", "tenantId", tenantID, "count", marked)

	return marked, nil
}

func (s *NotificationService) DeleteNotification(ctx context.Context, tenantID, notificationID int64) error {
	return s.notificationRepo.Delete(ctx, tenantID, notificationID)
}

func (s *NotificationService) Stats(ctx context.Context, tenantID int64) (*models.NotificationStats, error) {
	return s.notificationRepo.Stats(ctx, tenantID)
}
