package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leadstream-dev/go-leadstream/internal/common/metrics"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// DispatcherService доставляет события о лидах по каналам пользователя.
// Каналы независимы: сбой одного не блокирует остальные. Telegram
// молча пропускается, пока бот не привязан.
type DispatcherService struct {
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	emailSender      EmailSender
	telegramSender   TelegramSender
	logger           *slog.Logger
}

func NewDispatcherService(
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	emailSender EmailSender,
	telegramSender TelegramSender,
	logger *slog.Logger,
) *DispatcherService {
	return &DispatcherService{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		emailSender:      emailSender,
		telegramSender:   telegramSender,
		logger:           logger,
	}
}

func (s *DispatcherService) HandleLeadEvent(ctx context.Context, event *models.LeadEvent) error {
	user, err := s.userRepo.FindByID(ctx, event.TenantID)
	if err != nil {
		return err
	}

	if !s.wantsEvent(user, event.Kind) {
		s.logger.Info("Событие отключено настройками пользователя",
			"kind", event.Kind,
			"tenantId", event.TenantID,
		)

		return nil
	}

	title, body := formatEvent(event)

	s.dispatchInApp(ctx, user, event, title, body)
	s.dispatchEmail(ctx, user, title, body)
	s.dispatchTelegram(ctx, user, title, body)

	return nil
}

func (s *DispatcherService) wantsEvent(user *models.User, kind models.NotificationType) bool {
	switch kind {
	case models.NotificationLeadCreated:
		return user.Preferences.NotifyOnNewLead
	case models.NotificationLeadStatusChanged:
		return user.Preferences.NotifyOnLeadStatusChange
	case models.NotificationLeadAssigned:
		return user.Preferences.NotifyOnLeadAssignment
	case models.NotificationRuleTriggered, models.NotificationSystem:
		return true
	default:
		return true
	}
}

func (s *DispatcherService) dispatchInApp(ctx context.Context, user *models.User, event *models.LeadEvent, title, body string) {
	if !user.Preferences.InAppEnabled {
		return
	}

	notification := &models.Notification{
		TenantID: user.ID,
		Type:     event.Kind,
		Title:    title,
		Message:  body,
		Payload: map[string]any{
			"lead_id": event.LeadID,
			"rule_id": event.RuleID,
			"score":   event.Score,
		},
	}

	if err := s.notificationRepo.Save(ctx, notification); err != nil {
		metrics.RecordNotificationDispatched("in_app", "error")

		s.logger.Error("Ошибка при сохранении in-app уведомления",
			"error", err,
			"tenantId", user.ID,
		)

		return
	}

	metrics.RecordNotificationDispatched("in_app", "success")
}

func (s *DispatcherService) dispatchEmail(ctx context.Context, user *models.User, title, body string) {
	if !user.Preferences.EmailEnabled || user.Email == "" {
		return
	}

	if err := s.emailSender.SendEmail(ctx, user.Email, title, body); err != nil {
		metrics.RecordNotificationDispatched("email", "error")

		s.logger.Error("Ошибка при отправке email-уведомления",
			"error", err,
			"tenantId", user.ID,
		)

		return
	}

	metrics.RecordNotificationDispatched("email", "success")
}

func (s *DispatcherService) dispatchTelegram(ctx context.Context, user *models.User, title, body string) {
	if s.telegramSender == nil || !user.TelegramBot.Enabled || !user.TelegramBot.Bound() {
		return
	}

	text := title + "\n\n" + body

	if err := s.telegramSender.SendMessage(ctx, *user.TelegramBot.ChatID, text); err != nil {
		metrics.RecordNotificationDispatched("telegram", "error")

		s.logger.Error("Ошибка при отправке Telegram-уведомления",
			"error", err,
			"tenantId", user.ID,
		)

		return
	}

	metrics.RecordNotificationDispatched("telegram", "success")
}

func formatEvent(event *models.LeadEvent) (title, body string) {
	switch event.Kind {
	case models.NotificationLeadCreated:
		title = "Новый лид"
		body = fmt.Sprintf("Правило «%s» нашло потенциального клиента в канале «%s» (уверенность %.0f%%)",
			event.RuleName, event.Channel, event.Score*100)
	case models.NotificationLeadStatusChanged:
		title = "Статус лида изменён"
		body = fmt.Sprintf("Лид #%d переведён из «%s» в «%s»", event.LeadID, event.OldStatus, event.NewStatus)
	case models.NotificationLeadAssigned:
		title = "Лид назначен"
		body = fmt.Sprintf("Лид #%d назначен на %s", event.LeadID, event.Assignee)
	default:
		title = "Уведомление"
		body = fmt.Sprintf("Событие %s по лиду #%d", event.Kind, event.LeadID)
	}

	return title, body
}
