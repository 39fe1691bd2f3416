package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	servicemocks "github.com/leadstream-dev/go-leadstream/internal/api/service/mocks"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	repomocks "github.com/leadstream-dev/go-leadstream/internal/repository/mocks"
)

type dispatcherFixture struct {
	userRepo         *repomocks.UserRepository
	notificationRepo *repomocks.NotificationRepository
	emailSender      *servicemocks.EmailSender
	telegramSender   *servicemocks.TelegramSender
	dispatcher       *service.DispatcherService
}

func newDispatcherFixture(t *testing.T) *dispatcherFixture {
	t.Helper()

	f := &dispatcherFixture{
		userRepo:         repomocks.NewUserRepository(t),
		notificationRepo: repomocks.NewNotificationRepository(t),
		emailSender:      servicemocks.NewEmailSender(t),
		telegramSender:   servicemocks.NewTelegramSender(t),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.dispatcher = service.NewDispatcherService(
		f.userRepo,
		f.notificationRepo,
		f.emailSender,
		f.telegramSender,
		logger,
	)

	return f
}

func subscribedUser() *models.User {
	chatID := int64(555)

	return &models.User{
		ID:    42,
		Email: "owner@example.com",
		Preferences: models.NotificationPreferences{
			EmailEnabled:             true,
			InAppEnabled:             true,
			NotifyOnNewLead:          true,
			NotifyOnLeadStatusChange: true,
			NotifyOnLeadAssignment:   true,
		},
		TelegramBot: models.TelegramBotBinding{
			Enabled: true,
			ChatID:  &chatID,
		},
	}
}

func leadCreatedEvent() *models.LeadEvent {
	return &models.LeadEvent{
		Kind:     models.NotificationLeadCreated,
		TenantID: 42,
		LeadID:   7,
		RuleID:   3,
		RuleName: "Поиск заказов на разработку",
		Channel:  "Фриланс чат",
		Score:    0.9,
	}
}

func TestHandleLeadEvent_FanOutToAllChannels(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newDispatcherFixture(t)

	f.userRepo.On("FindByID", mock.Anything, int64(42)).Return(subscribedUser(), nil)
	f.notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.Notification")).Return(nil)
	f.emailSender.On("SendEmail", mock.Anything, "owner@example.com", mock.Anything, mock.Anything).Return(nil)
	f.telegramSender.On("SendMessage", mock.Anything, int64(555), mock.Anything).Return(nil)

	// Act
	err := f.dispatcher.HandleLeadEvent(context.Background(), leadCreatedEvent())

	// Assert
	require.NoError(t, err)
	f.notificationRepo.AssertNumberOfCalls(t, "Save", 1)
	f.emailSender.AssertNumberOfCalls(t, "SendEmail", 1)
	f.telegramSender.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestHandleLeadEvent_PreferenceGateBlocksDelivery(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newDispatcherFixture(t)

	user := subscribedUser()
	user.Preferences.NotifyOnNewLead = false

	f.userRepo.On("FindByID", mock.Anything, int64(42)).Return(user, nil)

	// Act
	err := f.dispatcher.HandleLeadEvent(context.Background(), leadCreatedEvent())

	// Assert
	require.NoError(t, err)
	f.notificationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.emailSender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.telegramSender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleLeadEvent_UnboundTelegramSkippedSilently(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newDispatcherFixture(t)

	user := subscribedUser()
	user.TelegramBot.ChatID = nil

	f.userRepo.On("FindByID", mock.Anything, int64(42)).Return(user, nil)
	f.notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.Notification")).Return(nil)
	f.emailSender.On("SendEmail", mock.Anything, "owner@example.com", mock.Anything, mock.Anything).Return(nil)

	// Act
	err := f.dispatcher.HandleLeadEvent(context.Background(), leadCreatedEvent())

	// Assert
	require.NoError(t, err)
	f.telegramSender.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything)
	f.notificationRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestHandleLeadEvent_ChannelFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newDispatcherFixture(t)

	f.userRepo.On("FindByID", mock.Anything, int64(42)).Return(subscribedUser(), nil)
	f.notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.Notification")).Return(nil)
	f.emailSender.On("SendEmail", mock.Anything, "owner@example.com", mock.Anything, mock.Anything).
		Return(errors.New("smtp недоступен"))
	f.telegramSender.On("SendMessage", mock.Anything, int64(555), mock.Anything).Return(nil)

	// Act
	err := f.dispatcher.HandleLeadEvent(context.Background(), leadCreatedEvent())

	// Assert
	require.NoError(t, err)
	f.notificationRepo.AssertNumberOfCalls(t, "Save", 1)
	f.telegramSender.AssertNumberOfCalls(t, "SendMessage", 1)
}

func TestHandleLeadEvent_InAppPayloadKeepsLeadReference(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newDispatcherFixture(t)

	user := subscribedUser()
	user.Preferences.EmailEnabled = false
	user.TelegramBot.Enabled = false

	var saved *models.Notification

	f.userRepo.On("FindByID", mock.Anything, int64(42)).Return(user, nil)
	f.notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*models.Notification")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*models.Notification)
		}).Return(nil)

	// Act
	err := f.dispatcher.HandleLeadEvent(context.Background(), leadCreatedEvent())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, models.NotificationLeadCreated, saved.Type)
	assert.Equal(t, int64(42), saved.TenantID)
	assert.Equal(t, int64(7), saved.Payload["lead_id"])
}
