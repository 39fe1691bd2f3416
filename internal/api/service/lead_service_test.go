package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/api/service"
	servicemocks "github.com/leadstream-dev/go-leadstream/internal/api/service/mocks"
	domainerrors "github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	repomocks "github.com/leadstream-dev/go-leadstream/internal/repository/mocks"
)

type leadFixture struct {
	leadRepo  *repomocks.LeadRepository
	userRepo  *repomocks.UserRepository
	eventSink *servicemocks.LeadEventSink
	service   *service.LeadService
}

func newLeadFixture(t *testing.T) *leadFixture {
	t.Helper()

	f := &leadFixture{
		leadRepo:  repomocks.NewLeadRepository(t),
		userRepo:  repomocks.NewUserRepository(t),
		eventSink: servicemocks.NewLeadEventSink(t),
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f.service = service.NewLeadService(f.leadRepo, f.userRepo, f.eventSink, logger)

	return f
}

func storedLead() *models.Lead {
	return &models.Lead{
		ID:        7,
		TenantID:  1,
		MessageID: 100,
		RuleID:    10,
		Score:     0.9,
		Status:    models.LeadStatusNew,
	}
}

func TestUpdateLead_RejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	f.leadRepo.On("FindByID", mock.Anything, int64(7)).Return(storedLead(), nil)

	status := "done"

	// Act
	_, err := f.service.UpdateLead(context.Background(), 1, 7, &service.LeadPatch{Status: &status})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, &domainerrors.ErrInvalidLeadStatus{})
	f.leadRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateLead_ForeignTenantLooksLikeMissing(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	f.leadRepo.On("FindByID", mock.Anything, int64(7)).Return(storedLead(), nil)

	status := "in_progress"

	// Act
	_, err := f.service.UpdateLead(context.Background(), 99, 7, &service.LeadPatch{Status: &status})

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, &domainerrors.ErrLeadNotFound{})
}

func TestUpdateLead_StatusChangeEmitsEvent(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	f.leadRepo.On("FindByID", mock.Anything, int64(7)).Return(storedLead(), nil)
	f.leadRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Lead")).Return(nil)

	var event *models.LeadEvent

	f.eventSink.On("HandleLeadEvent", mock.Anything, mock.AnythingOfType("*models.LeadEvent")).
		Run(func(args mock.Arguments) {
			event = args.Get(1).(*models.LeadEvent)
		}).Return(nil)

	status := "in_progress"

	// Act
	lead, err := f.service.UpdateLead(context.Background(), 1, 7, &service.LeadPatch{Status: &status})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusInProgress, lead.Status)
	require.NotNil(t, event)
	assert.Equal(t, models.NotificationLeadStatusChanged, event.Kind)
	assert.Equal(t, "new", event.OldStatus)
	assert.Equal(t, "in_progress", event.NewStatus)
}

func TestUpdateLead_SameStatusEmitsNothing(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	f.leadRepo.On("FindByID", mock.Anything, int64(7)).Return(storedLead(), nil)
	f.leadRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Lead")).Return(nil)

	status := "new"

	// Act
	_, err := f.service.UpdateLead(context.Background(), 1, 7, &service.LeadPatch{Status: &status})

	// Assert
	require.NoError(t, err)
	f.eventSink.AssertNotCalled(t, "HandleLeadEvent", mock.Anything, mock.Anything)
}

func TestUpdateLead_AssignmentEmitsEventWithAssigneeName(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	f.leadRepo.On("FindByID", mock.Anything, int64(7)).Return(storedLead(), nil)
	f.leadRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Lead")).Return(nil)
	f.userRepo.On("FindByID", mock.Anything, int64(5)).
		Return(&models.User{ID: 5, FullName: "Анна Смирнова"}, nil)

	var event *models.LeadEvent

	f.eventSink.On("HandleLeadEvent", mock.Anything, mock.AnythingOfType("*models.LeadEvent")).
		Run(func(args mock.Arguments) {
			event = args.Get(1).(*models.LeadEvent)
		}).Return(nil)

	assignee := int64(5)

	// Act
	_, err := f.service.UpdateLead(context.Background(), 1, 7, &service.LeadPatch{AssigneeID: &assignee})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, models.NotificationLeadAssigned, event.Kind)
	assert.Equal(t, "Анна Смирнова", event.Assignee)
}

func TestGetLead_BuildsPublicChannelLink(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	detail := &models.LeadDetail{
		Lead: *storedLead(),
		Channel: &models.Channel{
			TgChannelID: -1001234567890,
			Username:    "freelance_ru",
		},
		Message: &models.Message{TgMessageID: 42},
	}

	f.leadRepo.On("FindDetail", mock.Anything, int64(1), int64(7)).Return(detail, nil)

	// Act
	got, err := f.service.GetLead(context.Background(), 1, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/freelance_ru/42", got.TelegramMessageLink)
}

func TestGetLead_BuildsPrivateChannelLink(t *testing.T) {
	t.Parallel()
	// Arrange
	f := newLeadFixture(t)

	detail := &models.LeadDetail{
		Lead: *storedLead(),
		Channel: &models.Channel{
			TgChannelID: -1001234567890,
		},
		Message: &models.Message{TgMessageID: 42},
	}

	f.leadRepo.On("FindDetail", mock.Anything, int64(1), int64(7)).Return(detail, nil)

	// Act
	got, err := f.service.GetLead(context.Background(), 1, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "https://t.me/c/1234567890/42", got.TelegramMessageLink)
}
