package notify_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/engine/notify"
	"github.com/leadstream-dev/go-leadstream/internal/engine/notify/mocks"
)

func testEvent() *models.LeadEvent {
	return &models.LeadEvent{
		Kind:     models.NotificationLeadCreated,
		TenantID: 1,
		LeadID:   42,
		RuleID:   10,
		Score:    0.9,
	}
}

func TestFallbackLeadNotifier_PrimarySuccess(t *testing.T) {
	// Arrange
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	primaryMock := new(mocks.LeadNotifier)
	secondaryMock := new(mocks.LeadNotifier)

	fallbackNotifier := notify.NewFallbackLeadNotifier(primaryMock, secondaryMock, logger)

	event := testEvent()

	primaryMock.On("PublishLeadEvent", mock.Anything, event).Return(nil)

	// Act
	err := fallbackNotifier.PublishLeadEvent(context.Background(), event)

	// Assert
	require.NoError(t, err)
	primaryMock.AssertExpectations(t)
	secondaryMock.AssertNotCalled(t, "PublishLeadEvent")
}

func TestFallbackLeadNotifier_PrimaryFailsSecondarySuccess(t *testing.T) {
	// Arrange
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	primaryMock := new(mocks.LeadNotifier)
	secondaryMock := new(mocks.LeadNotifier)

	fallbackNotifier := notify.NewFallbackLeadNotifier(primaryMock, secondaryMock, logger)

	event := testEvent()

	primaryError := errors.New("primary transport failed")

	primaryMock.On("PublishLeadEvent", mock.Anything, event).Return(primaryError)
	secondaryMock.On("PublishLeadEvent", mock.Anything, event).Return(nil)

	// Act
	err := fallbackNotifier.PublishLeadEvent(context.Background(), event)

	// Assert
	require.NoError(t, err)
	primaryMock.AssertExpectations(t)
	secondaryMock.AssertExpectations(t)
}

func TestFallbackLeadNotifier_BothFail(t *testing.T) {
	// Arrange
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	primaryMock := new(mocks.LeadNotifier)
	secondaryMock := new(mocks.LeadNotifier)

	fallbackNotifier := notify.NewFallbackLeadNotifier(primaryMock, secondaryMock, logger)

	event := testEvent()

	primaryError := errors.New("primary transport failed")
	secondaryError := errors.New("secondary transport failed")

	primaryMock.On("PublishLeadEvent", mock.Anything, event).Return(primaryError)
	secondaryMock.On("PublishLeadEvent", mock.Anything, event).Return(secondaryError)

	// Act
	err := fallbackNotifier.PublishLeadEvent(context.Background(), event)

	// Assert
	require.Error(t, err)
	assert.Equal(t, primaryError, err)
	primaryMock.AssertExpectations(t)
	secondaryMock.AssertExpectations(t)
}
