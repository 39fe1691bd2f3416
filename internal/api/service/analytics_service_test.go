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
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	repomocks "github.com/leadstream-dev/go-leadstream/internal/repository/mocks"
	"github.com/leadstream-dev/go-leadstream/internal/repository/orm"
)

func newAnalyticsService(t *testing.T) (*service.AnalyticsService, *repomocks.AnalyticsRepository) {
	t.Helper()

	repo := repomocks.NewAnalyticsRepository(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return service.NewAnalyticsService(repo, logger), repo
}

func TestSummary_ZeroMessagesGiveZeroConversion(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	repo.On("SummaryCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(&orm.SummaryCounts{TotalLeads: 0, TotalMessages: 0}, nil)

	// Act
	summary, err := svc.Summary(context.Background(), 1, 30)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, summary.ConversionRate)
	assert.Equal(t, 30, summary.PeriodDays)
}

func TestSummary_ConversionIsLeadsPerMessage(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	repo.On("SummaryCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(&orm.SummaryCounts{TotalLeads: 5, TotalMessages: 200, AvgScore: 0.85, TopRule: "Аутстафф"}, nil)

	// Act
	summary, err := svc.Summary(context.Background(), 1, 7)

	// Assert
	require.NoError(t, err)
	assert.InDelta(t, 0.025, summary.ConversionRate, 0.0001)
	assert.Equal(t, "Аутстафф", summary.TopRule)
}

func TestFunnel_PercentagesFromFirstStageConversionsFromPrevious(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	repo.On("StatusCounts", mock.Anything, int64(1)).Return(map[models.LeadStatus]int64{
		models.LeadStatusNew:        100,
		models.LeadStatusInProgress: 40,
		models.LeadStatusProcessed:  10,
	}, nil)

	// Act
	stages, err := svc.Funnel(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, stages, 3)

	assert.Equal(t, "new", stages[0].Stage)
	assert.InDelta(t, 100.0, stages[0].Percentage, 0.01)
	assert.Nil(t, stages[0].ConversionRate)

	assert.InDelta(t, 40.0, stages[1].Percentage, 0.01)
	require.NotNil(t, stages[1].ConversionRate)
	assert.InDelta(t, 40.0, *stages[1].ConversionRate, 0.01)

	assert.InDelta(t, 10.0, stages[2].Percentage, 0.01)
	require.NotNil(t, stages[2].ConversionRate)
	assert.InDelta(t, 25.0, *stages[2].ConversionRate, 0.01)
}

func TestFunnel_EmptyCountsStayZero(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	repo.On("StatusCounts", mock.Anything, int64(1)).Return(map[models.LeadStatus]int64{}, nil)

	// Act
	stages, err := svc.Funnel(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	require.Len(t, stages, 3)

	for _, stage := range stages {
		assert.Zero(t, stage.Count)
		assert.Zero(t, stage.Percentage)
	}
}

func TestTrends_SmallChangeIsStable(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	repo.On("PeriodCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&orm.PeriodCounts{Leads: 103, Messages: 1000}, nil).Once()
	repo.On("PeriodCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&orm.PeriodCounts{Leads: 100, Messages: 1000}, nil).Once()

	// Act
	trends, err := svc.Trends(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.TrendStable, trends.Leads.Direction)
	assert.InDelta(t, 3.0, trends.Leads.ChangePct, 0.01)
	assert.Equal(t, models.TrendStable, trends.Conversion.Direction)
}

func TestTrends_GrowthFromZeroBaseline(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	repo.On("PeriodCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&orm.PeriodCounts{Leads: 12, Messages: 300}, nil).Once()
	repo.On("PeriodCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&orm.PeriodCounts{Leads: 0, Messages: 0}, nil).Once()

	// Act
	trends, err := svc.Trends(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.TrendUp, trends.Leads.Direction)
	assert.InDelta(t, 100.0, trends.Leads.ChangePct, 0.01)
}

func TestTrends_ConversionComparedInPoints(t *testing.T) {
	t.Parallel()
	// Arrange
	svc, repo := newAnalyticsService(t)

	// конверсия 4% против 2%: вдвое больше, но всего +2 пункта
	repo.On("PeriodCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&orm.PeriodCounts{Leads: 4, Messages: 100}, nil).Once()
	repo.On("PeriodCounts", mock.Anything, int64(1), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(&orm.PeriodCounts{Leads: 2, Messages: 100}, nil).Once()

	// Act
	trends, err := svc.Trends(context.Background(), 1)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.TrendUp, trends.Conversion.Direction)
	assert.InDelta(t, 2.0, trends.Conversion.ChangePct, 0.01)
}
