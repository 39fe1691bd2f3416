package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository"
)

const trendWindow = 7 * 24 * time.Hour

type AnalyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	logger        *slog.Logger
	now           func() time.Time
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		logger:        logger,
		now:           time.Now,
	}
}

// Summary — сводка за период. Все доли при нулевом знаменателе равны нулю.
func (s *AnalyticsService) Summary(ctx context.Context, tenantID int64, periodDays int) (*models.AnalyticsSummary, error) {
	if periodDays <= 0 {
		periodDays = 30
	}

	since := s.now().AddDate(0, 0, -periodDays)

	counts, err := s.analyticsRepo.SummaryCounts(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsSummary{
		PeriodDays:     periodDays,
		TotalLeads:     counts.TotalLeads,
		TotalMessages:  counts.TotalMessages,
		TotalChannels:  counts.TotalChannels,
		TotalRules:     counts.TotalRules,
		AvgScore:       counts.AvgScore,
		ConversionRate: ratio(counts.TotalLeads, counts.TotalMessages),
		TopChannel:     counts.TopChannel,
		TopRule:        counts.TopRule,
	}, nil
}

func (s *AnalyticsService) LeadsTimeSeries(ctx context.Context, tenantID int64, granularity string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	switch granularity {
	case "hour", "day", "week", "month":
	default:
		granularity = "day"
	}

	if to.IsZero() {
		to = s.now()
	}

	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}

	return s.analyticsRepo.LeadsTimeSeries(ctx, tenantID, granularity, from, to)
}

// Funnel строит воронку new -> in_progress -> processed. Percentage
// считается от первой ступени, ConversionRate от предыдущей.
func (s *AnalyticsService) Funnel(ctx context.Context, tenantID int64) ([]models.FunnelStage, error) {
	counts, err := s.analyticsRepo.StatusCounts(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order := []models.LeadStatus{models.LeadStatusNew, models.LeadStatusInProgress, models.LeadStatusProcessed}

	stages := make([]models.FunnelStage, 0, len(order))

	var first, prev int64

	for i, status := range order {
		count := counts[status]

		if i == 0 {
			first = count
		}

		stage := models.FunnelStage{
			Stage:      string(status),
			Count:      count,
			Percentage: percent(count, first),
		}

		if i > 0 {
			rate := percent(count, prev)
			stage.ConversionRate = &rate
		}

		stages = append(stages, stage)
		prev = count
	}

	return stages, nil
}

func (s *AnalyticsService) ChannelPerformance(ctx context.Context, tenantID int64) ([]models.ChannelPerformance, error) {
	return s.analyticsRepo.ChannelPerformance(ctx, tenantID)
}

func (s *AnalyticsService) RulePerformance(ctx context.Context, tenantID int64) ([]models.RulePerformance, error) {
	return s.analyticsRepo.RulePerformance(ctx, tenantID)
}

// Trends сравнивает последние семь дней с предыдущими семью. Для лидов
// и сообщений нейтральной считается разница до пяти процентов, для
// конверсии до одного процентного пункта.
func (s *AnalyticsService) Trends(ctx context.Context, tenantID int64) (*models.ActivityTrends, error) {
	now := s.now()

	current, err := s.analyticsRepo.PeriodCounts(ctx, tenantID, now.Add(-trendWindow), now)
	if err != nil {
		return nil, err
	}

	previous, err := s.analyticsRepo.PeriodCounts(ctx, tenantID, now.Add(-2*trendWindow), now.Add(-trendWindow))
	if err != nil {
		return nil, err
	}

	currentConv := ratio(current.Leads, current.Messages) * 100
	previousConv := ratio(previous.Leads, previous.Messages) * 100

	return &models.ActivityTrends{
		Leads:      relativeTrend(float64(current.Leads), float64(previous.Leads)),
		Messages:   relativeTrend(float64(current.Messages), float64(previous.Messages)),
		Conversion: pointsTrend(currentConv, previousConv),
	}, nil
}

func relativeTrend(current, previous float64) models.Trend {
	trend := models.Trend{
		Current:  current,
		Previous: previous,
	}

	switch {
	case previous == 0 && current == 0:
		trend.ChangePct = 0
	case previous == 0:
		trend.ChangePct = 100
	default:
		trend.ChangePct = (current - previous) / previous * 100
	}

	switch {
	case trend.ChangePct > 5:
		trend.Direction = models.TrendUp
	case trend.ChangePct < -5:
		trend.Direction = models.TrendDown
	default:
		trend.Direction = models.TrendStable
	}

	return trend
}

// pointsTrend сравнивает проценты конверсии в пунктах, а не в долях:
// рост с 2% до 4% — это +2 пункта, а не +100%.
func pointsTrend(current, previous float64) models.Trend {
	trend := models.Trend{
		Current:   current,
		Previous:  previous,
		ChangePct: current - previous,
	}

	switch {
	case trend.ChangePct > 1:
		trend.Direction = models.TrendUp
	case trend.ChangePct < -1:
		trend.Direction = models.TrendDown
	default:
		trend.Direction = models.TrendStable
	}

	return trend
}

func ratio(numerator, denominator int64) float64 {
	if denominator == 0 {
		return 0
	}

	return float64(numerator) / float64(denominator)
}

func percent(numerator, denominator int64) float64 {
	return ratio(numerator, denominator) * 100
}
