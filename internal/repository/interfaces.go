package repository

import (
	"context"
	"time"

	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/internal/repository/orm"
)

type MessageRepository interface {
	Save(ctx context.Context, message *models.Message) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.Message, error)
	FindForEvaluation(ctx context.Context, channelID int64, after *time.Time, afterID int64, since time.Time, limit int) ([]*models.Message, error)
}

type ChannelRepository interface {
	Save(ctx context.Context, channel *models.Channel) error
	FindByID(ctx context.Context, id int64) (*models.Channel, error)
	FindActive(ctx context.Context) ([]*models.Channel, error)
	UpdateCollectState(ctx context.Context, channelID, lastMessageID int64, collectedAt time.Time) error
}

type RuleRepository interface {
	Save(ctx context.Context, rule *models.Rule) error
	FindByID(ctx context.Context, id int64) (*models.Rule, error)
	FindByTenant(ctx context.Context, tenantID int64, isActive *bool) ([]*models.Rule, error)
	FindDue(ctx context.Context, limit, offset int) ([]*models.Rule, error)
	Update(ctx context.Context, rule *models.Rule) error
	Delete(ctx context.Context, id int64) error
}

type ProgressRepository interface {
	Find(ctx context.Context, ruleID, channelID int64) (*models.RuleProgress, error)
	Upsert(ctx context.Context, progress *models.RuleProgress) error
	DeleteByRule(ctx context.Context, ruleID int64) error
	DeleteDetached(ctx context.Context, ruleID int64, keepChannelIDs []int64) error
}

type LeadRepository interface {
	Save(ctx context.Context, lead *models.Lead) error
	FindActual(ctx context.Context, messageID, ruleID int64) (*models.Lead, error)
	Supersede(ctx context.Context, leadID, byGeneration int64) error
	FindByID(ctx context.Context, id int64) (*models.Lead, error)
	FindByFilter(ctx context.Context, filter *models.LeadFilter) ([]*models.Lead, error)
	CountByFilter(ctx context.Context, filter *models.LeadFilter) (int64, error)
	FindDetail(ctx context.Context, tenantID, leadID int64) (*models.LeadDetail, error)
	Update(ctx context.Context, lead *models.Lead) error
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context, tenantID int64) (*models.LeadStats, error)
}

type SubscriptionRepository interface {
	Save(ctx context.Context, subscription *models.Subscription) error
	FindByID(ctx context.Context, id int64) (*models.Subscription, error)
	FindByTenant(ctx context.Context, tenantID int64, onlyActive bool) ([]*models.Subscription, error)
	SubscribedChannelIDs(ctx context.Context, tenantID int64) ([]int64, error)
	Update(ctx context.Context, subscription *models.Subscription) error
	Delete(ctx context.Context, id int64) error
}

type NotificationRepository interface {
	Save(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, tenantID, id int64) (*models.Notification, error)
	FindByTenant(ctx context.Context, tenantID int64, isRead *bool, skip, limit int) ([]*models.Notification, error)
	MarkRead(ctx context.Context, tenantID, id int64) error
	MarkAllRead(ctx context.Context, tenantID int64) (int64, error)
	Delete(ctx context.Context, tenantID, id int64) error
	Stats(ctx context.Context, tenantID int64) (*models.NotificationStats, error)
}

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByVerificationCode(ctx context.Context, code string) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID int64, prefs models.NotificationPreferences) error
	SetVerificationCode(ctx context.Context, userID int64, code string, expires time.Time) error
	BindChatID(ctx context.Context, userID, chatID int64) error
	UnbindChat(ctx context.Context, userID int64) error
}

type AccountRepository interface {
	Save(ctx context.Context, account *models.TelegramAccount) error
	FindByID(ctx context.Context, tenantID, id int64) (*models.TelegramAccount, error)
	FindByTenant(ctx context.Context, tenantID int64) ([]*models.TelegramAccount, error)
	UpdateStatus(ctx context.Context, id int64, status models.TelegramAccountStatus, sessionRef string) error
	Delete(ctx context.Context, tenantID, id int64) error
}

type FailureRepository interface {
	Save(ctx context.Context, failure *models.EvaluationFailure) error
}

type AnalyticsRepository interface {
	SummaryCounts(ctx context.Context, tenantID int64, since time.Time) (*orm.SummaryCounts, error)
	LeadsTimeSeries(ctx context.Context, tenantID int64, granularity string, from, to time.Time) ([]models.TimeSeriesPoint, error)
	StatusCounts(ctx context.Context, tenantID int64) (map[models.LeadStatus]int64, error)
	ChannelPerformance(ctx context.Context, tenantID int64) ([]models.ChannelPerformance, error)
	RulePerformance(ctx context.Context, tenantID int64) ([]models.RulePerformance, error)
	PeriodCounts(ctx context.Context, tenantID int64, from, to time.Time) (*orm.PeriodCounts, error)
}
