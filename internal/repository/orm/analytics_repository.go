package orm

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/leadstream-dev/go-leadstream/internal/database"
	customerrors "github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

// AnalyticsRepository — read-only запросы агрегатов. Ничего не мутирует;
// все доли и проценты считает сервис поверх сырых счётчиков.
type AnalyticsRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewAnalyticsRepository(db *database.PostgresDB, txManager *txs.TxManager) *AnalyticsRepository {
	return &AnalyticsRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

type SummaryCounts struct {
	TotalLeads    int64
	TotalMessages int64
	TotalChannels int64
	TotalRules    int64
	AvgScore      float64
	TopChannel    string
	TopRule       string
}

func (r *AnalyticsRepository) SummaryCounts(ctx context.Context, tenantID int64, since time.Time) (*SummaryCounts, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	counts := &SummaryCounts{}

	leadsQuery := r.sq.Select("COUNT(*)", "COALESCE(AVG(score), 0)").
		From("leads").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"superseded_by_generation": nil}).
		Where(sq.GtOrEq{"created_at": since})

	query, args, err := leadsQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "сводка по лидам", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&counts.TotalLeads, &counts.AvgScore)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "сводка по лидам", Cause: err}
	}

	messagesQuery := r.sq.Select("COUNT(*)").
		From("messages m").
		Join("subscriptions s ON s.channel_id = m.channel_id").
		Where(sq.And{sq.Eq{"s.tenant_id": tenantID}, sq.Eq{"s.is_active": true}}).
		Where(sq.GtOrEq{"m.posted_at": since})

	query, args, err = messagesQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "сводка по сообщениям", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&counts.TotalMessages)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "сводка по сообщениям", Cause: err}
	}

	channelsQuery := r.sq.Select("COUNT(*)").
		From("subscriptions").
		Where(sq.And{sq.Eq{"tenant_id": tenantID}, sq.Eq{"is_active": true}})

	query, args, err = channelsQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "сводка по каналам", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&counts.TotalChannels)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "сводка по каналам", Cause: err}
	}

	rulesQuery := r.sq.Select("COUNT(*)").
		From("rules").
		Where(sq.Eq{"tenant_id": tenantID})

	query, args, err = rulesQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "сводка по правилам", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&counts.TotalRules)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "сводка по правилам", Cause: err}
	}

	counts.TopChannel, err = r.topName(ctx, tenantID, since,
		"channels c ON c.id = m.channel_id", "c.title")
	if err != nil {
		return nil, err
	}

	counts.TopRule, err = r.topName(ctx, tenantID, since,
		"rules r ON r.id = l.rule_id", "r.name")
	if err != nil {
		return nil, err
	}

	return counts, nil
}

// topName выбирает имя с наибольшим числом лидов за окно; при равенстве
// побеждает то, у кого лид свежее.
func (r *AnalyticsRepository) topName(ctx context.Context, tenantID int64, since time.Time, join, nameColumn string) (string, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	topQuery := r.sq.Select(nameColumn).
		From("leads l").
		Join("messages m ON m.id = l.message_id").
		Join(join).
		Where(sq.Eq{"l.tenant_id": tenantID}).
		Where(sq.Eq{"l.superseded_by_generation": nil}).
		Where(sq.GtOrEq{"l.created_at": since}).
		GroupBy(nameColumn).
		OrderBy("COUNT(*) DESC, MAX(l.created_at) DESC").
		Limit(1)

	query, args, err := topQuery.ToSql()
	if err != nil {
		return "", &customerrors.ErrBuildSQLQuery{Operation: "лидер по лидам", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return "", &customerrors.ErrSQLExecution{Operation: "лидер по лидам", Cause: err}
	}
	defer rows.Close()

	var name string

	if rows.Next() {
		if err := rows.Scan(&name); err != nil {
			return "", &customerrors.ErrSQLExecution{Operation: "чтение лидера", Cause: err}
		}
	}

	return name, rows.Err()
}

func (r *AnalyticsRepository) LeadsTimeSeries(ctx context.Context, tenantID int64, granularity string, from, to time.Time) ([]models.TimeSeriesPoint, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	seriesQuery := r.sq.Select("date_trunc('"+granularity+"', created_at) AS bucket", "COUNT(*)").
		From("leads").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"superseded_by_generation": nil}).
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.LtOrEq{"created_at": to}).
		GroupBy("bucket").
		OrderBy("bucket")

	query, args, err := seriesQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "временной ряд лидов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "временной ряд лидов", Cause: err}
	}
	defer rows.Close()

	points := make([]models.TimeSeriesPoint, 0)

	for rows.Next() {
		var point models.TimeSeriesPoint

		if err := rows.Scan(&point.Bucket, &point.Count); err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение точки ряда", Cause: err}
		}

		points = append(points, point)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return points, nil
}

func (r *AnalyticsRepository) StatusCounts(ctx context.Context, tenantID int64) (map[models.LeadStatus]int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	statusQuery := r.sq.Select("status", "COUNT(*)").
		From("leads").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"superseded_by_generation": nil}).
		GroupBy("status")

	query, args, err := statusQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "счётчики статусов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "счётчики статусов", Cause: err}
	}
	defer rows.Close()

	counts := make(map[models.LeadStatus]int64)

	for rows.Next() {
		var (
			status models.LeadStatus
			count  int64
		)

		if err := rows.Scan(&status, &count); err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение счётчика статуса", Cause: err}
		}

		counts[status] = count
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return counts, nil
}

func (r *AnalyticsRepository) ChannelPerformance(ctx context.Context, tenantID int64) ([]models.ChannelPerformance, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	perfQuery := r.sq.Select(
		"c.id", "c.title",
		"COUNT(DISTINCT m.id)",
		"COUNT(DISTINCT l.id)",
		"COALESCE(AVG(l.score), 0)",
		"MAX(l.created_at)").
		From("subscriptions s").
		Join("channels c ON c.id = s.channel_id").
		LeftJoin("messages m ON m.channel_id = c.id").
		LeftJoin("leads l ON l.message_id = m.id AND l.tenant_id = s.tenant_id AND l.superseded_by_generation IS NULL").
		Where(sq.And{sq.Eq{"s.tenant_id": tenantID}, sq.Eq{"s.is_active": true}}).
		GroupBy("c.id", "c.title").
		OrderBy("COUNT(DISTINCT l.id) DESC, MAX(l.created_at) DESC NULLS LAST")

	query, args, err := perfQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "эффективность каналов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "эффективность каналов", Cause: err}
	}
	defer rows.Close()

	items := make([]models.ChannelPerformance, 0)

	for rows.Next() {
		var item models.ChannelPerformance

		err = rows.Scan(&item.ChannelID, &item.Title, &item.TotalMessages, &item.TotalLeads, &item.AvgScore, &item.LastLeadAt)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение эффективности канала", Cause: err}
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return items, nil
}

func (r *AnalyticsRepository) RulePerformance(ctx context.Context, tenantID int64) ([]models.RulePerformance, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	perfQuery := r.sq.Select(
		"r.id", "r.name", "r.is_active",
		"COUNT(l.id)",
		"COALESCE(AVG(l.score), 0)",
		"COUNT(l.id) FILTER (WHERE l.created_at >= NOW() - INTERVAL '7 days')",
		"COUNT(l.id) FILTER (WHERE l.created_at >= NOW() - INTERVAL '30 days')",
		"MAX(l.created_at)").
		From("rules r").
		LeftJoin("leads l ON l.rule_id = r.id AND l.superseded_by_generation IS NULL").
		Where(sq.Eq{"r.tenant_id": tenantID}).
		GroupBy("r.id", "r.name", "r.is_active").
		OrderBy("COUNT(l.id) DESC, MAX(l.created_at) DESC NULLS LAST")

	query, args, err := perfQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "эффективность правил", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "эффективность правил", Cause: err}
	}
	defer rows.Close()

	items := make([]models.RulePerformance, 0)

	for rows.Next() {
		var item models.RulePerformance

		err = rows.Scan(&item.RuleID, &item.Name, &item.IsActive, &item.TotalLeads,
			&item.AvgScore, &item.Leads7d, &item.Leads30d, &item.LastLeadAt)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение эффективности правила", Cause: err}
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return items, nil
}

type PeriodCounts struct {
	Leads    int64
	Messages int64
}

// PeriodCounts считает лиды и сообщения арендатора в полуинтервале [from, to).
func (r *AnalyticsRepository) PeriodCounts(ctx context.Context, tenantID int64, from, to time.Time) (*PeriodCounts, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	counts := &PeriodCounts{}

	leadsQuery := r.sq.Select("COUNT(*)").
		From("leads").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"superseded_by_generation": nil}).
		Where(sq.GtOrEq{"created_at": from}).
		Where(sq.Lt{"created_at": to})

	query, args, err := leadsQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "лиды за период", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&counts.Leads)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "лиды за период", Cause: err}
	}

	messagesQuery := r.sq.Select("COUNT(*)").
		From("messages m").
		Join("subscriptions s ON s.channel_id = m.channel_id").
		Where(sq.And{sq.Eq{"s.tenant_id": tenantID}, sq.Eq{"s.is_active": true}}).
		Where(sq.GtOrEq{"m.posted_at": from}).
		Where(sq.Lt{"m.posted_at": to})

	query, args, err = messagesQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "сообщения за период", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&counts.Messages)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "сообщения за период", Cause: err}
	}

	return counts, nil
}
