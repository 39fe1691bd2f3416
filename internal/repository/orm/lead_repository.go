package orm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/leadstream-dev/go-leadstream/internal/database"
	customerrors "github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

const (
	leadColumns = "id, tenant_id, message_id, rule_id, score, reasoning, extracted_entities, " +
		"status, assignee_id, generation, superseded_by_generation, created_at, updated_at"

	pgUniqueViolation = "23505"
)

type LeadRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewLeadRepository(db *database.PostgresDB, txManager *txs.TxManager) *LeadRepository {
	return &LeadRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

// Save вставляет лид. Нарушение уникальности (message_id, rule_id)
// возвращается как ErrDuplicateLead: для конвейера это повторная
// доставка задачи, а не сбой.
func (r *LeadRepository) Save(ctx context.Context, lead *models.Lead) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}

	lead.UpdatedAt = now

	entities, err := marshalEntities(lead.Entities)
	if err != nil {
		return err
	}

	insertQuery := r.sq.Insert("leads").
		Columns("tenant_id", "message_id", "rule_id", "score", "reasoning", "extracted_entities",
			"status", "assignee_id", "generation", "superseded_by_generation", "created_at", "updated_at").
		Values(lead.TenantID, lead.MessageID, lead.RuleID, lead.Score, lead.Reasoning, entities,
			lead.Status, lead.AssigneeID, lead.Generation, lead.SupersededByGeneration, lead.CreatedAt, lead.UpdatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание лида", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&lead.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return &customerrors.ErrDuplicateLead{MessageID: lead.MessageID, RuleID: lead.RuleID}
		}

		return &customerrors.ErrSQLExecution{Operation: "создание лида", Cause: err}
	}

	return nil
}

// FindActual возвращает действующий (не вытесненный) лид пары или nil.
func (r *LeadRepository) FindActual(ctx context.Context, messageID, ruleID int64) (*models.Lead, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(leadColumns).
		From("leads").
		Where(sq.And{
			sq.Eq{"message_id": messageID},
			sq.Eq{"rule_id": ruleID},
			sq.Eq{"superseded_by_generation": nil},
		})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск лида пары", Cause: err}
	}

	lead, err := scanLeadRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск лида пары", Cause: err}
	}

	return lead, nil
}

// Supersede помечает лид вытесненным переобработкой указанного поколения.
func (r *LeadRepository) Supersede(ctx context.Context, leadID, byGeneration int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("leads").
		Set("superseded_by_generation", byGeneration).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": leadID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "вытеснение лида", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "вытеснение лида", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrLeadNotFound{LeadID: leadID}
	}

	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*models.Lead, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(leadColumns).
		From("leads").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск лида по ID", Cause: err}
	}

	lead, err := scanLeadRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrLeadNotFound{LeadID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск лида по ID", Cause: err}
	}

	return lead, nil
}

func (r *LeadRepository) filterQuery(base sq.SelectBuilder, filter *models.LeadFilter) sq.SelectBuilder {
	q := base.
		Where(sq.Eq{"l.tenant_id": filter.TenantID}).
		Where(sq.Eq{"l.superseded_by_generation": nil})

	if filter.Status != nil {
		q = q.Where(sq.Eq{"l.status": *filter.Status})
	}

	if filter.RuleID != nil {
		q = q.Where(sq.Eq{"l.rule_id": *filter.RuleID})
	}

	if filter.ChannelID != nil {
		q = q.Where(sq.Eq{"m.channel_id": *filter.ChannelID})
	}

	if filter.AssigneeID != nil {
		q = q.Where(sq.Eq{"l.assignee_id": *filter.AssigneeID})
	}

	if filter.MinScore != nil {
		q = q.Where(sq.GtOrEq{"l.score": *filter.MinScore})
	}

	if filter.DateFrom != nil {
		q = q.Where(sq.GtOrEq{"l.created_at": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(sq.LtOrEq{"l.created_at": *filter.DateTo})
	}

	return q
}

// FindByFilter возвращает страницу актуальных лидов арендатора,
// новые раньше старых.
func (r *LeadRepository) FindByFilter(ctx context.Context, filter *models.LeadFilter) ([]*models.Lead, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.filterQuery(
		r.sq.Select("l.id", "l.tenant_id", "l.message_id", "l.rule_id", "l.score", "l.reasoning",
			"l.extracted_entities", "l.status", "l.assignee_id", "l.generation",
			"l.superseded_by_generation", "l.created_at", "l.updated_at").
			From("leads l").
			Join("messages m ON m.id = l.message_id"),
		filter,
	).OrderBy("l.created_at DESC, l.id DESC")

	if filter.Limit > 0 {
		selectQuery = selectQuery.Limit(uint64(filter.Limit))
	}

	if filter.Skip > 0 {
		selectQuery = selectQuery.Offset(uint64(filter.Skip))
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "выборка лидов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "выборка лидов", Cause: err}
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *LeadRepository) CountByFilter(ctx context.Context, filter *models.LeadFilter) (int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	countQuery := r.filterQuery(
		r.sq.Select("COUNT(*)").
			From("leads l").
			Join("messages m ON m.id = l.message_id"),
		filter,
	)

	query, args, err := countQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "подсчет лидов", Cause: err}
	}

	var count int64

	err = querier.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "подсчет лидов", Cause: err}
	}

	return count, nil
}

// FindDetail собирает карточку лида: сообщение, канал, имя правила
// и имя назначенного пользователя одним запросом.
func (r *LeadRepository) FindDetail(ctx context.Context, tenantID, leadID int64) (*models.LeadDetail, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(
		"l.id", "l.tenant_id", "l.message_id", "l.rule_id", "l.score", "l.reasoning",
		"l.extracted_entities", "l.status", "l.assignee_id", "l.generation",
		"l.superseded_by_generation", "l.created_at", "l.updated_at",
		"m.id", "m.channel_id", "m.tg_message_id", "m.sender_id", "m.text", "m.links",
		"m.views_count", "m.posted_at", "m.ingested_at",
		"c.id", "c.tg_channel_id", "c.username", "c.title", "c.is_active",
		"c.last_collected_at", "c.last_message_id", "c.created_at",
		"r.name", "COALESCE(u.full_name, '')").
		From("leads l").
		Join("messages m ON m.id = l.message_id").
		Join("channels c ON c.id = m.channel_id").
		Join("rules r ON r.id = l.rule_id").
		LeftJoin("users u ON u.id = l.assignee_id").
		Where(sq.And{sq.Eq{"l.id": leadID}, sq.Eq{"l.tenant_id": tenantID}})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "карточка лида", Cause: err}
	}

	var (
		detail   models.LeadDetail
		message  models.Message
		channel  models.Channel
		entities []byte
	)

	err = querier.QueryRow(ctx, query, args...).Scan(
		&detail.ID, &detail.TenantID, &detail.MessageID, &detail.RuleID, &detail.Score, &detail.Reasoning,
		&entities, &detail.Status, &detail.AssigneeID, &detail.Generation,
		&detail.SupersededByGeneration, &detail.CreatedAt, &detail.UpdatedAt,
		&message.ID, &message.ChannelID, &message.TgMessageID, &message.SenderID, &message.Text, &message.Links,
		&message.ViewsCount, &message.PostedAt, &message.IngestedAt,
		&channel.ID, &channel.TgChannelID, &channel.Username, &channel.Title, &channel.IsActive,
		&channel.LastCollectedAt, &channel.LastMessageID, &channel.CreatedAt,
		&detail.RuleName, &detail.AssigneeName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrLeadNotFound{LeadID: leadID}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "карточка лида", Cause: err}
	}

	detail.Entities, err = unmarshalEntities(entities)
	if err != nil {
		return nil, err
	}

	detail.Message = &message
	detail.Channel = &channel

	return &detail, nil
}

func (r *LeadRepository) Update(ctx context.Context, lead *models.Lead) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	lead.UpdatedAt = time.Now()

	updateQuery := r.sq.Update("leads").
		Set("status", lead.Status).
		Set("assignee_id", lead.AssigneeID).
		Set("updated_at", lead.UpdatedAt).
		Where(sq.Eq{"id": lead.ID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление лида", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление лида", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrLeadNotFound{LeadID: lead.ID}
	}

	return nil
}

// Delete удаляет лид; исходное сообщение остаётся.
func (r *LeadRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("leads").Where(sq.Eq{"id": id})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление лида", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление лида", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrLeadNotFound{LeadID: id}
	}

	return nil
}

func (r *LeadRepository) Stats(ctx context.Context, tenantID int64) (*models.LeadStats, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	stats := &models.LeadStats{
		ByStatus: map[models.LeadStatus]int64{
			models.LeadStatusNew:        0,
			models.LeadStatusInProgress: 0,
			models.LeadStatusProcessed:  0,
			models.LeadStatusArchived:   0,
		},
		ByRule:    make(map[string]int64),
		ByChannel: make(map[string]int64),
	}

	summaryQuery := r.sq.Select(
		"COUNT(*)",
		"COALESCE(AVG(score), 0)",
		"COUNT(*) FILTER (WHERE created_at >= NOW() - INTERVAL '24 hours')").
		From("leads").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"superseded_by_generation": nil})

	query, args, err := summaryQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "статистика лидов", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&stats.Total, &stats.AvgScore, &stats.RecentCount)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "статистика лидов", Cause: err}
	}

	if err := r.statusCounts(ctx, querier, tenantID, stats); err != nil {
		return nil, err
	}

	if err := r.groupCounts(ctx, querier, tenantID, "rules r ON r.id = l.rule_id", "r.name", stats.ByRule); err != nil {
		return nil, err
	}

	joinClause := "channels c ON c.id = (SELECT channel_id FROM messages WHERE id = l.message_id)"
	if err := r.groupCounts(ctx, querier, tenantID, joinClause, "c.title", stats.ByChannel); err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *LeadRepository) statusCounts(ctx context.Context, querier txs.Querier, tenantID int64, stats *models.LeadStats) error {
	statusQuery := r.sq.Select("status", "COUNT(*)").
		From("leads").
		Where(sq.Eq{"tenant_id": tenantID}).
		Where(sq.Eq{"superseded_by_generation": nil}).
		GroupBy("status")

	query, args, err := statusQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "статистика по статусам", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "статистика по статусам", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status models.LeadStatus
			count  int64
		)

		if err := rows.Scan(&status, &count); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "чтение статистики статусов", Cause: err}
		}

		stats.ByStatus[status] = count
	}

	return rows.Err()
}

func (r *LeadRepository) groupCounts(ctx context.Context, querier txs.Querier, tenantID int64, join, nameColumn string, dest map[string]int64) error {
	groupQuery := r.sq.Select(nameColumn, "COUNT(*)").
		From("leads l").
		Join(join).
		Where(sq.Eq{"l.tenant_id": tenantID}).
		Where(sq.Eq{"l.superseded_by_generation": nil}).
		GroupBy(nameColumn)

	query, args, err := groupQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "группировка статистики лидов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "группировка статистики лидов", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			count int64
		)

		if err := rows.Scan(&name, &count); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "чтение группировки", Cause: err}
		}

		dest[name] = count
	}

	return rows.Err()
}

func marshalEntities(entities *models.ExtractedEntities) ([]byte, error) {
	if entities == nil {
		return nil, nil
	}

	data, err := json.Marshal(entities)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "сериализация извлеченных сущностей", Cause: err}
	}

	return data, nil
}

func unmarshalEntities(data []byte) (*models.ExtractedEntities, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entities models.ExtractedEntities

	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, &customerrors.ErrSQLScan{Entity: "извлеченных сущностей", Cause: err}
	}

	return &entities, nil
}

func scanLeadRow(row pgx.Row) (*models.Lead, error) {
	var (
		lead     models.Lead
		entities []byte
	)

	err := row.Scan(
		&lead.ID,
		&lead.TenantID,
		&lead.MessageID,
		&lead.RuleID,
		&lead.Score,
		&lead.Reasoning,
		&entities,
		&lead.Status,
		&lead.AssigneeID,
		&lead.Generation,
		&lead.SupersededByGeneration,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Entities, err = unmarshalEntities(entities)
	if err != nil {
		return nil, err
	}

	return &lead, nil
}

func scanLeads(rows pgx.Rows) ([]*models.Lead, error) {
	leads := make([]*models.Lead, 0)

	for rows.Next() {
		var (
			lead     models.Lead
			entities []byte
		)

		err := rows.Scan(
			&lead.ID,
			&lead.TenantID,
			&lead.MessageID,
			&lead.RuleID,
			&lead.Score,
			&lead.Reasoning,
			&entities,
			&lead.Status,
			&lead.AssigneeID,
			&lead.Generation,
			&lead.SupersededByGeneration,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение лида", Cause: err}
		}

		lead.Entities, err = unmarshalEntities(entities)
		if err != nil {
			return nil, err
		}

		leads = append(leads, &lead)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return leads, nil
}
