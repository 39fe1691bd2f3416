package orm

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/leadstream-dev/go-leadstream/internal/database"
	customerrors "github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

type ProgressRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewProgressRepository(db *database.PostgresDB, txManager *txs.TxManager) *ProgressRepository {
	return &ProgressRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

// Find возвращает позицию анализа пары (правило, канал) или nil,
// если пара ещё не анализировалась.
func (r *ProgressRepository) Find(ctx context.Context, ruleID, channelID int64) (*models.RuleProgress, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("rule_id", "channel_id", "last_message_id", "last_posted_at",
		"messages_evaluated", "leads_created", "updated_at").
		From("rule_progress").
		Where(sq.And{sq.Eq{"rule_id": ruleID}, sq.Eq{"channel_id": channelID}})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск прогресса анализа", Cause: err}
	}

	var progress models.RuleProgress

	err = querier.QueryRow(ctx, query, args...).Scan(
		&progress.RuleID,
		&progress.ChannelID,
		&progress.LastMessageID,
		&progress.LastPostedAt,
		&progress.MessagesEvaluated,
		&progress.LeadsCreated,
		&progress.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск прогресса анализа", Cause: err}
	}

	return &progress, nil
}

// Upsert продвигает позицию и накапливает счётчики пары.
func (r *ProgressRepository) Upsert(ctx context.Context, progress *models.RuleProgress) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	progress.UpdatedAt = time.Now()

	insertQuery := r.sq.Insert("rule_progress").
		Columns("rule_id", "channel_id", "last_message_id", "last_posted_at",
			"messages_evaluated", "leads_created", "updated_at").
		Values(progress.RuleID, progress.ChannelID, progress.LastMessageID, progress.LastPostedAt,
			progress.MessagesEvaluated, progress.LeadsCreated, progress.UpdatedAt).
		Suffix(`ON CONFLICT (rule_id, channel_id) DO UPDATE SET
			last_message_id = EXCLUDED.last_message_id,
			last_posted_at = EXCLUDED.last_posted_at,
			messages_evaluated = rule_progress.messages_evaluated + EXCLUDED.messages_evaluated,
			leads_created = rule_progress.leads_created + EXCLUDED.leads_created,
			updated_at = EXCLUDED.updated_at`)

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение прогресса анализа", Cause: err}
	}

	_, err = querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение прогресса анализа", Cause: err}
	}

	return nil
}

// DeleteByRule сбрасывает весь прогресс правила: после смены промпта
// или порога анализ начинается заново.
func (r *ProgressRepository) DeleteByRule(ctx context.Context, ruleID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("rule_progress").Where(sq.Eq{"rule_id": ruleID})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сброс прогресса правила", Cause: err}
	}

	_, err = querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сброс прогресса правила", Cause: err}
	}

	return nil
}

// DeleteDetached убирает прогресс каналов, выпавших из области правила.
// Оставшиеся каналы сохраняют позицию, новые начнут с ретроспективы.
func (r *ProgressRepository) DeleteDetached(ctx context.Context, ruleID int64, keepChannelIDs []int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("rule_progress").Where(sq.Eq{"rule_id": ruleID})

	if len(keepChannelIDs) > 0 {
		deleteQuery = deleteQuery.Where(sq.NotEq{"channel_id": keepChannelIDs})
	}

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "очистка прогресса отвязанных каналов", Cause: err}
	}

	_, err = querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "очистка прогресса отвязанных каналов", Cause: err}
	}

	return nil
}
