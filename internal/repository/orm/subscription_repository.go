package orm

import (
	"context"
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

const subscriptionColumns = "id, tenant_id, channel_id, telegram_account_id, is_active, tags, created_at"

type SubscriptionRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewSubscriptionRepository(db *database.PostgresDB, txManager *txs.TxManager) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *SubscriptionRepository) Save(ctx context.Context, subscription *models.Subscription) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if subscription.CreatedAt.IsZero() {
		subscription.CreatedAt = time.Now()
	}

	insertQuery := r.sq.Insert("subscriptions").
		Columns("tenant_id", "channel_id", "telegram_account_id", "is_active", "tags", "created_at").
		Values(subscription.TenantID, subscription.ChannelID, subscription.TelegramAccountID,
			subscription.IsActive, subscription.Tags, subscription.CreatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание подписки", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&subscription.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return &customerrors.ErrSubscriptionAlreadyExists{ChannelID: subscription.ChannelID}
		}

		return &customerrors.ErrSQLExecution{Operation: "создание подписки", Cause: err}
	}

	return nil
}

func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*models.Subscription, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(subscriptionColumns).
		From("subscriptions").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск подписки по ID", Cause: err}
	}

	var subscription models.Subscription

	err = querier.QueryRow(ctx, query, args...).Scan(
		&subscription.ID,
		&subscription.TenantID,
		&subscription.ChannelID,
		&subscription.TelegramAccountID,
		&subscription.IsActive,
		&subscription.Tags,
		&subscription.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrSubscriptionNotFound{SubscriptionID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск подписки по ID", Cause: err}
	}

	return &subscription, nil
}

func (r *SubscriptionRepository) FindByTenant(ctx context.Context, tenantID int64, onlyActive bool) ([]*models.Subscription, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(subscriptionColumns).
		From("subscriptions").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("id")

	if onlyActive {
		selectQuery = selectQuery.Where(sq.Eq{"is_active": true})
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "список подписок", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "список подписок", Cause: err}
	}
	defer rows.Close()

	subscriptions := make([]*models.Subscription, 0)

	for rows.Next() {
		var subscription models.Subscription

		err = rows.Scan(
			&subscription.ID,
			&subscription.TenantID,
			&subscription.ChannelID,
			&subscription.TelegramAccountID,
			&subscription.IsActive,
			&subscription.Tags,
			&subscription.CreatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение подписки", Cause: err}
		}

		subscriptions = append(subscriptions, &subscription)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return subscriptions, nil
}

// SubscribedChannelIDs возвращает ID каналов активных подписок
// арендатора: это и область сбора, и допустимая область правил.
func (r *SubscriptionRepository) SubscribedChannelIDs(ctx context.Context, tenantID int64) ([]int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select("channel_id").
		From("subscriptions").
		Where(sq.And{sq.Eq{"tenant_id": tenantID}, sq.Eq{"is_active": true}}).
		OrderBy("channel_id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "каналы подписок", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "каналы подписок", Cause: err}
	}
	defer rows.Close()

	channelIDs := make([]int64, 0)

	for rows.Next() {
		var channelID int64

		if err := rows.Scan(&channelID); err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение ID канала", Cause: err}
		}

		channelIDs = append(channelIDs, channelID)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return channelIDs, nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, subscription *models.Subscription) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("subscriptions").
		Set("is_active", subscription.IsActive).
		Set("tags", subscription.Tags).
		Where(sq.Eq{"id": subscription.ID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление подписки", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление подписки", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrSubscriptionNotFound{SubscriptionID: subscription.ID}
	}

	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("subscriptions").Where(sq.Eq{"id": id})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление подписки", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление подписки", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrSubscriptionNotFound{SubscriptionID: id}
	}

	return nil
}
