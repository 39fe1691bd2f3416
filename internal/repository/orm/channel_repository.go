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

const channelColumns = "id, tg_channel_id, username, title, is_active, last_collected_at, last_message_id, created_at"

type ChannelRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewChannelRepository(db *database.PostgresDB, txManager *txs.TxManager) *ChannelRepository {
	return &ChannelRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

// Save создаёт канал или обновляет метаданные существующего
// (по tg_channel_id). ID записывается обратно в модель.
func (r *ChannelRepository) Save(ctx context.Context, channel *models.Channel) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	insertQuery := r.sq.Insert("channels").
		Columns("tg_channel_id", "username", "title", "is_active").
		Values(channel.TgChannelID, channel.Username, channel.Title, channel.IsActive).
		Suffix("ON CONFLICT (tg_channel_id) DO UPDATE SET username = EXCLUDED.username, title = EXCLUDED.title RETURNING id, created_at")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение канала", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&channel.ID, &channel.CreatedAt)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение канала", Cause: err}
	}

	return nil
}

func (r *ChannelRepository) FindByID(ctx context.Context, id int64) (*models.Channel, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(channelColumns).
		From("channels").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск канала по ID", Cause: err}
	}

	channel, err := scanChannelRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrChannelNotFound{ChannelID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск канала по ID", Cause: err}
	}

	return channel, nil
}

// FindActive возвращает каналы, у которых есть хотя бы одна активная
// подписка: только их имеет смысл собирать.
func (r *ChannelRepository) FindActive(ctx context.Context) ([]*models.Channel, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(
		"c.id", "c.tg_channel_id", "c.username", "c.title", "c.is_active",
		"c.last_collected_at", "c.last_message_id", "c.created_at").
		From("channels c").
		Where(sq.Eq{"c.is_active": true}).
		Where("EXISTS (SELECT 1 FROM subscriptions s WHERE s.channel_id = c.id AND s.is_active)").
		OrderBy("c.id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск активных каналов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "поиск активных каналов", Cause: err}
	}
	defer rows.Close()

	channels := make([]*models.Channel, 0)

	for rows.Next() {
		var channel models.Channel

		err = rows.Scan(
			&channel.ID,
			&channel.TgChannelID,
			&channel.Username,
			&channel.Title,
			&channel.IsActive,
			&channel.LastCollectedAt,
			&channel.LastMessageID,
			&channel.CreatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение канала", Cause: err}
		}

		channels = append(channels, &channel)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return channels, nil
}

// UpdateCollectState фиксирует позицию сборщика после успешной пачки.
func (r *ChannelRepository) UpdateCollectState(ctx context.Context, channelID, lastMessageID int64, collectedAt time.Time) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("channels").
		Set("last_message_id", lastMessageID).
		Set("last_collected_at", collectedAt).
		Where(sq.Eq{"id": channelID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление позиции сборщика", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление позиции сборщика", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrChannelNotFound{ChannelID: channelID}
	}

	return nil
}

func scanChannelRow(row pgx.Row) (*models.Channel, error) {
	var channel models.Channel

	err := row.Scan(
		&channel.ID,
		&channel.TgChannelID,
		&channel.Username,
		&channel.Title,
		&channel.IsActive,
		&channel.LastCollectedAt,
		&channel.LastMessageID,
		&channel.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &channel, nil
}
