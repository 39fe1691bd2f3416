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

const messageColumns = "id, channel_id, tg_message_id, sender_id, text, links, views_count, posted_at, ingested_at"

type MessageRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewMessageRepository(db *database.PostgresDB, txManager *txs.TxManager) *MessageRepository {
	return &MessageRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

// Save вставляет сообщение. Повтор пары (channel_id, tg_message_id)
// не ошибка: сборщик может перечитать хвост канала, вторая вставка
// молча пропускается.
func (r *MessageRepository) Save(ctx context.Context, message *models.Message) (bool, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if message.IngestedAt.IsZero() {
		message.IngestedAt = time.Now()
	}

	insertQuery := r.sq.Insert("messages").
		Columns("channel_id", "tg_message_id", "sender_id", "text", "links", "views_count", "posted_at", "ingested_at").
		Values(message.ChannelID, message.TgMessageID, message.SenderID, message.Text,
			message.Links, message.ViewsCount, message.PostedAt, message.IngestedAt).
		Suffix("ON CONFLICT (channel_id, tg_message_id) DO NOTHING RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return false, &customerrors.ErrBuildSQLQuery{Operation: "вставка сообщения", Cause: err}
	}

	var id int64

	err = querier.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, &customerrors.ErrSQLExecution{Operation: "сохранение сообщения", Cause: err}
	}

	message.ID = id

	return true, nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id int64) (*models.Message, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(messageColumns).
		From("messages").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск сообщения по ID", Cause: err}
	}

	var message models.Message

	err = querier.QueryRow(ctx, query, args...).Scan(
		&message.ID,
		&message.ChannelID,
		&message.TgMessageID,
		&message.SenderID,
		&message.Text,
		&message.Links,
		&message.ViewsCount,
		&message.PostedAt,
		&message.IngestedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrMessageNotFound{MessageID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск сообщения по ID", Cause: err}
	}

	return &message, nil
}

// FindForEvaluation возвращает очередную пачку сообщений канала для
// оценки: строго после курсора (after, afterID), но не раньше since —
// нижней границы окна ретроспективы. Старые раньше новых. Курсор
// составной: у Telegram секундная точность posted_at, и сообщения с
// одинаковой отметкой, разрезанные границей порции, терялись бы при
// сравнении только по времени.
func (r *MessageRepository) FindForEvaluation(ctx context.Context, channelID int64, after *time.Time, afterID int64, since time.Time, limit int) ([]*models.Message, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(messageColumns).
		From("messages").
		Where(sq.Eq{"channel_id": channelID}).
		Where(sq.GtOrEq{"posted_at": since}).
		OrderBy("posted_at ASC, id ASC")

	if after != nil {
		selectQuery = selectQuery.Where(sq.Expr("(posted_at, id) > (?, ?)", *after, afterID))
	}

	if limit > 0 {
		selectQuery = selectQuery.Limit(uint64(limit))
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "выборка сообщений для оценки", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "выборка сообщений для оценки", Cause: err}
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]*models.Message, error) {
	messages := make([]*models.Message, 0)

	for rows.Next() {
		var message models.Message

		err := rows.Scan(
			&message.ID,
			&message.ChannelID,
			&message.TgMessageID,
			&message.SenderID,
			&message.Text,
			&message.Links,
			&message.ViewsCount,
			&message.PostedAt,
			&message.IngestedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение сообщения", Cause: err}
		}

		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return messages, nil
}
