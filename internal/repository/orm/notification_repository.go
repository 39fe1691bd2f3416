package orm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/leadstream-dev/go-leadstream/internal/database"
	customerrors "github.com/leadstream-dev/go-leadstream/internal/domain/errors"
	"github.com/leadstream-dev/go-leadstream/internal/domain/models"
	"github.com/leadstream-dev/go-leadstream/pkg/txs"
)

const notificationColumns = "id, tenant_id, type, title, message, payload, is_read, created_at"

type NotificationRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewNotificationRepository(db *database.PostgresDB, txManager *txs.TxManager) *NotificationRepository {
	return &NotificationRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *NotificationRepository) Save(ctx context.Context, notification *models.Notification) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}

	var payload []byte

	if notification.Payload != nil {
		data, err := json.Marshal(notification.Payload)
		if err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сериализация payload уведомления", Cause: err}
		}

		payload = data
	}

	insertQuery := r.sq.Insert("notifications").
		Columns("tenant_id", "type", "title", "message", "payload", "is_read", "created_at").
		Values(notification.TenantID, notification.Type, notification.Title, notification.Message,
			payload, notification.IsRead, notification.CreatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание уведомления", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&notification.ID)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание уведомления", Cause: err}
	}

	return nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, tenantID, id int64) (*models.Notification, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(notificationColumns).
		From("notifications").
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"tenant_id": tenantID}})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск уведомления", Cause: err}
	}

	notification, err := scanNotificationRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrNotificationNotFound{NotificationID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск уведомления", Cause: err}
	}

	return notification, nil
}

func (r *NotificationRepository) FindByTenant(ctx context.Context, tenantID int64, isRead *bool, skip, limit int) ([]*models.Notification, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(notificationColumns).
		From("notifications").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC, id DESC")

	if isRead != nil {
		selectQuery = selectQuery.Where(sq.Eq{"is_read": *isRead})
	}

	if limit > 0 {
		selectQuery = selectQuery.Limit(uint64(limit))
	}

	if skip > 0 {
		selectQuery = selectQuery.Offset(uint64(skip))
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "список уведомлений", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "список уведомлений", Cause: err}
	}
	defer rows.Close()

	notifications := make([]*models.Notification, 0)

	for rows.Next() {
		notification, err := scanNotificationRow(rows)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение уведомления", Cause: err}
		}

		notifications = append(notifications, notification)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return notifications, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, tenantID, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("notifications").
		Set("is_read", true).
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"tenant_id": tenantID}})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "пометка уведомления прочитанным", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "пометка уведомления прочитанным", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrNotificationNotFound{NotificationID: id}
	}

	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, tenantID int64) (int64, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("notifications").
		Set("is_read", true).
		Where(sq.And{sq.Eq{"tenant_id": tenantID}, sq.Eq{"is_read": false}})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return 0, &customerrors.ErrBuildSQLQuery{Operation: "пометка всех уведомлений", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return 0, &customerrors.ErrSQLExecution{Operation: "пометка всех уведомлений", Cause: err}
	}

	return result.RowsAffected(), nil
}

func (r *NotificationRepository) Delete(ctx context.Context, tenantID, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("notifications").
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"tenant_id": tenantID}})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление уведомления", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление уведомления", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrNotificationNotFound{NotificationID: id}
	}

	return nil
}

func (r *NotificationRepository) Stats(ctx context.Context, tenantID int64) (*models.NotificationStats, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	stats := &models.NotificationStats{
		ByType: make(map[models.NotificationType]int64),
	}

	statsQuery := r.sq.Select("type", "COUNT(*)", "COUNT(*) FILTER (WHERE NOT is_read)").
		From("notifications").
		Where(sq.Eq{"tenant_id": tenantID}).
		GroupBy("type")

	query, args, err := statsQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "статистика уведомлений", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "статистика уведомлений", Cause: err}
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind   models.NotificationType
			total  int64
			unread int64
		)

		if err := rows.Scan(&kind, &total, &unread); err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение статистики уведомлений", Cause: err}
		}

		stats.ByType[kind] = total
		stats.Total += total
		stats.Unread += unread
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return stats, nil
}

func scanNotificationRow(row pgx.Row) (*models.Notification, error) {
	var (
		notification models.Notification
		payload      []byte
	)

	err := row.Scan(
		&notification.ID,
		&notification.TenantID,
		&notification.Type,
		&notification.Title,
		&notification.Message,
		&payload,
		&notification.IsRead,
		&notification.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &notification.Payload); err != nil {
			return nil, &customerrors.ErrSQLScan{Entity: "payload уведомления", Cause: err}
		}
	}

	return &notification, nil
}
