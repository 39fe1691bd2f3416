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

const userColumns = "id, email, full_name, is_active, " +
	"email_notifications_enabled, in_app_notifications_enabled, " +
	"notify_on_new_lead, notify_on_lead_status_change, notify_on_lead_assignment, " +
	"telegram_bot_enabled, telegram_chat_id, telegram_verification_code, telegram_verification_expires, " +
	"created_at, updated_at"

type UserRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewUserRepository(db *database.PostgresDB, txManager *txs.TxManager) *UserRepository {
	return &UserRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id)
}

// FindByVerificationCode ищет пользователя с действующим кодом привязки.
func (r *UserRepository) FindByVerificationCode(ctx context.Context, code string) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(userColumns).
		From("users").
		Where(sq.Eq{"telegram_verification_code": code}).
		Where(sq.Gt{"telegram_verification_expires": time.Now()})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск по коду верификации", Cause: err}
	}

	user, err := scanUserRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrVerificationCodeInvalid{}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск по коду верификации", Cause: err}
	}

	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Eq, id int64) (*models.User, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(userColumns).From("users").Where(where)

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск пользователя", Cause: err}
	}

	user, err := scanUserRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrUserNotFound{UserID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск пользователя", Cause: err}
	}

	return user, nil
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, userID int64, prefs models.NotificationPreferences) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("users").
		Set("email_notifications_enabled", prefs.EmailEnabled).
		Set("in_app_notifications_enabled", prefs.InAppEnabled).
		Set("notify_on_new_lead", prefs.NotifyOnNewLead).
		Set("notify_on_lead_status_change", prefs.NotifyOnLeadStatusChange).
		Set("notify_on_lead_assignment", prefs.NotifyOnLeadAssignment).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление настроек уведомлений", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление настроек уведомлений", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrUserNotFound{UserID: userID}
	}

	return nil
}

// SetVerificationCode записывает одноразовый код привязки бота.
func (r *UserRepository) SetVerificationCode(ctx context.Context, userID int64, code string, expires time.Time) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("users").
		Set("telegram_verification_code", code).
		Set("telegram_verification_expires", expires).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "сохранение кода верификации", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "сохранение кода верификации", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrUserNotFound{UserID: userID}
	}

	return nil
}

// BindChatID завершает привязку: сохраняет chat_id, включает доставку
// в Telegram и гасит использованный код.
func (r *UserRepository) BindChatID(ctx context.Context, userID, chatID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("users").
		Set("telegram_chat_id", chatID).
		Set("telegram_bot_enabled", true).
		Set("telegram_verification_code", nil).
		Set("telegram_verification_expires", nil).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "привязка чата бота", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "привязка чата бота", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrUserNotFound{UserID: userID}
	}

	return nil
}

func (r *UserRepository) UnbindChat(ctx context.Context, userID int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("users").
		Set("telegram_chat_id", nil).
		Set("telegram_bot_enabled", false).
		Set("telegram_verification_code", nil).
		Set("telegram_verification_expires", nil).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": userID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "отключение бота", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "отключение бота", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrUserNotFound{UserID: userID}
	}

	return nil
}

func scanUserRow(row pgx.Row) (*models.User, error) {
	var user models.User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.IsActive,
		&user.Preferences.EmailEnabled,
		&user.Preferences.InAppEnabled,
		&user.Preferences.NotifyOnNewLead,
		&user.Preferences.NotifyOnLeadStatusChange,
		&user.Preferences.NotifyOnLeadAssignment,
		&user.TelegramBot.Enabled,
		&user.TelegramBot.ChatID,
		&user.TelegramBot.VerificationCode,
		&user.TelegramBot.VerificationExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &user, nil
}
