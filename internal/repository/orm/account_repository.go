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

const accountColumns = "id, tenant_id, phone, session_ref, status, created_at, updated_at"

type AccountRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewAccountRepository(db *database.PostgresDB, txManager *txs.TxManager) *AccountRepository {
	return &AccountRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *AccountRepository) Save(ctx context.Context, account *models.TelegramAccount) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}

	account.UpdatedAt = now

	insertQuery := r.sq.Insert("telegram_accounts").
		Columns("tenant_id", "phone", "session_ref", "status", "created_at", "updated_at").
		Values(account.TenantID, account.Phone, account.SessionRef, account.Status,
			account.CreatedAt, account.UpdatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание аккаунта", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&account.ID)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание аккаунта", Cause: err}
	}

	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, tenantID, id int64) (*models.TelegramAccount, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(accountColumns).
		From("telegram_accounts").
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"tenant_id": tenantID}})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск аккаунта", Cause: err}
	}

	var account models.TelegramAccount

	err = querier.QueryRow(ctx, query, args...).Scan(
		&account.ID,
		&account.TenantID,
		&account.Phone,
		&account.SessionRef,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrAccountNotFound{AccountID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск аккаунта", Cause: err}
	}

	return &account, nil
}

func (r *AccountRepository) FindByTenant(ctx context.Context, tenantID int64) ([]*models.TelegramAccount, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(accountColumns).
		From("telegram_accounts").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("id")

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "список аккаунтов", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "список аккаунтов", Cause: err}
	}
	defer rows.Close()

	accounts := make([]*models.TelegramAccount, 0)

	for rows.Next() {
		var account models.TelegramAccount

		err = rows.Scan(
			&account.ID,
			&account.TenantID,
			&account.Phone,
			&account.SessionRef,
			&account.Status,
			&account.CreatedAt,
			&account.UpdatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение аккаунта", Cause: err}
		}

		accounts = append(accounts, &account)
	}

	if err = rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return accounts, nil
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id int64, status models.TelegramAccountStatus, sessionRef string) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	updateQuery := r.sq.Update("telegram_accounts").
		Set("status", status).
		Set("session_ref", sessionRef).
		Set("updated_at", time.Now()).
		Where(sq.Eq{"id": id})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление статуса аккаунта", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление статуса аккаунта", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, tenantID, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("telegram_accounts").
		Where(sq.And{sq.Eq{"id": id}, sq.Eq{"tenant_id": tenantID}})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление аккаунта", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление аккаунта", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrAccountNotFound{AccountID: id}
	}

	return nil
}
