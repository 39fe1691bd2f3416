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

// FailureRepository хранит эскалированные ошибки оценки, чтобы
// оператор мог увидеть, какие пары (сообщение, правило) модель
// так и не смогла корректно оценить.
type FailureRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewFailureRepository(db *database.PostgresDB, txManager *txs.TxManager) *FailureRepository {
	return &FailureRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *FailureRepository) Save(ctx context.Context, failure *models.EvaluationFailure) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	if failure.CreatedAt.IsZero() {
		failure.CreatedAt = time.Now()
	}

	insertQuery := r.sq.Insert("evaluation_failures").
		Columns("message_id", "rule_id", "reason", "raw_response", "created_at").
		Values(failure.MessageID, failure.RuleID, failure.Reason, failure.RawResponse, failure.CreatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "запись ошибки оценки", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&failure.ID)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "запись ошибки оценки", Cause: err}
	}

	return nil
}
