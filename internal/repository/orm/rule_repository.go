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

const ruleColumns = "id, tenant_id, name, description, prompt, threshold, channel_ids, is_active, schedule, generation, created_at, updated_at"

type RuleRepository struct {
	db        *database.PostgresDB
	sq        sq.StatementBuilderType
	txManager *txs.TxManager
}

func NewRuleRepository(db *database.PostgresDB, txManager *txs.TxManager) *RuleRepository {
	return &RuleRepository{
		db:        db,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		txManager: txManager,
	}
}

func (r *RuleRepository) Save(ctx context.Context, rule *models.Rule) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	now := time.Now()
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	insertQuery := r.sq.Insert("rules").
		Columns("tenant_id", "name", "description", "prompt", "threshold", "channel_ids",
			"is_active", "schedule", "generation", "created_at", "updated_at").
		Values(rule.TenantID, rule.Name, rule.Description, rule.Prompt, rule.Threshold, rule.ChannelIDs,
			rule.IsActive, rule.Schedule, rule.Generation, rule.CreatedAt, rule.UpdatedAt).
		Suffix("RETURNING id")

	query, args, err := insertQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "создание правила", Cause: err}
	}

	err = querier.QueryRow(ctx, query, args...).Scan(&rule.ID)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "создание правила", Cause: err}
	}

	return nil
}

func (r *RuleRepository) FindByID(ctx context.Context, id int64) (*models.Rule, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(ruleColumns).
		From("rules").
		Where(sq.Eq{"id": id})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "поиск правила по ID", Cause: err}
	}

	rule, err := scanRuleRow(querier.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &customerrors.ErrRuleNotFound{RuleID: id}
		}

		return nil, &customerrors.ErrSQLExecution{Operation: "поиск правила по ID", Cause: err}
	}

	return rule, nil
}

func (r *RuleRepository) FindByTenant(ctx context.Context, tenantID int64, isActive *bool) ([]*models.Rule, error) {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	selectQuery := r.sq.Select(ruleColumns).
		From("rules").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at DESC, id DESC")

	if isActive != nil {
		selectQuery = selectQuery.Where(sq.Eq{"is_active": *isActive})
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "список правил арендатора", Cause: err}
	}

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "список правил арендатора", Cause: err}
	}
	defer rows.Close()

	return scanRules(rows)
}

// FindDue постранично перебирает активные правила для планировщика.
func (r *RuleRepository) FindDue(ctx context.Context, limit, offset int) ([]*models.Rule, error) {
	selectQuery := r.sq.Select(ruleColumns).
		From("rules").
		Where(sq.Eq{"is_active": true}).
		OrderBy("id ASC")

	if limit > 0 {
		selectQuery = selectQuery.Limit(uint64(limit))
	}

	if offset > 0 {
		selectQuery = selectQuery.Offset(uint64(offset))
	}

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return nil, &customerrors.ErrBuildSQLQuery{Operation: "выборка правил для планировщика", Cause: err}
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "выборка правил для планировщика", Cause: err}
	}
	defer rows.Close()

	return scanRules(rows)
}

func (r *RuleRepository) Update(ctx context.Context, rule *models.Rule) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	rule.UpdatedAt = time.Now()

	updateQuery := r.sq.Update("rules").
		Set("name", rule.Name).
		Set("description", rule.Description).
		Set("prompt", rule.Prompt).
		Set("threshold", rule.Threshold).
		Set("channel_ids", rule.ChannelIDs).
		Set("is_active", rule.IsActive).
		Set("schedule", rule.Schedule).
		Set("generation", rule.Generation).
		Set("updated_at", rule.UpdatedAt).
		Where(sq.Eq{"id": rule.ID})

	query, args, err := updateQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "обновление правила", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "обновление правила", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrRuleNotFound{RuleID: rule.ID}
	}

	return nil
}

// Delete удаляет правило; его лиды и прогресс уходят каскадом по FK.
func (r *RuleRepository) Delete(ctx context.Context, id int64) error {
	querier := txs.GetQuerier(ctx, r.db.Pool)

	deleteQuery := r.sq.Delete("rules").Where(sq.Eq{"id": id})

	query, args, err := deleteQuery.ToSql()
	if err != nil {
		return &customerrors.ErrBuildSQLQuery{Operation: "удаление правила", Cause: err}
	}

	result, err := querier.Exec(ctx, query, args...)
	if err != nil {
		return &customerrors.ErrSQLExecution{Operation: "удаление правила", Cause: err}
	}

	if result.RowsAffected() == 0 {
		return &customerrors.ErrRuleNotFound{RuleID: id}
	}

	return nil
}

func scanRuleRow(row pgx.Row) (*models.Rule, error) {
	var rule models.Rule

	err := row.Scan(
		&rule.ID,
		&rule.TenantID,
		&rule.Name,
		&rule.Description,
		&rule.Prompt,
		&rule.Threshold,
		&rule.ChannelIDs,
		&rule.IsActive,
		&rule.Schedule,
		&rule.Generation,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

func scanRules(rows pgx.Rows) ([]*models.Rule, error) {
	rules := make([]*models.Rule, 0)

	for rows.Next() {
		var rule models.Rule

		err := rows.Scan(
			&rule.ID,
			&rule.TenantID,
			&rule.Name,
			&rule.Description,
			&rule.Prompt,
			&rule.Threshold,
			&rule.ChannelIDs,
			&rule.IsActive,
			&rule.Schedule,
			&rule.Generation,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		)
		if err != nil {
			return nil, &customerrors.ErrSQLExecution{Operation: "чтение правила", Cause: err}
		}

		rules = append(rules, &rule)
	}

	if err := rows.Err(); err != nil {
		return nil, &customerrors.ErrSQLExecution{Operation: "обработка результатов", Cause: err}
	}

	return rules, nil
}
