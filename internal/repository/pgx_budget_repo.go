package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"

	"github.com/okatenko/planhub/internal/db"
)

// BudgetEntry amounts stay decimal strings end to end; the database does the
// arithmetic so nothing is rounded in Go.
type BudgetEntry struct {
	ID        int64  `db:"id"`
	ProjectID int64  `db:"project_id"`
	Category  string `db:"category"`
	Amount    string `db:"amount"`
	Spent     bool   `db:"spent"`
}

type BudgetSummary struct {
	Allocated string `db:"allocated"`
	Spent     string `db:"spent"`
}

type BudgetRepository interface {
	Create(ctx context.Context, entry *BudgetEntry) (int64, error)
	Get(ctx context.Context, entryID int64) (*BudgetEntry, error)
	ListByProject(ctx context.Context, projectID int64) ([]*BudgetEntry, error)
	Delete(ctx context.Context, entryID int64) error
	Summary(ctx context.Context, projectID int64) (*BudgetSummary, error)
}

type pgxBudgetRepository struct {
	pool *pgxpool.Pool
}

func NewPgxBudgetRepository(pool *pgxpool.Pool) BudgetRepository {
	return &pgxBudgetRepository{pool: pool}
}

func (p *pgxBudgetRepository) Create(ctx context.Context, entry *BudgetEntry) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("budget_entries", "project_id", "category", "amount", "spent"),
		im.Values(psql.Arg(entry.ProjectID), psql.Arg(entry.Category), psql.Arg(entry.Amount), psql.Arg(entry.Spent)),
		im.Returning("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (p *pgxBudgetRepository) Get(ctx context.Context, entryID int64) (*BudgetEntry, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "project_id", "category", "amount::text", "spent"),
		sm.From("budget_entries"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(entryID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	entry := &BudgetEntry{}
	err = e.QueryRow(ctx, sql, args...).Scan(&entry.ID, &entry.ProjectID, &entry.Category, &entry.Amount, &entry.Spent)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (p *pgxBudgetRepository) ListByProject(ctx context.Context, projectID int64) ([]*BudgetEntry, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "project_id", "category", "amount::text", "spent"),
		sm.From("budget_entries"),
		sm.Where(psql.Quote("project_id").EQ(psql.Arg(projectID))),
		sm.OrderBy("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*BudgetEntry, error) {
		entry := &BudgetEntry{}
		if err = row.Scan(&entry.ID, &entry.ProjectID, &entry.Category, &entry.Amount, &entry.Spent); err != nil {
			return nil, err
		}
		return entry, nil
	})
}

func (p *pgxBudgetRepository) Delete(ctx context.Context, entryID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("budget_entries"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(entryID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgxBudgetRepository) Summary(ctx context.Context, projectID int64) (*BudgetSummary, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(
			"COALESCE(SUM(amount), 0)::text AS allocated",
			"COALESCE(SUM(amount) FILTER (WHERE spent), 0)::text AS spent",
		),
		sm.From("budget_entries"),
		sm.Where(psql.Quote("project_id").EQ(psql.Arg(projectID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	summary := &BudgetSummary{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&summary.Allocated, &summary.Spent); err != nil {
		return nil, err
	}
	return summary, nil
}
