package repository

import (
	"context"
	"time"

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

type TimeEntry struct {
	ID     int64     `db:"id"`
	TaskID int64     `db:"task_id"`
	UserID int64     `db:"user_id"`
	Date   time.Time `db:"entry_date"`
	Hours  float64   `db:"hours"`
	Note   string    `db:"note"`
}

type UserHours struct {
	UserID   int64   `db:"user_id"`
	FullName string  `db:"full_name"`
	Hours    float64 `db:"hours"`
}

type TimeEntryRepository interface {
	Create(ctx context.Context, entry *TimeEntry) (int64, error)
	Get(ctx context.Context, entryID int64) (*TimeEntry, error)
	ListByTask(ctx context.Context, taskID int64) ([]*TimeEntry, error)
	Delete(ctx context.Context, entryID int64) error
	// ProjectTotals aggregates logged hours across all tasks of a project,
	// grouped by the user who logged them.
	ProjectTotals(ctx context.Context, projectID int64) ([]*UserHours, error)
}

type pgxTimeEntryRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTimeEntryRepository(pool *pgxpool.Pool) TimeEntryRepository {
	return &pgxTimeEntryRepository{pool: pool}
}

func (p *pgxTimeEntryRepository) Create(ctx context.Context, entry *TimeEntry) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("time_entries", "task_id", "user_id", "entry_date", "hours", "note"),
		im.Values(
			psql.Arg(entry.TaskID),
			psql.Arg(entry.UserID),
			psql.Arg(entry.Date),
			psql.Arg(entry.Hours),
			psql.Arg(entry.Note),
		),
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

func (p *pgxTimeEntryRepository) Get(ctx context.Context, entryID int64) (*TimeEntry, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "task_id", "user_id", "entry_date", "hours", "note"),
		sm.From("time_entries"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(entryID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	entry := &TimeEntry{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&entry.ID,
		&entry.TaskID,
		&entry.UserID,
		&entry.Date,
		&entry.Hours,
		&entry.Note,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return entry, nil
}

func (p *pgxTimeEntryRepository) ListByTask(ctx context.Context, taskID int64) ([]*TimeEntry, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "task_id", "user_id", "entry_date", "hours", "note"),
		sm.From("time_entries"),
		sm.Where(psql.Quote("task_id").EQ(psql.Arg(taskID))),
		sm.OrderBy("entry_date"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*TimeEntry, error) {
		entry := &TimeEntry{}
		if err = row.Scan(&entry.ID, &entry.TaskID, &entry.UserID, &entry.Date, &entry.Hours, &entry.Note); err != nil {
			return nil, err
		}
		return entry, nil
	})
}

func (p *pgxTimeEntryRepository) Delete(ctx context.Context, entryID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("time_entries"),
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

func (p *pgxTimeEntryRepository) ProjectTotals(ctx context.Context, projectID int64) ([]*UserHours, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("te.user_id", "u.full_name", "SUM(te.hours) AS hours"),
		sm.From("time_entries").As("te"),
		sm.InnerJoin("tasks").As("t").On(psql.Quote("t", "id").EQ(psql.Quote("te", "task_id"))),
		sm.InnerJoin("users").As("u").On(psql.Quote("u", "id").EQ(psql.Quote("te", "user_id"))),
		sm.Where(psql.Quote("t", "project_id").EQ(psql.Arg(projectID))),
		sm.GroupBy("te.user_id"),
		sm.GroupBy("u.full_name"),
		sm.OrderBy("te.user_id"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*UserHours, error) {
		uh := &UserHours{}
		if err = row.Scan(&uh.UserID, &uh.FullName, &uh.Hours); err != nil {
			return nil, err
		}
		return uh, nil
	})
}
