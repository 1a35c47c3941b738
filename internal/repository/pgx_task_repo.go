package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/okatenko/planhub/internal/db"
)

type Task struct {
	ID            int64      `db:"id"`
	ProjectID     int64      `db:"project_id"`
	Title         string     `db:"title"`
	Status        string     `db:"status"`
	AssigneeID    *int64     `db:"assignee_id"`
	DueDate       *time.Time `db:"due_date"`
	EstimateHours float64    `db:"estimate_hours"`
}

type TaskPatch struct {
	ID            int64      `db:"id"`
	Title         *string    `db:"title"`
	Status        *string    `db:"status"`
	AssigneeID    *int64     `db:"assignee_id"`
	DueDate       *time.Time `db:"due_date"`
	EstimateHours *float64   `db:"estimate_hours"`
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) (int64, error)
	Get(ctx context.Context, taskID int64) (*Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]*Task, error)
	Patch(ctx context.Context, patch *TaskPatch) (*Task, error)
	Delete(ctx context.Context, taskID int64) error
}

type pgxTaskRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &pgxTaskRepository{pool: pool}
}

var taskColumns = []any{"id", "project_id", "title", "status", "assignee_id", "due_date", "estimate_hours"}

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Status, &t.AssigneeID, &t.DueDate, &t.EstimateHours)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (p *pgxTaskRepository) Create(ctx context.Context, task *Task) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("tasks", "project_id", "title", "status", "assignee_id", "due_date", "estimate_hours"),
		im.Values(
			psql.Arg(task.ProjectID),
			psql.Arg(task.Title),
			psql.Arg(task.Status),
			psql.Arg(task.AssigneeID),
			psql.Arg(task.DueDate),
			psql.Arg(task.EstimateHours),
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

func (p *pgxTaskRepository) Get(ctx context.Context, taskID int64) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(taskColumns...),
		sm.From("tasks"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(taskID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	task, err := scanTask(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

func (p *pgxTaskRepository) ListByProject(ctx context.Context, projectID int64) ([]*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(taskColumns...),
		sm.From("tasks"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Task, error) {
		return scanTask(row)
	})
}

func (p *pgxTaskRepository) Patch(ctx context.Context, patch *TaskPatch) (*Task, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 5)

	if patch.Title != nil {
		sets = append(sets, um.SetCol("title").ToArg(*patch.Title))
	}
	if patch.Status != nil {
		sets = append(sets, um.SetCol("status").ToArg(*patch.Status))
	}
	if patch.AssigneeID != nil {
		sets = append(sets, um.SetCol("assignee_id").ToArg(*patch.AssigneeID))
	}
	if patch.DueDate != nil {
		sets = append(sets, um.SetCol("due_date").ToArg(*patch.DueDate))
	}
	if patch.EstimateHours != nil {
		sets = append(sets, um.SetCol("estimate_hours").ToArg(*patch.EstimateHours))
	}

	q := psql.Update(
		um.Table("tasks"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning(taskColumns...),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	task, err := scanTask(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return task, err
}

func (p *pgxTaskRepository) Delete(ctx context.Context, taskID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("tasks"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(taskID))),
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
