package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
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

type Project struct {
	ID          int64      `db:"id"`
	TeamID      int64      `db:"team_id"`
	Name        string     `db:"name"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	Health      string     `db:"health"`
	StartDate   *time.Time `db:"start_date"`
	EndDate     *time.Time `db:"end_date"`
}

type ProjectPatch struct {
	ID          int64      `db:"id"`
	Name        *string    `db:"name"`
	Description *string    `db:"description"`
	Status      *string    `db:"status"`
	StartDate   *time.Time `db:"start_date"`
	EndDate     *time.Time `db:"end_date"`
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) (int64, error)
	Get(ctx context.Context, projectID int64) (*Project, error)
	ListAll(ctx context.Context) ([]*Project, error)
	ListForUser(ctx context.Context, userID int64) ([]*Project, error)
	Patch(ctx context.Context, patch *ProjectPatch) (*Project, error)
	SetHealth(ctx context.Context, projectID int64, health string) (*Project, error)
	Delete(ctx context.Context, projectID int64) error
	// FindOwnerTeam is the project half of the access resolver's store
	// contract: project id in, owning team id out.
	FindOwnerTeam(ctx context.Context, projectID int64) (int64, error)
}

type pgxProjectRepository struct {
	pool *pgxpool.Pool
}

func NewPgxProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgxProjectRepository{pool: pool}
}

var projectColumns = []any{"id", "team_id", "name", "description", "status", "health", "start_date", "end_date"}

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(&p.ID, &p.TeamID, &p.Name, &p.Description, &p.Status, &p.Health, &p.StartDate, &p.EndDate)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *pgxProjectRepository) Create(ctx context.Context, project *Project) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("projects", "team_id", "name", "description", "status", "health", "start_date", "end_date"),
		im.Values(
			psql.Arg(project.TeamID),
			psql.Arg(project.Name),
			psql.Arg(project.Description),
			psql.Arg(project.Status),
			psql.Arg(project.Health),
			psql.Arg(project.StartDate),
			psql.Arg(project.EndDate),
		),
		im.Returning("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *pgxProjectRepository) Get(ctx context.Context, projectID int64) (*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(projectColumns...),
		sm.From("projects"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(projectID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	project, err := scanProject(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return project, err
}

func (p *pgxProjectRepository) ListAll(ctx context.Context) ([]*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(projectColumns...),
		sm.From("projects"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Project, error) {
		return scanProject(row)
	})
}

func (p *pgxProjectRepository) ListForUser(ctx context.Context, userID int64) ([]*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("p.id", "p.team_id", "p.name", "p.description", "p.status", "p.health", "p.start_date", "p.end_date"),
		sm.From("projects").As("p"),
		sm.InnerJoin("memberships").As("m").On(psql.Quote("m", "team_id").EQ(psql.Quote("p", "team_id"))),
		sm.Where(psql.Quote("m", "user_id").EQ(psql.Arg(userID))),
		sm.OrderBy("p.id"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Project, error) {
		return scanProject(row)
	})
}

func (p *pgxProjectRepository) Patch(ctx context.Context, patch *ProjectPatch) (*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 5)

	if patch.Name != nil {
		sets = append(sets, um.SetCol("name").ToArg(*patch.Name))
	}
	if patch.Description != nil {
		sets = append(sets, um.SetCol("description").ToArg(*patch.Description))
	}
	if patch.Status != nil {
		sets = append(sets, um.SetCol("status").ToArg(*patch.Status))
	}
	if patch.StartDate != nil {
		sets = append(sets, um.SetCol("start_date").ToArg(*patch.StartDate))
	}
	if patch.EndDate != nil {
		sets = append(sets, um.SetCol("end_date").ToArg(*patch.EndDate))
	}

	q := psql.Update(
		um.Table("projects"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning(projectColumns...),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	project, err := scanProject(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return project, err
}

func (p *pgxProjectRepository) SetHealth(ctx context.Context, projectID int64, health string) (*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("projects"),
		um.SetCol("health").ToArg(health),
		um.Where(psql.Quote("id").EQ(psql.Arg(projectID))),
		um.Returning(projectColumns...),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	project, err := scanProject(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return project, err
}

func (p *pgxProjectRepository) Delete(ctx context.Context, projectID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("projects"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(projectID))),
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

func (p *pgxProjectRepository) FindOwnerTeam(ctx context.Context, projectID int64) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("team_id"),
		sm.From("projects"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(projectID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var teamID int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&teamID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return teamID, nil
}
