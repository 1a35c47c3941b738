package repository

import (
	"context"

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

type Stakeholder struct {
	ID           int64  `db:"id"`
	ProjectID    int64  `db:"project_id"`
	Name         string `db:"name"`
	Organization string `db:"organization"`
	Email        string `db:"email"`
	Influence    string `db:"influence"`
}

type StakeholderPatch struct {
	ID           int64   `db:"id"`
	Name         *string `db:"name"`
	Organization *string `db:"organization"`
	Email        *string `db:"email"`
	Influence    *string `db:"influence"`
}

type StakeholderRepository interface {
	Create(ctx context.Context, s *Stakeholder) (int64, error)
	Get(ctx context.Context, stakeholderID int64) (*Stakeholder, error)
	ListByProject(ctx context.Context, projectID int64) ([]*Stakeholder, error)
	Patch(ctx context.Context, patch *StakeholderPatch) (*Stakeholder, error)
	Delete(ctx context.Context, stakeholderID int64) error
}

type pgxStakeholderRepository struct {
	pool *pgxpool.Pool
}

func NewPgxStakeholderRepository(pool *pgxpool.Pool) StakeholderRepository {
	return &pgxStakeholderRepository{pool: pool}
}

var stakeholderColumns = []any{"id", "project_id", "name", "organization", "email", "influence"}

func scanStakeholder(row pgx.Row) (*Stakeholder, error) {
	s := &Stakeholder{}
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Organization, &s.Email, &s.Influence)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (p *pgxStakeholderRepository) Create(ctx context.Context, s *Stakeholder) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("stakeholders", "project_id", "name", "organization", "email", "influence"),
		im.Values(psql.Arg(s.ProjectID), psql.Arg(s.Name), psql.Arg(s.Organization), psql.Arg(s.Email), psql.Arg(s.Influence)),
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

func (p *pgxStakeholderRepository) Get(ctx context.Context, stakeholderID int64) (*Stakeholder, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(stakeholderColumns...),
		sm.From("stakeholders"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(stakeholderID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	s, err := scanStakeholder(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (p *pgxStakeholderRepository) ListByProject(ctx context.Context, projectID int64) ([]*Stakeholder, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(stakeholderColumns...),
		sm.From("stakeholders"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Stakeholder, error) {
		return scanStakeholder(row)
	})
}

func (p *pgxStakeholderRepository) Patch(ctx context.Context, patch *StakeholderPatch) (*Stakeholder, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	sets := make([]bob.Mod[*dialect.UpdateQuery], 0, 4)

	if patch.Name != nil {
		sets = append(sets, um.SetCol("name").ToArg(*patch.Name))
	}
	if patch.Organization != nil {
		sets = append(sets, um.SetCol("organization").ToArg(*patch.Organization))
	}
	if patch.Email != nil {
		sets = append(sets, um.SetCol("email").ToArg(*patch.Email))
	}
	if patch.Influence != nil {
		sets = append(sets, um.SetCol("influence").ToArg(*patch.Influence))
	}

	q := psql.Update(
		um.Table("stakeholders"),
		um.Where(psql.Quote("id").EQ(psql.Arg(patch.ID))),
		um.Returning(stakeholderColumns...),
	)

	q.Apply(sets...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	s, err := scanStakeholder(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (p *pgxStakeholderRepository) Delete(ctx context.Context, stakeholderID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("stakeholders"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(stakeholderID))),
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
