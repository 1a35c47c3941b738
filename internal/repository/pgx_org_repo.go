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
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/okatenko/planhub/internal/db"
)

type Organization struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type Unit struct {
	ID             int64  `db:"id"`
	OrganizationID int64  `db:"organization_id"`
	Name           string `db:"name"`
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) (int64, error)
	Get(ctx context.Context, orgID int64) (*Organization, error)
	List(ctx context.Context) ([]*Organization, error)
	Rename(ctx context.Context, orgID int64, name string) (*Organization, error)
	Delete(ctx context.Context, orgID int64) error
	CreateUnit(ctx context.Context, unit *Unit) (int64, error)
	ListUnits(ctx context.Context, orgID int64) ([]*Unit, error)
	DeleteUnit(ctx context.Context, unitID int64) error
}

type pgxOrganizationRepository struct {
	pool *pgxpool.Pool
}

func NewPgxOrganizationRepository(pool *pgxpool.Pool) OrganizationRepository {
	return &pgxOrganizationRepository{pool: pool}
}

func (p *pgxOrganizationRepository) Create(ctx context.Context, org *Organization) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("organizations", "name"),
		im.Values(psql.Arg(org.Name)),
		im.Returning("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrAlreadyExists
		}
		return 0, err
	}
	return id, nil
}

func (p *pgxOrganizationRepository) Get(ctx context.Context, orgID int64) (*Organization, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name"),
		sm.From("organizations"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(orgID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	org := &Organization{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&org.ID, &org.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

func (p *pgxOrganizationRepository) List(ctx context.Context) ([]*Organization, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "name"),
		sm.From("organizations"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Organization, error) {
		org := &Organization{}
		if err = row.Scan(&org.ID, &org.Name); err != nil {
			return nil, err
		}
		return org, nil
	})
}

func (p *pgxOrganizationRepository) Rename(ctx context.Context, orgID int64, name string) (*Organization, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("organizations"),
		um.SetCol("name").ToArg(name),
		um.Where(psql.Quote("id").EQ(psql.Arg(orgID))),
		um.Returning("id", "name"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	org := &Organization{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&org.ID, &org.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return org, nil
}

func (p *pgxOrganizationRepository) Delete(ctx context.Context, orgID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("organizations"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(orgID))),
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

func (p *pgxOrganizationRepository) CreateUnit(ctx context.Context, unit *Unit) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("units", "organization_id", "name"),
		im.Values(psql.Arg(unit.OrganizationID), psql.Arg(unit.Name)),
		im.Returning("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return 0, err
	}

	var id int64
	if err = e.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, ErrAlreadyExists
			case "23503":
				return 0, ErrNotFound
			}
		}
		return 0, err
	}
	return id, nil
}

func (p *pgxOrganizationRepository) ListUnits(ctx context.Context, orgID int64) ([]*Unit, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "organization_id", "name"),
		sm.From("units"),
		sm.Where(psql.Quote("organization_id").EQ(psql.Arg(orgID))),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Unit, error) {
		unit := &Unit{}
		if err = row.Scan(&unit.ID, &unit.OrganizationID, &unit.Name); err != nil {
			return nil, err
		}
		return unit, nil
	})
}

func (p *pgxOrganizationRepository) DeleteUnit(ctx context.Context, unitID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("units"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(unitID))),
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
