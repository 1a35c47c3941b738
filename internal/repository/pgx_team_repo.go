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

type Team struct {
	ID     int64  `db:"id"`
	UnitID *int64 `db:"unit_id"`
	Name   string `db:"name"`
}

// Membership ties one user to one team. The table enforces uniqueness on
// (user_id, team_id); access_level is stored as its ordinal.
type Membership struct {
	UserID      int64  `db:"user_id"`
	TeamID      int64  `db:"team_id"`
	TeamRole    string `db:"team_role"`
	AccessLevel int    `db:"access_level"`
}

type MemberRow struct {
	UserID      int64  `db:"user_id"`
	FullName    string `db:"full_name"`
	TeamRole    string `db:"team_role"`
	AccessLevel int    `db:"access_level"`
}

type TeamRepository interface {
	Create(ctx context.Context, team *Team) (int64, error)
	Get(ctx context.Context, teamID int64) (*Team, error)
	List(ctx context.Context) ([]*Team, error)
	AddMember(ctx context.Context, m *Membership) error
	UpdateMember(ctx context.Context, m *Membership) error
	RemoveMember(ctx context.Context, userID, teamID int64) error
	FindMembership(ctx context.Context, userID, teamID int64) (*Membership, error)
	ListMembers(ctx context.Context, teamID int64) ([]*MemberRow, error)
}

type pgxTeamRepository struct {
	pool *pgxpool.Pool
}

func NewPgxTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &pgxTeamRepository{pool: pool}
}

func (p *pgxTeamRepository) Create(ctx context.Context, team *Team) (int64, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("teams", "unit_id", "name"),
		im.Values(psql.Arg(team.UnitID), psql.Arg(team.Name)),
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

func (p *pgxTeamRepository) Get(ctx context.Context, teamID int64) (*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "unit_id", "name"),
		sm.From("teams"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	team := &Team{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&team.ID, &team.UnitID, &team.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return team, nil
}

func (p *pgxTeamRepository) List(ctx context.Context) ([]*Team, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "unit_id", "name"),
		sm.From("teams"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Team, error) {
		team := &Team{}
		if err = row.Scan(&team.ID, &team.UnitID, &team.Name); err != nil {
			return nil, err
		}
		return team, nil
	})
}

func (p *pgxTeamRepository) AddMember(ctx context.Context, m *Membership) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("memberships", "user_id", "team_id", "team_role", "access_level"),
		im.Values(psql.Arg(m.UserID), psql.Arg(m.TeamID), psql.Arg(m.TeamRole), psql.Arg(m.AccessLevel)),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrAlreadyExists
		case "23503":
			return ErrNotFound
		}
	}

	return err
}

func (p *pgxTeamRepository) UpdateMember(ctx context.Context, m *Membership) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("memberships"),
		um.SetCol("team_role").ToArg(m.TeamRole),
		um.SetCol("access_level").ToArg(m.AccessLevel),
		um.Where(psql.Quote("user_id").EQ(psql.Arg(m.UserID))),
		um.Where(psql.Quote("team_id").EQ(psql.Arg(m.TeamID))),
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

func (p *pgxTeamRepository) RemoveMember(ctx context.Context, userID, teamID int64) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("memberships"),
		dm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		dm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
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

func (p *pgxTeamRepository) FindMembership(ctx context.Context, userID, teamID int64) (*Membership, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("user_id", "team_id", "team_role", "access_level"),
		sm.From("memberships"),
		sm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	m := &Membership{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&m.UserID, &m.TeamID, &m.TeamRole, &m.AccessLevel); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (p *pgxTeamRepository) ListMembers(ctx context.Context, teamID int64) ([]*MemberRow, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("m.user_id", "u.full_name", "m.team_role", "m.access_level"),
		sm.From("memberships").As("m"),
		sm.InnerJoin("users").As("u").On(psql.Quote("u", "id").EQ(psql.Quote("m", "user_id"))),
		sm.Where(psql.Quote("m", "team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("m.user_id"),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*MemberRow, error) {
		m := &MemberRow{}
		if err = row.Scan(&m.UserID, &m.FullName, &m.TeamRole, &m.AccessLevel); err != nil {
			return nil, err
		}
		return m, nil
	})
}
