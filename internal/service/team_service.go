package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/db"
	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type TeamService struct {
	tx db.Transactor

	teams repository.TeamRepository
}

func NewTeamService(tx db.Transactor) *TeamService {
	return &TeamService{tx: tx}
}

// CreateTeam creates the team and its initial memberships in one
// transaction. Only admins and managers create teams.
func (t *TeamService) CreateTeam(ctx context.Context, identity model.Identity, team *model.Team) (*model.Team, *Error) {
	l := logger.FromContext(ctx)

	if !identity.IsAdmin() && identity.Role != model.RoleManager {
		return nil, NewError(ErrorCodeAccessDenied, "only admins and managers can create teams")
	}

	for _, m := range team.Members {
		if !m.Role.IsValid() {
			return nil, NewError(ErrorCodeInvalidBody, "unknown team role")
		}
		if !m.AccessLevel.IsValid() {
			return nil, NewError(ErrorCodeInvalidBody, "unknown access level")
		}
	}

	err := t.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		id, err := t.teams.Create(txCtx, &repository.Team{
			UnitID: team.UnitID,
			Name:   team.Name,
		})
		if errors.Is(err, repository.ErrAlreadyExists) {
			l.Warn("team already exists", zap.String("team_name", team.Name))
			return NewError(ErrorCodeAlreadyExists, "team name already exists")
		}
		if err != nil {
			l.Error("failed to create team", zap.String("team_name", team.Name), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to create team")
		}
		team.ID = id

		for _, m := range team.Members {
			if err = t.teams.AddMember(txCtx, &repository.Membership{
				UserID:      m.UserID,
				TeamID:      id,
				TeamRole:    string(m.Role),
				AccessLevel: int(m.AccessLevel),
			}); err != nil {
				l.Error("failed to add team member",
					zap.String("team_name", team.Name),
					zap.Int64("user_id", m.UserID),
					zap.Error(err))
				if errors.Is(err, repository.ErrNotFound) {
					return NewError(ErrorCodeNotFound, "member user not found")
				}
				return NewError(ErrorCodeUnspecified, "failed to add team member")
			}
		}

		return nil
	})

	if err != nil {
		var res *Error
		if errors.As(err, &res) {
			return nil, res
		}
		return nil, NewError(ErrorCodeUnspecified, "failed to create team")
	}

	return t.getTeam(ctx, team.ID)
}

func (t *TeamService) GetTeam(ctx context.Context, teamID int64) (*model.Team, *Error) {
	return t.getTeam(ctx, teamID)
}

func (t *TeamService) ListTeams(ctx context.Context) ([]*model.Team, *Error) {
	l := logger.FromContext(ctx)

	teamsRepo, err := t.teams.List(ctx)
	if err != nil {
		l.Error("failed to list teams", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list teams")
	}

	teams := make([]*model.Team, 0, len(teamsRepo))
	for _, team := range teamsRepo {
		teams = append(teams, &model.Team{
			ID:     team.ID,
			UnitID: team.UnitID,
			Name:   team.Name,
		})
	}
	return teams, nil
}

// AddMember adds a user to the team. Admins may always do this; otherwise
// the caller must be the team's lead.
func (t *TeamService) AddMember(ctx context.Context, identity model.Identity, teamID int64, member *model.TeamMember) *Error {
	l := logger.FromContext(ctx)

	if !member.Role.IsValid() {
		return NewError(ErrorCodeInvalidBody, "unknown team role")
	}
	if !member.AccessLevel.IsValid() {
		return NewError(ErrorCodeInvalidBody, "unknown access level")
	}

	if serr := t.requireLead(ctx, identity, teamID); serr != nil {
		return serr
	}

	err := t.teams.AddMember(ctx, &repository.Membership{
		UserID:      member.UserID,
		TeamID:      teamID,
		TeamRole:    string(member.Role),
		AccessLevel: int(member.AccessLevel),
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return NewError(ErrorCodeAlreadyExists, "user is already a member of this team")
	}
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "team or user not found")
	}
	if err != nil {
		l.Error("failed to add member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", member.UserID),
			zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to add member")
	}
	return nil
}

// UpdateMember changes the role or access level on an existing membership.
func (t *TeamService) UpdateMember(ctx context.Context, identity model.Identity, teamID int64, member *model.TeamMember) *Error {
	l := logger.FromContext(ctx)

	if !member.Role.IsValid() {
		return NewError(ErrorCodeInvalidBody, "unknown team role")
	}
	if !member.AccessLevel.IsValid() {
		return NewError(ErrorCodeInvalidBody, "unknown access level")
	}

	if serr := t.requireLead(ctx, identity, teamID); serr != nil {
		return serr
	}

	err := t.teams.UpdateMember(ctx, &repository.Membership{
		UserID:      member.UserID,
		TeamID:      teamID,
		TeamRole:    string(member.Role),
		AccessLevel: int(member.AccessLevel),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "membership not found")
	}
	if err != nil {
		l.Error("failed to update member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", member.UserID),
			zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to update member")
	}
	return nil
}

func (t *TeamService) RemoveMember(ctx context.Context, identity model.Identity, teamID, userID int64) *Error {
	l := logger.FromContext(ctx)

	if serr := t.requireLead(ctx, identity, teamID); serr != nil {
		return serr
	}

	err := t.teams.RemoveMember(ctx, userID, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "membership not found")
	}
	if err != nil {
		l.Error("failed to remove member",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to remove member")
	}
	return nil
}

// requireLead allows admins through and otherwise requires the caller to
// hold the TEAM_LEAD role on the team.
func (t *TeamService) requireLead(ctx context.Context, identity model.Identity, teamID int64) *Error {
	if identity.IsAdmin() {
		return nil
	}

	membership, err := t.teams.FindMembership(ctx, identity.UserID, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeAccessDenied, "caller is not a member of this team")
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to check caller membership",
			zap.Int64("team_id", teamID),
			zap.Int64("user_id", identity.UserID),
			zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to check caller membership")
	}
	if model.TeamRole(membership.TeamRole) != model.TeamRoleLead {
		return NewError(ErrorCodeAccessDenied, "only the team lead can manage members")
	}
	return nil
}

func (t *TeamService) getTeam(ctx context.Context, teamID int64) (*model.Team, *Error) {
	l := logger.FromContext(ctx)

	teamRepo, err := t.teams.Get(ctx, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		l.Warn("team not found", zap.Int64("team_id", teamID))
		return nil, NewError(ErrorCodeNotFound, "team not found")
	}
	if err != nil {
		l.Error("failed to get team", zap.Int64("team_id", teamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get team")
	}

	membersRepo, err := t.teams.ListMembers(ctx, teamID)
	if err != nil {
		l.Error("failed to list team members", zap.Int64("team_id", teamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list team members")
	}

	members := make([]*model.TeamMember, 0, len(membersRepo))
	for _, m := range membersRepo {
		members = append(members, &model.TeamMember{
			UserID:      m.UserID,
			FullName:    m.FullName,
			Role:        model.TeamRole(m.TeamRole),
			AccessLevel: model.AccessLevel(m.AccessLevel),
		})
	}

	return &model.Team{
		ID:      teamRepo.ID,
		UnitID:  teamRepo.UnitID,
		Name:    teamRepo.Name,
		Members: members,
	}, nil
}

func (t *TeamService) WithTeamRepo(r repository.TeamRepository) *TeamService {
	t.teams = r
	return t
}
