package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

// AccessService decides whether a caller may act on a project. The decision
// is derived from the owning team's membership for the caller: the
// membership's access level must meet or exceed the required level. A global
// ADMIN passes every check without any lookup.
//
// The service is stateless and performs exactly one project lookup and one
// membership lookup per call; nothing is cached between calls.
type AccessService struct {
	projects repository.ProjectRepository
	teams    repository.TeamRepository
}

func NewAccessService() *AccessService {
	return &AccessService{}
}

// CheckAccess answers whether identity may perform an operation requiring
// the given level on the project. Expected denials (unknown project, not a
// member, insufficient level) come back as a decision, not an error; only
// store failures are returned as errors, and callers must treat those as
// deny.
func (a *AccessService) CheckAccess(ctx context.Context, identity model.Identity, projectID int64, required model.AccessLevel) (*model.AccessDecision, error) {
	l := logger.FromContext(ctx)

	if identity.IsAdmin() {
		return &model.AccessDecision{HasAccess: true}, nil
	}

	teamID, err := a.projects.FindOwnerTeam(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.AccessDecision{
			HasAccess: false,
			Message:   "Project not found",
		}, nil
	}
	if err != nil {
		l.Error("failed to look up project owner team",
			zap.Int64("project_id", projectID),
			zap.Error(err))
		return nil, errors.Wrap(err, "failed to look up project owner team")
	}

	membership, err := a.teams.FindMembership(ctx, identity.UserID, teamID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.AccessDecision{
			HasAccess: false,
			Message:   "User is not a member of this project team",
		}, nil
	}
	if err != nil {
		l.Error("failed to look up membership",
			zap.Int64("user_id", identity.UserID),
			zap.Int64("team_id", teamID),
			zap.Error(err))
		return nil, errors.Wrap(err, "failed to look up membership")
	}

	current := model.AccessLevel(membership.AccessLevel)
	if !current.Meets(required) {
		return &model.AccessDecision{
			HasAccess:      false,
			Message:        "Insufficient access level",
			CurrentAccess:  &current,
			RequiredAccess: &required,
		}, nil
	}

	return &model.AccessDecision{
		HasAccess:   true,
		Role:        model.TeamRole(membership.TeamRole),
		AccessLevel: &current,
	}, nil
}

func (a *AccessService) WithProjectRepo(r repository.ProjectRepository) *AccessService {
	a.projects = r
	return a
}

func (a *AccessService) WithTeamRepo(r repository.TeamRepository) *AccessService {
	a.teams = r
	return a
}
