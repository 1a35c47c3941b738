package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type ProjectService struct {
	projects repository.ProjectRepository
	teams    repository.TeamRepository
}

func NewProjectService() *ProjectService {
	return &ProjectService{}
}

// CreateProject creates a project owned by the given team. Admins may
// create projects anywhere; otherwise the caller must lead the owning team.
func (p *ProjectService) CreateProject(ctx context.Context, identity model.Identity, project *model.Project) (*model.Project, *Error) {
	l := logger.FromContext(ctx)

	if !identity.IsAdmin() {
		membership, err := p.teams.FindMembership(ctx, identity.UserID, project.TeamID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrorCodeAccessDenied, "caller is not a member of the owning team")
		}
		if err != nil {
			l.Error("failed to check caller membership", zap.Int64("team_id", project.TeamID), zap.Error(err))
			return nil, NewError(ErrorCodeUnspecified, "failed to check caller membership")
		}
		if model.TeamRole(membership.TeamRole) != model.TeamRoleLead {
			return nil, NewError(ErrorCodeAccessDenied, "only the team lead can create projects")
		}
	}

	if project.Status == "" {
		project.Status = model.ProjectStatusPlanning
	}
	if project.Health == "" {
		project.Health = model.HealthOnTrack
	}

	id, err := p.projects.Create(ctx, &repository.Project{
		TeamID:      project.TeamID,
		Name:        project.Name,
		Description: project.Description,
		Status:      string(project.Status),
		Health:      string(project.Health),
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
	})
	if err != nil {
		l.Error("failed to create project", zap.String("name", project.Name), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create project")
	}

	return p.GetProject(ctx, id)
}

func (p *ProjectService) GetProject(ctx context.Context, projectID int64) (*model.Project, *Error) {
	l := logger.FromContext(ctx)

	project, err := p.projects.Get(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to get project", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get project")
	}

	return projectToModel(project), nil
}

// ListProjects returns every project for admins and the caller's team
// projects for everyone else.
func (p *ProjectService) ListProjects(ctx context.Context, identity model.Identity) ([]*model.Project, *Error) {
	l := logger.FromContext(ctx)

	var (
		projectsRepo []*repository.Project
		err          error
	)
	if identity.IsAdmin() {
		projectsRepo, err = p.projects.ListAll(ctx)
	} else {
		projectsRepo, err = p.projects.ListForUser(ctx, identity.UserID)
	}
	if err != nil {
		l.Error("failed to list projects", zap.Int64("user_id", identity.UserID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list projects")
	}

	projects := make([]*model.Project, 0, len(projectsRepo))
	for _, project := range projectsRepo {
		projects = append(projects, projectToModel(project))
	}
	return projects, nil
}

type ProjectUpdate struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

func (u *ProjectUpdate) isEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil &&
		u.StartDate == nil && u.EndDate == nil
}

func (p *ProjectService) UpdateProject(ctx context.Context, projectID int64, update *ProjectUpdate) (*model.Project, *Error) {
	l := logger.FromContext(ctx)

	// An all-nil patch would build an UPDATE with no SET clause.
	if update.isEmpty() {
		return nil, NewError(ErrorCodeInvalidBody, "no fields to update")
	}

	project, err := p.projects.Patch(ctx, &repository.ProjectPatch{
		ID:          projectID,
		Name:        update.Name,
		Description: update.Description,
		Status:      update.Status,
		StartDate:   update.StartDate,
		EndDate:     update.EndDate,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to update project", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to update project")
	}

	return projectToModel(project), nil
}

func (p *ProjectService) SetHealth(ctx context.Context, projectID int64, health model.HealthStatus) (*model.Project, *Error) {
	l := logger.FromContext(ctx)

	switch health {
	case model.HealthOnTrack, model.HealthAtRisk, model.HealthOffTrack:
	default:
		return nil, NewError(ErrorCodeInvalidBody, "unknown health status")
	}

	project, err := p.projects.SetHealth(ctx, projectID, string(health))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to set project health", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to set project health")
	}

	return projectToModel(project), nil
}

func (p *ProjectService) DeleteProject(ctx context.Context, projectID int64) *Error {
	l := logger.FromContext(ctx)

	err := p.projects.Delete(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to delete project", zap.Int64("project_id", projectID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete project")
	}
	return nil
}

func projectToModel(p *repository.Project) *model.Project {
	return &model.Project{
		ID:          p.ID,
		TeamID:      p.TeamID,
		Name:        p.Name,
		Description: p.Description,
		Status:      model.ProjectStatus(p.Status),
		Health:      model.HealthStatus(p.Health),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
	}
}

func (p *ProjectService) WithProjectRepo(r repository.ProjectRepository) *ProjectService {
	p.projects = r
	return p
}

func (p *ProjectService) WithTeamRepo(r repository.TeamRepository) *ProjectService {
	p.teams = r
	return p
}
