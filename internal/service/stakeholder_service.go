package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type StakeholderService struct {
	stakeholders repository.StakeholderRepository
}

func NewStakeholderService() *StakeholderService {
	return &StakeholderService{}
}

func (s *StakeholderService) AddStakeholder(ctx context.Context, projectID int64, stakeholder *model.Stakeholder) (*model.Stakeholder, *Error) {
	l := logger.FromContext(ctx)

	if stakeholder.Influence == "" {
		stakeholder.Influence = model.InfluenceMedium
	}

	id, err := s.stakeholders.Create(ctx, &repository.Stakeholder{
		ProjectID:    projectID,
		Name:         stakeholder.Name,
		Organization: stakeholder.Organization,
		Email:        stakeholder.Email,
		Influence:    string(stakeholder.Influence),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "project not found")
	}
	if err != nil {
		l.Error("failed to add stakeholder", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to add stakeholder")
	}

	stakeholder.ID = id
	stakeholder.ProjectID = projectID
	return stakeholder, nil
}

func (s *StakeholderService) GetStakeholder(ctx context.Context, projectID, stakeholderID int64) (*model.Stakeholder, *Error) {
	return s.getStakeholder(ctx, projectID, stakeholderID)
}

func (s *StakeholderService) ListStakeholders(ctx context.Context, projectID int64) ([]*model.Stakeholder, *Error) {
	l := logger.FromContext(ctx)

	stakeholdersRepo, err := s.stakeholders.ListByProject(ctx, projectID)
	if err != nil {
		l.Error("failed to list stakeholders", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list stakeholders")
	}

	stakeholders := make([]*model.Stakeholder, 0, len(stakeholdersRepo))
	for _, st := range stakeholdersRepo {
		stakeholders = append(stakeholders, stakeholderToModel(st))
	}
	return stakeholders, nil
}

type StakeholderUpdate struct {
	Name         *string `json:"name,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Influence    *string `json:"influence,omitempty"`
}

func (u *StakeholderUpdate) isEmpty() bool {
	return u.Name == nil && u.Organization == nil && u.Email == nil && u.Influence == nil
}

func (s *StakeholderService) UpdateStakeholder(ctx context.Context, projectID, stakeholderID int64, update *StakeholderUpdate) (*model.Stakeholder, *Error) {
	l := logger.FromContext(ctx)

	// An all-nil patch would build an UPDATE with no SET clause.
	if update.isEmpty() {
		return nil, NewError(ErrorCodeInvalidBody, "no fields to update")
	}

	if _, serr := s.getStakeholder(ctx, projectID, stakeholderID); serr != nil {
		return nil, serr
	}

	st, err := s.stakeholders.Patch(ctx, &repository.StakeholderPatch{
		ID:           stakeholderID,
		Name:         update.Name,
		Organization: update.Organization,
		Email:        update.Email,
		Influence:    update.Influence,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "stakeholder not found")
	}
	if err != nil {
		l.Error("failed to update stakeholder", zap.Int64("stakeholder_id", stakeholderID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to update stakeholder")
	}

	return stakeholderToModel(st), nil
}

func (s *StakeholderService) DeleteStakeholder(ctx context.Context, projectID, stakeholderID int64) *Error {
	l := logger.FromContext(ctx)

	if _, serr := s.getStakeholder(ctx, projectID, stakeholderID); serr != nil {
		return serr
	}

	err := s.stakeholders.Delete(ctx, stakeholderID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "stakeholder not found")
	}
	if err != nil {
		l.Error("failed to delete stakeholder", zap.Int64("stakeholder_id", stakeholderID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete stakeholder")
	}
	return nil
}

func (s *StakeholderService) getStakeholder(ctx context.Context, projectID, stakeholderID int64) (*model.Stakeholder, *Error) {
	l := logger.FromContext(ctx)

	st, err := s.stakeholders.Get(ctx, stakeholderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "stakeholder not found")
	}
	if err != nil {
		l.Error("failed to get stakeholder", zap.Int64("stakeholder_id", stakeholderID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get stakeholder")
	}
	if st.ProjectID != projectID {
		return nil, NewError(ErrorCodeNotFound, "stakeholder not found")
	}

	return stakeholderToModel(st), nil
}

func stakeholderToModel(s *repository.Stakeholder) *model.Stakeholder {
	return &model.Stakeholder{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		Organization: s.Organization,
		Email:        s.Email,
		Influence:    model.InfluenceLevel(s.Influence),
	}
}

func (s *StakeholderService) WithStakeholderRepo(r repository.StakeholderRepository) *StakeholderService {
	s.stakeholders = r
	return s
}
