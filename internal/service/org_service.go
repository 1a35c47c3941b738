package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type OrganizationService struct {
	orgs repository.OrganizationRepository
}

func NewOrganizationService() *OrganizationService {
	return &OrganizationService{}
}

func (o *OrganizationService) CreateOrganization(ctx context.Context, org *model.Organization) (*model.Organization, *Error) {
	l := logger.FromContext(ctx)

	id, err := o.orgs.Create(ctx, &repository.Organization{Name: org.Name})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, NewError(ErrorCodeAlreadyExists, "organization name already exists")
	}
	if err != nil {
		l.Error("failed to create organization", zap.String("name", org.Name), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create organization")
	}

	org.ID = id
	return org, nil
}

func (o *OrganizationService) GetOrganization(ctx context.Context, orgID int64) (*model.Organization, *Error) {
	l := logger.FromContext(ctx)

	org, err := o.orgs.Get(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "organization not found")
	}
	if err != nil {
		l.Error("failed to get organization", zap.Int64("org_id", orgID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get organization")
	}

	return &model.Organization{ID: org.ID, Name: org.Name}, nil
}

func (o *OrganizationService) ListOrganizations(ctx context.Context) ([]*model.Organization, *Error) {
	l := logger.FromContext(ctx)

	orgsRepo, err := o.orgs.List(ctx)
	if err != nil {
		l.Error("failed to list organizations", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list organizations")
	}

	orgs := make([]*model.Organization, 0, len(orgsRepo))
	for _, org := range orgsRepo {
		orgs = append(orgs, &model.Organization{ID: org.ID, Name: org.Name})
	}
	return orgs, nil
}

func (o *OrganizationService) RenameOrganization(ctx context.Context, orgID int64, name string) (*model.Organization, *Error) {
	l := logger.FromContext(ctx)

	org, err := o.orgs.Rename(ctx, orgID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "organization not found")
	}
	if err != nil {
		l.Error("failed to rename organization", zap.Int64("org_id", orgID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to rename organization")
	}

	return &model.Organization{ID: org.ID, Name: org.Name}, nil
}

func (o *OrganizationService) DeleteOrganization(ctx context.Context, orgID int64) *Error {
	l := logger.FromContext(ctx)

	err := o.orgs.Delete(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "organization not found")
	}
	if err != nil {
		l.Error("failed to delete organization", zap.Int64("org_id", orgID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete organization")
	}
	return nil
}

func (o *OrganizationService) CreateUnit(ctx context.Context, orgID int64, unit *model.Unit) (*model.Unit, *Error) {
	l := logger.FromContext(ctx)

	id, err := o.orgs.CreateUnit(ctx, &repository.Unit{
		OrganizationID: orgID,
		Name:           unit.Name,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "organization not found")
	}
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, NewError(ErrorCodeAlreadyExists, "unit name already exists in this organization")
	}
	if err != nil {
		l.Error("failed to create unit", zap.Int64("org_id", orgID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create unit")
	}

	unit.ID = id
	unit.OrganizationID = orgID
	return unit, nil
}

func (o *OrganizationService) ListUnits(ctx context.Context, orgID int64) ([]*model.Unit, *Error) {
	l := logger.FromContext(ctx)

	unitsRepo, err := o.orgs.ListUnits(ctx, orgID)
	if err != nil {
		l.Error("failed to list units", zap.Int64("org_id", orgID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list units")
	}

	units := make([]*model.Unit, 0, len(unitsRepo))
	for _, unit := range unitsRepo {
		units = append(units, &model.Unit{
			ID:             unit.ID,
			OrganizationID: unit.OrganizationID,
			Name:           unit.Name,
		})
	}
	return units, nil
}

func (o *OrganizationService) DeleteUnit(ctx context.Context, unitID int64) *Error {
	l := logger.FromContext(ctx)

	err := o.orgs.DeleteUnit(ctx, unitID)
	if errors.Is(err, repository.ErrNotFound) {
		return NewError(ErrorCodeNotFound, "unit not found")
	}
	if err != nil {
		l.Error("failed to delete unit", zap.Int64("unit_id", unitID), zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to delete unit")
	}
	return nil
}

func (o *OrganizationService) WithOrganizationRepo(r repository.OrganizationRepository) *OrganizationService {
	o.orgs = r
	return o
}
