package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
)

func levelPtr(l model.AccessLevel) *model.AccessLevel {
	return &l
}

func TestAccessService_CheckAccess(t *testing.T) {
	member := model.Identity{UserID: 7, Role: model.RoleUser}
	admin := model.Identity{UserID: 9, Role: model.RoleAdmin}

	tests := []struct {
		name             string
		identity         model.Identity
		projectID        int64
		required         model.AccessLevel
		setupMocks       func(*MockProjectRepository, *MockTeamRepository)
		expectedError    bool
		expectedDecision *model.AccessDecision
	}{
		{
			name:      "admin bypass skips all lookups",
			identity:  admin,
			projectID: 42,
			required:  model.AccessFullAccess,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				// No expectations: neither store may be touched.
			},
			expectedDecision: &model.AccessDecision{HasAccess: true},
		},
		{
			name:      "member with sufficient level",
			identity:  member,
			projectID: 42,
			required:  model.AccessReadOnly,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				pr.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(3), nil)
				tr.On("FindMembership", mock.Anything, int64(7), int64(3)).Return(&repository.Membership{
					UserID:      7,
					TeamID:      3,
					TeamRole:    "TEAM_MEMBER",
					AccessLevel: int(model.AccessReadWrite),
				}, nil)
			},
			expectedDecision: &model.AccessDecision{
				HasAccess:   true,
				Role:        model.TeamRoleMember,
				AccessLevel: levelPtr(model.AccessReadWrite),
			},
		},
		{
			name:      "member below required level",
			identity:  member,
			projectID: 42,
			required:  model.AccessFullAccess,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				pr.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(3), nil)
				tr.On("FindMembership", mock.Anything, int64(7), int64(3)).Return(&repository.Membership{
					UserID:      7,
					TeamID:      3,
					TeamRole:    "TEAM_MEMBER",
					AccessLevel: int(model.AccessReadWrite),
				}, nil)
			},
			expectedDecision: &model.AccessDecision{
				HasAccess:      false,
				Message:        "Insufficient access level",
				CurrentAccess:  levelPtr(model.AccessReadWrite),
				RequiredAccess: levelPtr(model.AccessFullAccess),
			},
		},
		{
			name:      "project not found",
			identity:  member,
			projectID: 999999,
			required:  model.AccessReadOnly,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				pr.On("FindOwnerTeam", mock.Anything, int64(999999)).Return(int64(0), repository.ErrNotFound)
			},
			expectedDecision: &model.AccessDecision{
				HasAccess: false,
				Message:   "Project not found",
			},
		},
		{
			name:      "not a member of the owning team",
			identity:  model.Identity{UserID: 3, Role: model.RoleUser},
			projectID: 42,
			required:  model.AccessReadOnly,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				pr.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(3), nil)
				tr.On("FindMembership", mock.Anything, int64(3), int64(3)).Return(nil, repository.ErrNotFound)
			},
			expectedDecision: &model.AccessDecision{
				HasAccess: false,
				Message:   "User is not a member of this project team",
			},
		},
		{
			name:      "project lookup failure is an error",
			identity:  member,
			projectID: 42,
			required:  model.AccessReadOnly,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				pr.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(0), errors.New("db down"))
			},
			expectedError: true,
		},
		{
			name:      "membership lookup failure is an error",
			identity:  member,
			projectID: 42,
			required:  model.AccessReadOnly,
			setupMocks: func(pr *MockProjectRepository, tr *MockTeamRepository) {
				pr.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(3), nil)
				tr.On("FindMembership", mock.Anything, int64(7), int64(3)).Return(nil, errors.New("db down"))
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProjectRepo := new(MockProjectRepository)
			mockTeamRepo := new(MockTeamRepository)

			tt.setupMocks(mockProjectRepo, mockTeamRepo)

			service := NewAccessService().
				WithProjectRepo(mockProjectRepo).
				WithTeamRepo(mockTeamRepo)

			got, err := service.CheckAccess(context.Background(), tt.identity, tt.projectID, tt.required)

			if tt.expectedError {
				require.Error(t, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedDecision, got)
			}

			mockProjectRepo.AssertExpectations(t)
			mockTeamRepo.AssertExpectations(t)
		})
	}
}

// Every access level against every required level: READ_ONLY passes only
// READ_ONLY, READ_WRITE passes up to READ_WRITE, FULL_ACCESS passes all.
func TestAccessService_CheckAccess_LevelOrdering(t *testing.T) {
	levels := []model.AccessLevel{model.AccessReadOnly, model.AccessReadWrite, model.AccessFullAccess}

	for _, have := range levels {
		for _, required := range levels {
			name := have.String() + " vs " + required.String()
			t.Run(name, func(t *testing.T) {
				mockProjectRepo := new(MockProjectRepository)
				mockTeamRepo := new(MockTeamRepository)

				mockProjectRepo.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(3), nil)
				mockTeamRepo.On("FindMembership", mock.Anything, int64(7), int64(3)).Return(&repository.Membership{
					UserID:      7,
					TeamID:      3,
					TeamRole:    "CONTRIBUTOR",
					AccessLevel: int(have),
				}, nil)

				service := NewAccessService().
					WithProjectRepo(mockProjectRepo).
					WithTeamRepo(mockTeamRepo)

				got, err := service.CheckAccess(context.Background(), model.Identity{UserID: 7, Role: model.RoleUser}, 42, required)
				require.NoError(t, err)
				assert.Equal(t, have >= required, got.HasAccess)
			})
		}
	}
}

// Identical inputs against unchanged store state must yield identical
// decisions, and each call performs its own pair of lookups.
func TestAccessService_CheckAccess_Idempotent(t *testing.T) {
	mockProjectRepo := new(MockProjectRepository)
	mockTeamRepo := new(MockTeamRepository)

	mockProjectRepo.On("FindOwnerTeam", mock.Anything, int64(42)).Return(int64(3), nil).Times(3)
	mockTeamRepo.On("FindMembership", mock.Anything, int64(7), int64(3)).Return(&repository.Membership{
		UserID:      7,
		TeamID:      3,
		TeamRole:    "TEAM_MEMBER",
		AccessLevel: int(model.AccessReadWrite),
	}, nil).Times(3)

	service := NewAccessService().
		WithProjectRepo(mockProjectRepo).
		WithTeamRepo(mockTeamRepo)

	identity := model.Identity{UserID: 7, Role: model.RoleUser}

	first, err := service.CheckAccess(context.Background(), identity, 42, model.AccessReadOnly)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		next, err := service.CheckAccess(context.Background(), identity, 42, model.AccessReadOnly)
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}

	mockProjectRepo.AssertExpectations(t)
	mockTeamRepo.AssertExpectations(t)
}
