package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
)

func TestTeamService_GetTeam(t *testing.T) {
	tests := []struct {
		name          string
		teamID        int64
		setupMocks    func(*MockTeamRepository)
		expectedError bool
		errorCode     ErrorCode
		expectedTeam  *model.Team
	}{
		{
			name:   "success",
			teamID: 3,
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Get", mock.Anything, int64(3)).Return(&repository.Team{ID: 3, Name: "backend"}, nil)
				tr.On("ListMembers", mock.Anything, int64(3)).Return([]*repository.MemberRow{
					{UserID: 1, FullName: "John Doe", TeamRole: "TEAM_LEAD", AccessLevel: 2},
					{UserID: 2, FullName: "Jane Roe", TeamRole: "TEAM_MEMBER", AccessLevel: 1},
				}, nil)
			},
			expectedTeam: &model.Team{
				ID:   3,
				Name: "backend",
				Members: []*model.TeamMember{
					{UserID: 1, FullName: "John Doe", Role: model.TeamRoleLead, AccessLevel: model.AccessFullAccess},
					{UserID: 2, FullName: "Jane Roe", Role: model.TeamRoleMember, AccessLevel: model.AccessReadWrite},
				},
			},
		},
		{
			name:   "team not found",
			teamID: 3,
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Get", mock.Anything, int64(3)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:   "get team failure",
			teamID: 3,
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Get", mock.Anything, int64(3)).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
		{
			name:   "list members failure",
			teamID: 3,
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Get", mock.Anything, int64(3)).Return(&repository.Team{ID: 3, Name: "backend"}, nil)
				tr.On("ListMembers", mock.Anything, int64(3)).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)

			tt.setupMocks(mockTeamRepo)

			service := NewTeamService(mockTx).
				WithTeamRepo(mockTeamRepo)

			got, serr := service.GetTeam(context.Background(), tt.teamID)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, serr)
				assert.Equal(t, tt.expectedTeam, got)
			}

			mockTeamRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_CreateTeam(t *testing.T) {
	admin := model.Identity{UserID: 1, Role: model.RoleAdmin}

	tests := []struct {
		name          string
		identity      model.Identity
		team          *model.Team
		setupMocks    func(*MockTeamRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "success with members",
			identity: admin,
			team: &model.Team{
				Name: "backend",
				Members: []*model.TeamMember{
					{UserID: 1, Role: model.TeamRoleLead, AccessLevel: model.AccessFullAccess},
					{UserID: 2, Role: model.TeamRoleMember, AccessLevel: model.AccessReadWrite},
				},
			},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Create", mock.Anything, mock.MatchedBy(func(team *repository.Team) bool {
					return team.Name == "backend"
				})).Return(int64(3), nil)
				tr.On("AddMember", mock.Anything, mock.MatchedBy(func(m *repository.Membership) bool {
					return m.TeamID == 3 && m.UserID == 1 && m.TeamRole == "TEAM_LEAD" && m.AccessLevel == 2
				})).Return(nil)
				tr.On("AddMember", mock.Anything, mock.MatchedBy(func(m *repository.Membership) bool {
					return m.TeamID == 3 && m.UserID == 2 && m.TeamRole == "TEAM_MEMBER" && m.AccessLevel == 1
				})).Return(nil)
				tr.On("Get", mock.Anything, int64(3)).Return(&repository.Team{ID: 3, Name: "backend"}, nil)
				tr.On("ListMembers", mock.Anything, int64(3)).Return([]*repository.MemberRow{
					{UserID: 1, FullName: "John Doe", TeamRole: "TEAM_LEAD", AccessLevel: 2},
					{UserID: 2, FullName: "Jane Roe", TeamRole: "TEAM_MEMBER", AccessLevel: 1},
				}, nil)
			},
		},
		{
			name:     "plain user cannot create teams",
			identity: model.Identity{UserID: 5, Role: model.RoleUser},
			team: &model.Team{
				Name: "backend",
			},
			setupMocks:    func(tr *MockTeamRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeAccessDenied,
		},
		{
			name:     "duplicate team name",
			identity: admin,
			team: &model.Team{
				Name: "backend",
			},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Create", mock.Anything, mock.Anything).Return(int64(0), repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeAlreadyExists,
		},
		{
			name:     "invalid member role",
			identity: admin,
			team: &model.Team{
				Name: "backend",
				Members: []*model.TeamMember{
					{UserID: 1, Role: "WIZARD", AccessLevel: model.AccessReadOnly},
				},
			},
			setupMocks:    func(tr *MockTeamRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidBody,
		},
		{
			name:     "member user does not exist",
			identity: admin,
			team: &model.Team{
				Name: "backend",
				Members: []*model.TeamMember{
					{UserID: 77, Role: model.TeamRoleMember, AccessLevel: model.AccessReadOnly},
				},
			},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("Create", mock.Anything, mock.Anything).Return(int64(3), nil)
				tr.On("AddMember", mock.Anything, mock.Anything).Return(repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)

			tt.setupMocks(mockTeamRepo)

			service := NewTeamService(mockTx).
				WithTeamRepo(mockTeamRepo)

			got, serr := service.CreateTeam(context.Background(), tt.identity, tt.team)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, serr)
				assert.NotNil(t, got)
			}

			mockTeamRepo.AssertExpectations(t)
		})
	}
}

func TestTeamService_AddMember(t *testing.T) {
	lead := model.Identity{UserID: 1, Role: model.RoleUser}

	tests := []struct {
		name          string
		identity      model.Identity
		member        *model.TeamMember
		setupMocks    func(*MockTeamRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "team lead adds a member",
			identity: lead,
			member:   &model.TeamMember{UserID: 5, Role: model.TeamRoleContributor, AccessLevel: model.AccessReadOnly},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("FindMembership", mock.Anything, int64(1), int64(3)).Return(&repository.Membership{
					UserID: 1, TeamID: 3, TeamRole: "TEAM_LEAD", AccessLevel: 2,
				}, nil)
				tr.On("AddMember", mock.Anything, mock.MatchedBy(func(m *repository.Membership) bool {
					return m.UserID == 5 && m.TeamID == 3
				})).Return(nil)
			},
		},
		{
			name:     "admin bypasses lead check",
			identity: model.Identity{UserID: 9, Role: model.RoleAdmin},
			member:   &model.TeamMember{UserID: 5, Role: model.TeamRoleContributor, AccessLevel: model.AccessReadOnly},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("AddMember", mock.Anything, mock.Anything).Return(nil)
			},
		},
		{
			name:     "non-lead member is denied",
			identity: lead,
			member:   &model.TeamMember{UserID: 5, Role: model.TeamRoleContributor, AccessLevel: model.AccessReadOnly},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("FindMembership", mock.Anything, int64(1), int64(3)).Return(&repository.Membership{
					UserID: 1, TeamID: 3, TeamRole: "TEAM_MEMBER", AccessLevel: 1,
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeAccessDenied,
		},
		{
			name:     "outsider is denied",
			identity: lead,
			member:   &model.TeamMember{UserID: 5, Role: model.TeamRoleContributor, AccessLevel: model.AccessReadOnly},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("FindMembership", mock.Anything, int64(1), int64(3)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeAccessDenied,
		},
		{
			name:     "duplicate membership",
			identity: model.Identity{UserID: 9, Role: model.RoleAdmin},
			member:   &model.TeamMember{UserID: 5, Role: model.TeamRoleContributor, AccessLevel: model.AccessReadOnly},
			setupMocks: func(tr *MockTeamRepository) {
				tr.On("AddMember", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTx := new(MockTransactor)
			mockTeamRepo := new(MockTeamRepository)

			tt.setupMocks(mockTeamRepo)

			service := NewTeamService(mockTx).
				WithTeamRepo(mockTeamRepo)

			serr := service.AddMember(context.Background(), tt.identity, 3, tt.member)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
			} else {
				assert.Nil(t, serr)
			}

			mockTeamRepo.AssertExpectations(t)
		})
	}
}
