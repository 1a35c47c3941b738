package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *repository.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Get(ctx context.Context, userID int64) (*repository.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*repository.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.User), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, userID int64, role string) (*repository.User, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.User), args.Error(1)
}

type MockTeamRepository struct {
	mock.Mock
}

func (m *MockTeamRepository) Create(ctx context.Context, team *repository.Team) (int64, error) {
	args := m.Called(ctx, team)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTeamRepository) Get(ctx context.Context, teamID int64) (*repository.Team, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) List(ctx context.Context) ([]*repository.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Team), args.Error(1)
}

func (m *MockTeamRepository) AddMember(ctx context.Context, membership *repository.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockTeamRepository) UpdateMember(ctx context.Context, membership *repository.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockTeamRepository) RemoveMember(ctx context.Context, userID, teamID int64) error {
	args := m.Called(ctx, userID, teamID)
	return args.Error(0)
}

func (m *MockTeamRepository) FindMembership(ctx context.Context, userID, teamID int64) (*repository.Membership, error) {
	args := m.Called(ctx, userID, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Membership), args.Error(1)
}

func (m *MockTeamRepository) ListMembers(ctx context.Context, teamID int64) ([]*repository.MemberRow, error) {
	args := m.Called(ctx, teamID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.MemberRow), args.Error(1)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *repository.Project) (int64, error) {
	args := m.Called(ctx, project)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProjectRepository) Get(ctx context.Context, projectID int64) (*repository.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Project), args.Error(1)
}

func (m *MockProjectRepository) ListAll(ctx context.Context) ([]*repository.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Project), args.Error(1)
}

func (m *MockProjectRepository) ListForUser(ctx context.Context, userID int64) ([]*repository.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Project), args.Error(1)
}

func (m *MockProjectRepository) Patch(ctx context.Context, patch *repository.ProjectPatch) (*repository.Project, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Project), args.Error(1)
}

func (m *MockProjectRepository) SetHealth(ctx context.Context, projectID int64, health string) (*repository.Project, error) {
	args := m.Called(ctx, projectID, health)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Project), args.Error(1)
}

func (m *MockProjectRepository) Delete(ctx context.Context, projectID int64) error {
	args := m.Called(ctx, projectID)
	return args.Error(0)
}

func (m *MockProjectRepository) FindOwnerTeam(ctx context.Context, projectID int64) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) Create(ctx context.Context, task *repository.Task) (int64, error) {
	args := m.Called(ctx, task)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaskRepository) Get(ctx context.Context, taskID int64) (*repository.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Task), args.Error(1)
}

func (m *MockTaskRepository) ListByProject(ctx context.Context, projectID int64) ([]*repository.Task, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Task), args.Error(1)
}

func (m *MockTaskRepository) Patch(ctx context.Context, patch *repository.TaskPatch) (*repository.Task, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Task), args.Error(1)
}

func (m *MockTaskRepository) Delete(ctx context.Context, taskID int64) error {
	args := m.Called(ctx, taskID)
	return args.Error(0)
}

type MockTimeEntryRepository struct {
	mock.Mock
}

func (m *MockTimeEntryRepository) Create(ctx context.Context, entry *repository.TimeEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTimeEntryRepository) Get(ctx context.Context, entryID int64) (*repository.TimeEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) ListByTask(ctx context.Context, taskID int64) ([]*repository.TimeEntry, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) Delete(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockTimeEntryRepository) ProjectTotals(ctx context.Context, projectID int64) ([]*repository.UserHours, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.UserHours), args.Error(1)
}

type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) Create(ctx context.Context, entry *repository.BudgetEntry) (int64, error) {
	args := m.Called(ctx, entry)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBudgetRepository) Get(ctx context.Context, entryID int64) (*repository.BudgetEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BudgetEntry), args.Error(1)
}

func (m *MockBudgetRepository) ListByProject(ctx context.Context, projectID int64) ([]*repository.BudgetEntry, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.BudgetEntry), args.Error(1)
}

func (m *MockBudgetRepository) Delete(ctx context.Context, entryID int64) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockBudgetRepository) Summary(ctx context.Context, projectID int64) (*repository.BudgetSummary, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.BudgetSummary), args.Error(1)
}

type MockStakeholderRepository struct {
	mock.Mock
}

func (m *MockStakeholderRepository) Create(ctx context.Context, s *repository.Stakeholder) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStakeholderRepository) Get(ctx context.Context, stakeholderID int64) (*repository.Stakeholder, error) {
	args := m.Called(ctx, stakeholderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepository) ListByProject(ctx context.Context, projectID int64) ([]*repository.Stakeholder, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepository) Patch(ctx context.Context, patch *repository.StakeholderPatch) (*repository.Stakeholder, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Stakeholder), args.Error(1)
}

func (m *MockStakeholderRepository) Delete(ctx context.Context, stakeholderID int64) error {
	args := m.Called(ctx, stakeholderID)
	return args.Error(0)
}
