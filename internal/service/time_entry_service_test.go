package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
)

func TestTimeEntryService_LogTime(t *testing.T) {
	caller := model.Identity{UserID: 2, Role: model.RoleUser}
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		projectID     int64
		taskID        int64
		entry         *model.TimeEntry
		setupMocks    func(*MockTimeEntryRepository, *MockTaskRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:      "success",
			projectID: 10,
			taskID:    20,
			entry:     &model.TimeEntry{Date: day, Hours: 3.5, Note: "api work"},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 10}, nil)
				er.On("Create", mock.Anything, mock.MatchedBy(func(e *repository.TimeEntry) bool {
					return e.TaskID == 20 && e.UserID == 2 && e.Hours == 3.5
				})).Return(int64(30), nil)
				er.On("Get", mock.Anything, int64(30)).Return(&repository.TimeEntry{
					ID: 30, TaskID: 20, UserID: 2, Date: day, Hours: 3.5, Note: "api work",
				}, nil)
			},
		},
		{
			name:          "non-positive hours",
			projectID:     10,
			taskID:        20,
			entry:         &model.TimeEntry{Date: day, Hours: 0},
			setupMocks:    func(er *MockTimeEntryRepository, tr *MockTaskRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidBody,
		},
		{
			name:      "task belongs to another project",
			projectID: 10,
			taskID:    20,
			entry:     &model.TimeEntry{Date: day, Hours: 2},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 99}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "task not found",
			projectID: 10,
			taskID:    20,
			entry:     &model.TimeEntry{Date: day, Hours: 2},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, int64(20)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEntryRepo := new(MockTimeEntryRepository)
			mockTaskRepo := new(MockTaskRepository)

			tt.setupMocks(mockEntryRepo, mockTaskRepo)

			service := NewTimeEntryService().
				WithTimeEntryRepo(mockEntryRepo).
				WithTaskRepo(mockTaskRepo)

			got, serr := service.LogTime(context.Background(), caller, tt.projectID, tt.taskID, tt.entry)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				assert.Nil(t, got)
			} else {
				assert.Nil(t, serr)
				assert.Equal(t, int64(2), got.UserID)
				assert.Equal(t, 3.5, got.Hours)
			}

			mockEntryRepo.AssertExpectations(t)
			mockTaskRepo.AssertExpectations(t)
		})
	}
}

func TestTimeEntryService_DeleteEntry(t *testing.T) {
	tests := []struct {
		name          string
		identity      model.Identity
		setupMocks    func(*MockTimeEntryRepository, *MockTaskRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "owner deletes own entry",
			identity: model.Identity{UserID: 2, Role: model.RoleUser},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				er.On("Get", mock.Anything, int64(30)).Return(&repository.TimeEntry{ID: 30, TaskID: 20, UserID: 2}, nil)
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 10}, nil)
				er.On("Delete", mock.Anything, int64(30)).Return(nil)
			},
		},
		{
			name:     "admin deletes anyone's entry",
			identity: model.Identity{UserID: 1, Role: model.RoleAdmin},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				er.On("Get", mock.Anything, int64(30)).Return(&repository.TimeEntry{ID: 30, TaskID: 20, UserID: 2}, nil)
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 10}, nil)
				er.On("Delete", mock.Anything, int64(30)).Return(nil)
			},
		},
		{
			name:     "entry's task belongs to another project",
			identity: model.Identity{UserID: 2, Role: model.RoleUser},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				er.On("Get", mock.Anything, int64(30)).Return(&repository.TimeEntry{ID: 30, TaskID: 20, UserID: 2}, nil)
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 99}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:     "other user denied",
			identity: model.Identity{UserID: 5, Role: model.RoleUser},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				er.On("Get", mock.Anything, int64(30)).Return(&repository.TimeEntry{ID: 30, TaskID: 20, UserID: 2}, nil)
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 10}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeAccessDenied,
		},
		{
			name:     "entry not found",
			identity: model.Identity{UserID: 2, Role: model.RoleUser},
			setupMocks: func(er *MockTimeEntryRepository, tr *MockTaskRepository) {
				er.On("Get", mock.Anything, int64(30)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockEntryRepo := new(MockTimeEntryRepository)
			mockTaskRepo := new(MockTaskRepository)
			tt.setupMocks(mockEntryRepo, mockTaskRepo)

			service := NewTimeEntryService().
				WithTimeEntryRepo(mockEntryRepo).
				WithTaskRepo(mockTaskRepo)

			serr := service.DeleteEntry(context.Background(), tt.identity, 10, 30)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				mockEntryRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.Nil(t, serr)
			}

			mockEntryRepo.AssertExpectations(t)
			mockTaskRepo.AssertExpectations(t)
		})
	}
}

func TestTimeEntryService_ProjectSummary(t *testing.T) {
	mockEntryRepo := new(MockTimeEntryRepository)
	mockEntryRepo.On("ProjectTotals", mock.Anything, int64(10)).Return([]*repository.UserHours{
		{UserID: 2, FullName: "John Doe", Hours: 12.5},
		{UserID: 3, FullName: "Jane Roe", Hours: 7.5},
	}, nil)

	service := NewTimeEntryService().WithTimeEntryRepo(mockEntryRepo)

	summary, serr := service.ProjectSummary(context.Background(), 10)

	assert.Nil(t, serr)
	assert.Equal(t, int64(10), summary.ProjectID)
	assert.Equal(t, 20.0, summary.TotalHours)
	assert.Len(t, summary.ByUser, 2)

	mockEntryRepo.AssertExpectations(t)
}
