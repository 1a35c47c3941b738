package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/repository"
)

func TestTaskService_UpdateTask(t *testing.T) {
	title := "renamed"

	tests := []struct {
		name          string
		update        *TaskUpdate
		setupMocks    func(*MockTaskRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:   "success",
			update: &TaskUpdate{Title: &title},
			setupMocks: func(tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 10, Status: "TODO"}, nil)
				tr.On("Patch", mock.Anything, mock.MatchedBy(func(p *repository.TaskPatch) bool {
					return p.ID == 20 && p.Title != nil && *p.Title == "renamed"
				})).Return(&repository.Task{ID: 20, ProjectID: 10, Title: "renamed", Status: "TODO"}, nil)
			},
		},
		{
			name:          "empty patch rejected before the store",
			update:        &TaskUpdate{},
			setupMocks:    func(tr *MockTaskRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidBody,
		},
		{
			name:   "task belongs to another project",
			update: &TaskUpdate{Title: &title},
			setupMocks: func(tr *MockTaskRepository) {
				tr.On("Get", mock.Anything, int64(20)).Return(&repository.Task{ID: 20, ProjectID: 99, Status: "TODO"}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTaskRepo := new(MockTaskRepository)
			tt.setupMocks(mockTaskRepo)

			service := NewTaskService().WithTaskRepo(mockTaskRepo)

			got, serr := service.UpdateTask(context.Background(), 10, 20, tt.update)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				assert.Nil(t, got)
				mockTaskRepo.AssertNotCalled(t, "Patch", mock.Anything, mock.Anything)
			} else {
				assert.Nil(t, serr)
				assert.Equal(t, "renamed", got.Title)
			}

			mockTaskRepo.AssertExpectations(t)
		})
	}
}
