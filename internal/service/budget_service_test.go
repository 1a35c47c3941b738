package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/repository"
)

func TestBudgetService_DeleteEntry(t *testing.T) {
	tests := []struct {
		name          string
		projectID     int64
		entryID       int64
		setupMocks    func(*MockBudgetRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:      "success",
			projectID: 1,
			entryID:   5,
			setupMocks: func(br *MockBudgetRepository) {
				br.On("Get", mock.Anything, int64(5)).Return(&repository.BudgetEntry{
					ID: 5, ProjectID: 1, Category: "hardware", Amount: "1200.00",
				}, nil)
				br.On("Delete", mock.Anything, int64(5)).Return(nil)
			},
		},
		{
			name:      "entry belongs to another project",
			projectID: 1,
			entryID:   5,
			setupMocks: func(br *MockBudgetRepository) {
				br.On("Get", mock.Anything, int64(5)).Return(&repository.BudgetEntry{
					ID: 5, ProjectID: 99, Category: "hardware", Amount: "1200.00",
				}, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "entry not found",
			projectID: 1,
			entryID:   5,
			setupMocks: func(br *MockBudgetRepository) {
				br.On("Get", mock.Anything, int64(5)).Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
		{
			name:      "get failure",
			projectID: 1,
			entryID:   5,
			setupMocks: func(br *MockBudgetRepository) {
				br.On("Get", mock.Anything, int64(5)).Return(nil, errors.New("db error"))
			},
			expectedError: true,
			errorCode:     ErrorCodeUnspecified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockBudgetRepo := new(MockBudgetRepository)
			tt.setupMocks(mockBudgetRepo)

			service := NewBudgetService().WithBudgetRepo(mockBudgetRepo)

			serr := service.DeleteEntry(context.Background(), tt.projectID, tt.entryID)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				mockBudgetRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.Nil(t, serr)
			}

			mockBudgetRepo.AssertExpectations(t)
		})
	}
}

func TestBudgetService_Summary(t *testing.T) {
	mockBudgetRepo := new(MockBudgetRepository)
	mockBudgetRepo.On("Summary", mock.Anything, int64(1)).Return(&repository.BudgetSummary{
		Allocated: "5000.00",
		Spent:     "1200.00",
	}, nil)

	service := NewBudgetService().WithBudgetRepo(mockBudgetRepo)

	summary, serr := service.Summary(context.Background(), 1)

	assert.Nil(t, serr)
	assert.Equal(t, int64(1), summary.ProjectID)
	assert.Equal(t, "5000.00", summary.Allocated)
	assert.Equal(t, "1200.00", summary.Spent)

	mockBudgetRepo.AssertExpectations(t)
}
