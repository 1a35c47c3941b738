package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/auth"
	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
)

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name          string
		setupMocks    func(*MockUserRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "success",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("Create", mock.Anything, mock.MatchedBy(func(u *repository.User) bool {
					return u.Email == "john@example.com" &&
						u.Role == "USER" &&
						auth.CheckPassword(u.PasswordHash, "secret-password")
				})).Return(int64(5), nil)
			},
		},
		{
			name: "email already registered",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("Create", mock.Anything, mock.Anything).Return(int64(0), repository.ErrAlreadyExists)
			},
			expectedError: true,
			errorCode:     ErrorCodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			tt.setupMocks(mockUserRepo)

			service := NewUserService(time.Hour).WithUserRepo(mockUserRepo)

			user, serr := service.Register(context.Background(), "john@example.com", "John Doe", "secret-password")

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				assert.Nil(t, user)
			} else {
				assert.Nil(t, serr)
				assert.Equal(t, int64(5), user.ID)
				assert.Equal(t, model.RoleUser, user.Role)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	auth.SetSecret("test-secret")

	hash, err := auth.HashPassword("secret-password")
	assert.NoError(t, err)

	stored := &repository.User{
		ID:           5,
		Email:        "john@example.com",
		FullName:     "John Doe",
		PasswordHash: hash,
		Role:         "MANAGER",
	}

	tests := []struct {
		name          string
		password      string
		setupMocks    func(*MockUserRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name:     "success",
			password: "secret-password",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("GetByEmail", mock.Anything, "john@example.com").Return(stored, nil)
			},
		},
		{
			name:     "wrong password",
			password: "not-the-password",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("GetByEmail", mock.Anything, "john@example.com").Return(stored, nil)
			},
			expectedError: true,
			errorCode:     ErrorCodeInvalidCredentials,
		},
		{
			name:     "unknown email",
			password: "secret-password",
			setupMocks: func(ur *MockUserRepository) {
				ur.On("GetByEmail", mock.Anything, "john@example.com").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			tt.setupMocks(mockUserRepo)

			service := NewUserService(time.Hour).WithUserRepo(mockUserRepo)

			token, serr := service.Login(context.Background(), "john@example.com", tt.password)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
				assert.Empty(t, token)
			} else {
				assert.Nil(t, serr)

				identity, ok := auth.Identity(token)
				assert.True(t, ok)
				assert.Equal(t, int64(5), identity.UserID)
				assert.Equal(t, model.RoleManager, identity.Role)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_SetRole(t *testing.T) {
	tests := []struct {
		name          string
		role          model.GlobalRole
		setupMocks    func(*MockUserRepository)
		expectedError bool
		errorCode     ErrorCode
	}{
		{
			name: "promote to manager",
			role: model.RoleManager,
			setupMocks: func(ur *MockUserRepository) {
				ur.On("SetRole", mock.Anything, int64(5), "MANAGER").Return(&repository.User{
					ID: 5, Email: "john@example.com", FullName: "John Doe", Role: "MANAGER",
				}, nil)
			},
		},
		{
			name:          "unknown role",
			role:          "SUPERUSER",
			setupMocks:    func(ur *MockUserRepository) {},
			expectedError: true,
			errorCode:     ErrorCodeInvalidBody,
		},
		{
			name: "user not found",
			role: model.RoleAdmin,
			setupMocks: func(ur *MockUserRepository) {
				ur.On("SetRole", mock.Anything, int64(5), "ADMIN").Return(nil, repository.ErrNotFound)
			},
			expectedError: true,
			errorCode:     ErrorCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserRepo := new(MockUserRepository)
			tt.setupMocks(mockUserRepo)

			service := NewUserService(time.Hour).WithUserRepo(mockUserRepo)

			user, serr := service.SetRole(context.Background(), 5, tt.role)

			if tt.expectedError {
				assert.NotNil(t, serr)
				assert.Equal(t, tt.errorCode, serr.Code)
			} else {
				assert.Nil(t, serr)
				assert.Equal(t, tt.role, user.Role)
			}

			mockUserRepo.AssertExpectations(t)
		})
	}
}
