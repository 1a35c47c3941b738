package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/okatenko/planhub/internal/model"
)

type MockAccessChecker struct {
	mock.Mock
}

func (m *MockAccessChecker) CheckAccess(ctx context.Context, identity model.Identity, projectID int64, required model.AccessLevel) (*model.AccessDecision, error) {
	args := m.Called(ctx, identity, projectID, required)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AccessDecision), args.Error(1)
}

func newGuardContext(t *testing.T, method, projectID string, identity *model.Identity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/projects/"+projectID, nil)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("project_id")
	c.SetParamValues(projectID)
	if identity != nil {
		c.Set(identityContextKey, *identity)
	}
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestRequireProjectAccess(t *testing.T) {
	member := model.Identity{UserID: 2, Role: model.RoleUser}
	level := func(l model.AccessLevel) *model.AccessLevel { return &l }

	tests := []struct {
		name           string
		projectID      string
		identity       *model.Identity
		required       model.AccessLevel
		setupMocks     func(*MockAccessChecker)
		expectedStatus int
	}{
		{
			name:      "allowed",
			projectID: "10",
			identity:  &member,
			required:  model.AccessReadWrite,
			setupMocks: func(ac *MockAccessChecker) {
				ac.On("CheckAccess", mock.Anything, member, int64(10), model.AccessReadWrite).
					Return(&model.AccessDecision{
						HasAccess:   true,
						Role:        model.TeamRoleMember,
						AccessLevel: level(model.AccessReadWrite),
					}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "insufficient level",
			projectID: "10",
			identity:  &member,
			required:  model.AccessFullAccess,
			setupMocks: func(ac *MockAccessChecker) {
				ac.On("CheckAccess", mock.Anything, member, int64(10), model.AccessFullAccess).
					Return(&model.AccessDecision{
						HasAccess:      false,
						Message:        "Insufficient access level",
						CurrentAccess:  level(model.AccessReadWrite),
						RequiredAccess: level(model.AccessFullAccess),
					}, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "unknown project",
			projectID: "999",
			identity:  &member,
			required:  model.AccessReadOnly,
			setupMocks: func(ac *MockAccessChecker) {
				ac.On("CheckAccess", mock.Anything, member, int64(999), model.AccessReadOnly).
					Return(&model.AccessDecision{HasAccess: false, Message: "Project not found"}, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:      "resolver error denies",
			projectID: "10",
			identity:  &member,
			required:  model.AccessReadOnly,
			setupMocks: func(ac *MockAccessChecker) {
				ac.On("CheckAccess", mock.Anything, member, int64(10), model.AccessReadOnly).
					Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "malformed project id denies without resolving",
			projectID:      "abc",
			identity:       &member,
			required:       model.AccessReadOnly,
			setupMocks:     func(ac *MockAccessChecker) {},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "missing identity",
			projectID:      "10",
			identity:       nil,
			required:       model.AccessReadOnly,
			setupMocks:     func(ac *MockAccessChecker) {},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := new(MockAccessChecker)
			tt.setupMocks(checker)

			c, rec := newGuardContext(t, http.MethodGet, tt.projectID, tt.identity)

			err := RequireProjectAccess(checker, tt.required)(okHandler)(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)

			checker.AssertExpectations(t)
		})
	}
}

func TestStakeholderAccessGuard_AdminSkipsLookup(t *testing.T) {
	checker := new(MockAccessChecker)
	admin := model.Identity{UserID: 1, Role: model.RoleAdmin}

	c, rec := newGuardContext(t, http.MethodDelete, "10", &admin)

	err := StakeholderAccessGuard(checker)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	checker.AssertNotCalled(t, "CheckAccess", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestStakeholderAccessGuard_ReadOnlyForWrites(t *testing.T) {
	checker := new(MockAccessChecker)
	observer := model.Identity{UserID: 4, Role: model.RoleUser}
	ro := model.AccessReadOnly

	checker.On("CheckAccess", mock.Anything, observer, int64(10), model.AccessReadOnly).
		Return(&model.AccessDecision{
			HasAccess:   true,
			Role:        model.TeamRoleObserver,
			AccessLevel: &ro,
		}, nil)

	c, rec := newGuardContext(t, http.MethodPost, "10", &observer)

	err := StakeholderAccessGuard(checker)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	checker.AssertExpectations(t)
}

func TestStakeholderAccessGuard_DeniesNonMember(t *testing.T) {
	checker := new(MockAccessChecker)
	outsider := model.Identity{UserID: 7, Role: model.RoleUser}

	checker.On("CheckAccess", mock.Anything, outsider, int64(10), model.AccessReadOnly).
		Return(&model.AccessDecision{HasAccess: false, Message: "User is not a member of this project team"}, nil)

	c, rec := newGuardContext(t, http.MethodGet, "10", &outsider)

	err := StakeholderAccessGuard(checker)(okHandler)(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	checker.AssertExpectations(t)
}
