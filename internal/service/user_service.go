package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/auth"
	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/repository"
	"github.com/okatenko/planhub/pkg/logger"
)

type UserService struct {
	users repository.UserRepository

	tokenTTL time.Duration
}

func NewUserService(tokenTTL time.Duration) *UserService {
	return &UserService{tokenTTL: tokenTTL}
}

// Register creates a user account with the weakest global role. Roles are
// escalated only by an admin via SetRole.
func (u *UserService) Register(ctx context.Context, email, fullName, password string) (*model.User, *Error) {
	l := logger.FromContext(ctx)

	hash, err := auth.HashPassword(password)
	if err != nil {
		l.Error("failed to hash password", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to register user")
	}

	id, err := u.users.Create(ctx, &repository.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         string(model.RoleUser),
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, NewError(ErrorCodeAlreadyExists, "email already registered")
	}
	if err != nil {
		l.Error("failed to create user", zap.String("email", email), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to register user")
	}

	return &model.User{
		ID:       id,
		Email:    email,
		FullName: fullName,
		Role:     model.RoleUser,
	}, nil
}

// Login checks credentials and issues a bearer token carrying the caller's
// identity. Unknown email and wrong password are indistinguishable to the
// caller.
func (u *UserService) Login(ctx context.Context, email, password string) (string, *Error) {
	l := logger.FromContext(ctx)

	user, err := u.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", NewError(ErrorCodeInvalidCredentials, "invalid email or password")
	}
	if err != nil {
		l.Error("failed to get user", zap.String("email", email), zap.Error(err))
		return "", NewError(ErrorCodeUnspecified, "failed to log in")
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", NewError(ErrorCodeInvalidCredentials, "invalid email or password")
	}

	token, err := auth.GenerateToken(user.ID, model.GlobalRole(user.Role), u.tokenTTL)
	if err != nil {
		l.Error("failed to generate token", zap.Int64("user_id", user.ID), zap.Error(err))
		return "", NewError(ErrorCodeUnspecified, "failed to log in")
	}
	return token, nil
}

func (u *UserService) GetUser(ctx context.Context, userID int64) (*model.User, *Error) {
	l := logger.FromContext(ctx)

	user, err := u.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "user not found")
	}
	if err != nil {
		l.Error("failed to get user", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get user")
	}

	return userToModel(user), nil
}

func (u *UserService) ListUsers(ctx context.Context) ([]*model.User, *Error) {
	l := logger.FromContext(ctx)

	usersRepo, err := u.users.List(ctx)
	if err != nil {
		l.Error("failed to list users", zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list users")
	}

	users := make([]*model.User, 0, len(usersRepo))
	for _, user := range usersRepo {
		users = append(users, userToModel(user))
	}
	return users, nil
}

func (u *UserService) SetRole(ctx context.Context, userID int64, role model.GlobalRole) (*model.User, *Error) {
	l := logger.FromContext(ctx)

	switch role {
	case model.RoleAdmin, model.RoleManager, model.RoleUser:
	default:
		return nil, NewError(ErrorCodeInvalidBody, "unknown role")
	}

	user, err := u.users.SetRole(ctx, userID, string(role))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "user not found")
	}
	if err != nil {
		l.Error("failed to set user role", zap.Int64("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to set user role")
	}

	return userToModel(user), nil
}

func userToModel(u *repository.User) *model.User {
	return &model.User{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     model.GlobalRole(u.Role),
	}
}

func (u *UserService) WithUserRepo(r repository.UserRepository) *UserService {
	u.users = r
	return u
}
