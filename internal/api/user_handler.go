package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/pkg/logger"
)

func (h *Handler) Register(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name" validate:"required"`
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("registering user", zap.String("email", req.Email))

	user, err := h.users.Register(e.Request().Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		l.Error("failed to register user", zap.String("email", req.Email), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, user)
}

func (h *Handler) Login(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	token, err := h.users.Login(e.Request().Context(), req.Email, req.Password)
	if err != nil {
		l.Warn("login rejected", zap.String("email", req.Email))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, struct {
		Token string `json:"token"`
	}{Token: token})
}

func (h *Handler) GetMe(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	identity, serr := h.identity(e)
	if serr != nil {
		return h.transportError(e, serr)
	}

	user, serr := h.users.GetUser(e.Request().Context(), identity.UserID)
	if serr != nil {
		l.Error("failed to get user", zap.Int64("user_id", identity.UserID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, user)
}

func (h *Handler) ListUsers(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	users, serr := h.users.ListUsers(e.Request().Context())
	if serr != nil {
		l.Error("failed to list users", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, users)
}

func (h *Handler) SetUserRole(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	userID, serr := h.pathID(e, "id")
	if serr != nil {
		return h.transportError(e, serr)
	}

	var req struct {
		Role string `json:"role" validate:"required"`
	}

	if serr := h.decodeRequest(e, &req); serr != nil {
		l.Error("invalid request", zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	l.Info("setting user role", zap.Int64("user_id", userID), zap.String("role", req.Role))

	user, serr := h.users.SetRole(e.Request().Context(), userID, model.GlobalRole(req.Role))
	if serr != nil {
		l.Error("failed to set user role", zap.Int64("user_id", userID), zap.Any("error", serr))
		return h.transportError(e, serr)
	}

	return e.JSON(http.StatusOK, user)
}
