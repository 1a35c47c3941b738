package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/service"
	"github.com/okatenko/planhub/pkg/logger"
)

// AccessChecker resolves whether an identity may act on a project at the
// required access level.
type AccessChecker interface {
	CheckAccess(ctx context.Context, identity model.Identity, projectID int64, required model.AccessLevel) (*model.AccessDecision, error)
}

// RequireProjectAccess guards a project-scoped route. Every outcome is
// terminal: the request proceeds only on an affirmative decision, and any
// failure along the way, including a resolver error, denies.
func RequireProjectAccess(checker AccessChecker, required model.AccessLevel) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := identityFrom(c)
			if !ok {
				return writeError(c, http.StatusUnauthorized,
					service.NewError(service.ErrorCodeUnauthorized, "missing bearer token"))
			}

			projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
			if err != nil {
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, "Project not found"))
			}

			ctx := c.Request().Context()
			decision, err := checker.CheckAccess(ctx, identity, projectID, required)
			if err != nil {
				logger.FromContext(ctx).Error("access check failed",
					zap.Int64("project_id", projectID),
					zap.Int64("user_id", identity.UserID),
					zap.Error(err))
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, "access check failed"))
			}
			if !decision.HasAccess {
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, decision.Message))
			}

			return next(c)
		}
	}
}

// StakeholderAccessGuard guards stakeholder routes. Admins pass without a
// lookup; everyone else needs read access to the project, for reads and
// writes alike.
func StakeholderAccessGuard(checker AccessChecker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := identityFrom(c)
			if !ok {
				return writeError(c, http.StatusUnauthorized,
					service.NewError(service.ErrorCodeUnauthorized, "missing bearer token"))
			}

			if identity.IsAdmin() {
				return next(c)
			}

			projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
			if err != nil {
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, "Project not found"))
			}

			ctx := c.Request().Context()
			decision, err := checker.CheckAccess(ctx, identity, projectID, model.AccessReadOnly)
			if err != nil {
				logger.FromContext(ctx).Error("access check failed",
					zap.Int64("project_id", projectID),
					zap.Int64("user_id", identity.UserID),
					zap.Error(err))
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, "access check failed"))
			}
			if !decision.HasAccess {
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, decision.Message))
			}

			return next(c)
		}
	}
}
