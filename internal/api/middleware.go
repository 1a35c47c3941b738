package api

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/okatenko/planhub/internal/auth"
	"github.com/okatenko/planhub/internal/model"
	"github.com/okatenko/planhub/internal/service"
	"github.com/okatenko/planhub/pkg/logger"
)

const identityContextKey = "identity"

func ZapLoggerMiddleware(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			res := c.Response()

			requestID := c.Response().Header().Get(echo.HeaderXRequestID)

			reqLogger := l.With(
				zap.String("request_id", requestID),
			)

			ctx := logger.WithLogger(req.Context(), reqLogger)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			latency := time.Since(start)

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("uri", req.RequestURI),
				zap.String("remote_ip", c.RealIP()),
				zap.Int("status", res.Status),
				zap.Duration("latency", latency),
				zap.Int64("bytes_in", req.ContentLength),
				zap.Int64("bytes_out", res.Size),
			}

			if err != nil {
				fields = append(fields, zap.Error(err))
				reqLogger.Error("request failed", fields...)
			} else {
				reqLogger.Info("request completed", fields...)
			}

			return err
		}
	}
}

// AuthMiddleware requires a valid bearer token. When roles are given the
// caller's global role must be one of them.
func AuthMiddleware(roles ...model.GlobalRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return writeError(c, http.StatusUnauthorized,
					service.NewError(service.ErrorCodeUnauthorized, "missing bearer token"))
			}

			identity, ok := auth.Identity(token)
			if !ok {
				return writeError(c, http.StatusUnauthorized,
					service.NewError(service.ErrorCodeUnauthorized, "invalid or expired token"))
			}

			if len(roles) > 0 && !slices.Contains(roles, identity.Role) {
				return writeError(c, http.StatusForbidden,
					service.NewError(service.ErrorCodeAccessDenied, "insufficient role"))
			}

			c.Set(identityContextKey, identity)
			return next(c)
		}
	}
}

func identityFrom(c echo.Context) (model.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(model.Identity)
	return identity, ok
}

func writeError(c echo.Context, status int, err *service.Error) error {
	return c.JSON(status, struct {
		Error *service.Error `json:"error"`
	}{Error: err})
}
