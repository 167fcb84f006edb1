package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/model"
)

// PermissionChecker answers allow/deny for a user, object and action.
type PermissionChecker interface {
	Check(ctx context.Context, u model.User, object string, action model.Action) (bool, error)
}

// RequirePermission aborts with 403 unless the authenticated user may
// perform action on object.  It must run after BearerAuth.
func RequirePermission(gate PermissionChecker, log *slog.Logger, object string, action model.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u, ok := CurrentUser(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
			}
			allowed, err := gate.Check(c.Request().Context(), u, object, action)
			if err != nil {
				log.Error("permission check",
					slog.String("object", object), slog.String("action", string(action)), slog.Any("err", err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if !allowed {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}
			return next(c)
		}
	}
}
