package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/service"
)

// Authenticator resolves a raw access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, rawAccess string) (model.User, error)
}

// BearerAuth validates the Bearer access token of each request and stores
// the authenticated user in the context (see CurrentUser).  Revoked
// tokens and inactive users are rejected like malformed tokens.
func BearerAuth(auth Authenticator, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			u, err := auth.Authenticate(c.Request().Context(), strings.TrimSpace(raw))
			if err != nil {
				if service.KindOf(err) == service.KindAuthentication {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
				}
				log.Error("authenticate request", slog.String("path", c.Path()), slog.Any("err", err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			c.Set(userKey, u)
			return next(c)
		}
	}
}
