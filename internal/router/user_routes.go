package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/middleware"
)

// RegisterUsers registers the profile endpoints (bearer token required)
// and the password reset flow (public, rate limited).
func RegisterUsers(e *echo.Echo, d Deps) {
	authn := middleware.BearerAuth(d.Authn, d.Log)
	e.GET("/v1/users/me", d.Users.Me, authn)
	e.PUT("/v1/users/me", d.Users.UpdateMe, authn)
	e.DELETE("/v1/users/me", d.Users.DeactivateMe, authn)

	pw := e.Group("/v1/users/password")
	if d.Limiter != nil {
		pw.Use(d.Limiter)
	}
	pw.POST("/forgot", d.Users.ForgotPassword)
	pw.GET("/reset", d.Users.ResetPasswordPage)
	pw.POST("/reset", d.Users.ResetPassword)
}
