package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterAuth registers the session endpoints under /v1/auth.  None of
// them takes a bearer token; refresh and logout read the refresh cookie.
// The rate limiter, when configured, covers the whole group.
func RegisterAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	if d.Limiter != nil {
		g.Use(d.Limiter)
	}
	g.POST("/register", d.Auth.Register)
	g.GET("/verify-email", d.Auth.VerifyEmail)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)
}
