package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/config"
)

const refreshCookieName = "refresh_token"

// cookieJar writes and clears the refresh token cookie.
type cookieJar struct {
	cfg    config.CookieConfig
	maxAge int // seconds
}

func (j cookieJar) set(c echo.Context, value string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    value,
		Path:     j.cfg.Path,
		MaxAge:   j.maxAge,
		HttpOnly: true,
		Secure:   j.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (j cookieJar) clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     j.cfg.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshFromCookie(c echo.Context) string {
	ck, err := c.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}
