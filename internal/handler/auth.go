package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/config"
	"github.com/iliyamo/auth-rbac/internal/service"
)

const requestTimeout = 5 * time.Second

// AuthHandler serves the /v1/auth endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	cookies cookieJar
	pages   *pages
	log     *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, cfg *config.Config, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		cookies: cookieJar{cfg: cfg.Cookie, maxAge: cfg.RefreshCookieMaxAge()},
		pages:   loadPages(),
		log:     log,
	}
}

// Register creates an unverified account and sends the verification email.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.auth.Register(ctx, req.input())
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, newUserResp(u, nil))
}

// VerifyEmail consumes the token from the emailed link.  Browsers get an
// HTML page, API clients JSON.
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("token"))
	wantsHTML := strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMETextHTML)

	var err error
	if raw == "" {
		err = service.ErrInvalidOrExpiredToken
	} else {
		ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
		defer cancel()
		err = h.auth.VerifyEmail(ctx, raw)
	}

	if wantsHTML {
		return h.pages.verifyResult(c, h.log, err)
	}
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "email verified"})
}

// Login returns the access token in the body and the refresh token in an
// HttpOnly cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	pair, err := h.auth.Login(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return fail(c, h.log, err)
	}
	h.cookies.set(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, tokenResp{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

// Refresh rotates the refresh cookie and signs out every other session.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	pair, err := h.auth.Refresh(ctx, refreshFromCookie(c))
	if err != nil {
		return fail(c, h.log, err)
	}
	h.cookies.set(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, tokenResp{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

// Logout wipes the user's sessions and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.auth.Logout(ctx, refreshFromCookie(c)); err != nil {
		return fail(c, h.log, err)
	}
	h.cookies.clear(c)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
