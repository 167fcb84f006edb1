package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/middleware"
	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/service"
)

// UserHandler serves the signed-in user's profile and the password reset
// flow.
type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
	pages *pages
	log   *slog.Logger
}

func NewUserHandler(users *service.UserService, auth *service.AuthService, log *slog.Logger) *UserHandler {
	return &UserHandler{users: users, auth: auth, pages: loadPages(), log: log}
}

func (h *UserHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, h.log, service.ErrInvalidToken)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.users.Profile(ctx, u.ID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, newUserResp(p.User, p.Roles))
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, h.log, service.ErrInvalidToken)
	}
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	p, err := h.users.UpdateProfile(ctx, u.ID, model.ProfileUpdate{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Patronymic: req.Patronymic,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, newUserResp(p.User, p.Roles))
}

// DeactivateMe soft-deletes the account; every session dies with it.
func (h *UserHandler) DeactivateMe(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return fail(c, h.log, service.ErrInvalidToken)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.users.Deactivate(ctx, u.ID); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated"})
}

// ForgotPassword answers the same way whether or not the email exists.
func (h *UserHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Email == "" {
		req.Email = c.QueryParam("email")
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.auth.RequestPasswordReset(ctx, req.Email); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "if the email is registered, a reset link has been sent"})
}

func (h *UserHandler) ResetPasswordPage(c echo.Context) error {
	return h.pages.resetForm(c, h.log, c.QueryParam("token"))
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
