package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/model"
	"github.com/iliyamo/auth-rbac/internal/service"
)

// AccessHandler administers access rules and role membership.  Routes are
// gated before they reach it.
type AccessHandler struct {
	access *service.AccessService
	log    *slog.Logger
}

func NewAccessHandler(access *service.AccessService, log *slog.Logger) *AccessHandler {
	return &AccessHandler{access: access, log: log}
}

type ruleResp struct {
	Role   string `json:"role"`
	Object string `json:"object"`
	model.Permissions
}

func (h *AccessHandler) ListRules(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	rules, err := h.access.ListRules(ctx)
	if err != nil {
		return fail(c, h.log, err)
	}
	out := make([]ruleResp, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleResp{Role: r.RoleName, Object: r.ObjectName, Permissions: r.Permissions})
	}
	return c.JSON(http.StatusOK, echo.Map{"rules": out})
}

func (h *AccessHandler) SetRule(c echo.Context) error {
	var req ruleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.access.SetRule(ctx, req.Role, req.Object, req.Permissions); err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, ruleResp{Role: req.Role, Object: req.Object, Permissions: req.Permissions})
}

func (h *AccessHandler) AssignRole(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	var req roleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.access.AssignRole(ctx, userID, req.Role); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccessHandler) RemoveRole(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.access.RemoveRole(ctx, userID, c.Param("role")); err != nil {
		return fail(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
