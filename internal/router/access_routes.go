package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/handler"
	"github.com/iliyamo/auth-rbac/internal/middleware"
	"github.com/iliyamo/auth-rbac/internal/model"
)

// RegisterExamples registers the sample resources guarded by the
// permission gate.
func RegisterExamples(e *echo.Echo, d Deps) {
	authn := middleware.BearerAuth(d.Authn, d.Log)
	e.GET("/v1/products", handler.Products, authn, d.require("products", model.ActionRead))
	e.GET("/v1/orders", handler.Orders, authn, d.require("orders", model.ActionRead))
}

// RegisterAccess registers rule and role administration.  Rules are gated
// on the access_rules object, role membership on users.
func RegisterAccess(e *echo.Echo, d Deps) {
	authn := middleware.BearerAuth(d.Authn, d.Log)
	e.GET("/v1/access-rules", d.Access.ListRules, authn, d.require("access_rules", model.ActionReadAll))
	e.PUT("/v1/access-rules", d.Access.SetRule, authn, d.require("access_rules", model.ActionUpdateAll))
	e.POST("/v1/users/:id/roles", d.Access.AssignRole, authn, d.require("users", model.ActionUpdateAll))
	e.DELETE("/v1/users/:id/roles/:role", d.Access.RemoveRole, authn, d.require("users", model.ActionUpdateAll))
}

func (d Deps) require(object string, action model.Action) echo.MiddlewareFunc {
	return middleware.RequirePermission(d.Gate, d.Log, object, action)
}
