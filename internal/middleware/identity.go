package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/model"
)

const userKey = "auth.user"

// CurrentUser returns the user stored by BearerAuth.
func CurrentUser(c echo.Context) (model.User, bool) {
	u, ok := c.Get(userKey).(model.User)
	return u, ok
}

// userID is the rate-limit identity of the request: the user id when
// authenticated, "anon" otherwise.
func userID(c echo.Context) string {
	if u, ok := CurrentUser(c); ok {
		return strconv.FormatUint(u.ID, 10)
	}
	return "anon"
}
