package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-rbac/internal/service"
)

// fail writes err as {"error": msg}.  Expected service errors keep their
// message; everything else is logged and reported as a generic 500.
func fail(c echo.Context, log *slog.Logger, err error) error {
	status := http.StatusInternalServerError
	switch service.KindOf(err) {
	case service.KindValidation:
		status = http.StatusBadRequest
	case service.KindAuthentication:
		status = http.StatusUnauthorized
	case service.KindAuthorization:
		status = http.StatusForbidden
	case service.KindNotFound:
		status = http.StatusNotFound
	case service.KindConfiguration:
		log.Error("configuration error", slog.String("path", c.Path()), slog.Any("err", err))
		return c.JSON(status, echo.Map{"error": err.Error()})
	default:
		log.Error("request failed", slog.String("path", c.Path()), slog.Any("err", err))
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
