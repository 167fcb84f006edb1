package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Products and Orders are fixed sample resources used to demonstrate the
// permission gate.

func Products(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"products": []echo.Map{
		{"id": 1, "name": "Product 1", "owner_id": 1},
		{"id": 2, "name": "Product 2", "owner_id": 2},
	}})
}

func Orders(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"orders": []echo.Map{
		{"id": 1, "product": "Product 1", "status": "completed"},
		{"id": 2, "product": "Product 2", "status": "pending"},
	}})
}
