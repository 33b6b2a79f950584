package server

import (
	"github.com/inkwell-labs/cartograph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, h *routes.Handler) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	e.POST("/extract", h.ExtractHandler)
}
