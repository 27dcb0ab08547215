package routes

import (
	"net/http"

	"github.com/signalhouse/brandgraph/internal/server/middleware"
	"github.com/signalhouse/brandgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetStatsHandler summarizes the stored graph.
func GetStatsHandler(c echo.Context) error {
	app := c.(*middleware.AppContext).App

	stats, err := app.Store.Stats(c.Request().Context())
	if err != nil {
		logger.Error("Failed to read store stats", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, stats)
}
