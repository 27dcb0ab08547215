package routes

import (
	"net/http"

	"github.com/signalhouse/brandgraph/internal/server/middleware"
	"github.com/signalhouse/brandgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

// GetCategoriesHandler lists every category present in the stored graph.
func GetCategoriesHandler(c echo.Context) error {
	type categoriesResponse struct {
		Categories []string `json:"categories"`
	}

	app := c.(*middleware.AppContext).App

	stats, err := app.Store.Stats(c.Request().Context())
	if err != nil {
		logger.Error("Failed to read store stats", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	categories := stats.Categories
	if categories == nil {
		categories = []string{}
	}

	return c.JSON(http.StatusOK, categoriesResponse{Categories: categories})
}
