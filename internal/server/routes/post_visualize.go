package routes

import (
	"net/http"

	"github.com/signalhouse/brandgraph/internal/server/middleware"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/store"

	"github.com/labstack/echo/v4"
)

// VisualizeHandler exports the stored graph as nodes and edges, optionally
// narrowed to one category.
func VisualizeHandler(c echo.Context) error {
	type visualizeBody struct {
		Category string `json:"category"`
	}

	type visualizeResponse struct {
		Message string `json:"message,omitempty"`
		store.GraphData
	}

	data := new(visualizeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, visualizeResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App

	graphData, err := app.Store.GraphData(c.Request().Context(), data.Category)
	if err != nil {
		logger.Error("Failed to export graph data", "category", data.Category, "err", err)
		return c.JSON(http.StatusInternalServerError, visualizeResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, visualizeResponse{GraphData: graphData})
}
