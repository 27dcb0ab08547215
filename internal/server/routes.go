package server

import (
	"net/http"

	"github.com/signalhouse/brandgraph/internal/server/middleware"
	"github.com/signalhouse/brandgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route, reports store connectivity
	e.GET("/health", func(c echo.Context) error {
		app := c.(*middleware.AppContext).App
		stats, err := app.Store.Stats(c.Request().Context())
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":      "healthy",
			"graph_stats": stats,
		})
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	apiRoutes.POST("/analyze", routes.AnalyzeHandler)
	apiRoutes.POST("/visualize", routes.VisualizeHandler)
	apiRoutes.GET("/stats", routes.GetStatsHandler)
	apiRoutes.GET("/categories", routes.GetCategoriesHandler)
}
