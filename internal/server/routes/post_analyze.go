package routes

import (
	"encoding/json"
	"net/http"

	"github.com/signalhouse/brandgraph/internal/queue"
	"github.com/signalhouse/brandgraph/internal/server/middleware"
	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/analysis"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// AnalyzeHandler runs an analysis over the posted text. With "async" set
// the request is queued for the worker instead and a correlation ID is
// returned for matching the result on the results queue.
func AnalyzeHandler(c echo.Context) error {
	type analyzeBody struct {
		Text         string `json:"text" validate:"required"`
		SubjectBrand string `json:"subject_brand" validate:"required"`
		Async        bool   `json:"async"`
	}

	type analyzeResponse struct {
		Message       string                 `json:"message"`
		CorrelationID string                 `json:"correlation_id,omitempty"`
		Result        *common.AnalysisResult `json:"result,omitempty"`
	}

	data := new(analyzeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, analyzeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, analyzeResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	if data.Async {
		if app.Queue == nil {
			return c.JSON(http.StatusServiceUnavailable, analyzeResponse{
				Message: "Queue not configured",
			})
		}

		correlationID, err := gonanoid.New()
		if err != nil {
			logger.Error("Failed to generate correlation ID", "err", err)
			return c.JSON(http.StatusInternalServerError, analyzeResponse{
				Message: "Internal server error",
			})
		}

		body, err := json.Marshal(queue.AnalyzeMsg{
			CorrelationID: correlationID,
			SubjectBrand:  data.SubjectBrand,
			Text:          data.Text,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, analyzeResponse{
				Message: "Internal server error",
			})
		}

		if err := queue.PublishFIFO(app.Queue, queue.AnalyzeQueue, body); err != nil {
			logger.Error("Failed to queue analysis", "err", err)
			return c.JSON(http.StatusInternalServerError, analyzeResponse{
				Message: "Failed to queue analysis",
			})
		}

		return c.JSON(http.StatusAccepted, analyzeResponse{
			Message:       "Analysis queued",
			CorrelationID: correlationID,
		})
	}

	pipeline := analysis.NewPipeline(analysis.NewPipelineParams{
		SubjectBrand:           data.SubjectBrand,
		Inference:              app.AiClient,
		Store:                  app.Store,
		Search:                 app.Search,
		ConfidenceThreshold:    util.GetEnvNumeric("CONFIDENCE_THRESHOLD", analysis.DefaultConfidenceThreshold),
		LowConfidenceThreshold: util.GetEnvNumeric("LOW_CONFIDENCE_THRESHOLD", analysis.DefaultLowConfidenceThreshold),
		ResolveConcurrency:     util.GetEnvInt("RESOLVE_CONCURRENCY", analysis.DefaultResolveConcurrency),
	})

	result := pipeline.Analyze(ctx, data.Text)

	return c.JSON(http.StatusOK, analyzeResponse{
		Message: "Analysis complete",
		Result:  &result,
	})
}
