package queue

import (
	"context"
	"encoding/json"

	"github.com/signalhouse/brandgraph/internal/util"
	"github.com/signalhouse/brandgraph/pkg/ai"
	"github.com/signalhouse/brandgraph/pkg/analysis"
	"github.com/signalhouse/brandgraph/pkg/common"
	"github.com/signalhouse/brandgraph/pkg/logger"
	"github.com/signalhouse/brandgraph/pkg/search"
	"github.com/signalhouse/brandgraph/pkg/store"

	"github.com/rabbitmq/amqp091-go"
)

// AnalyzeMsg is the payload of an analysis request on AnalyzeQueue.
type AnalyzeMsg struct {
	CorrelationID string `json:"correlation_id"`
	SubjectBrand  string `json:"subject_brand"`
	Text          string `json:"text"`
}

// AnalysisResultMsg is published to ResultsQueue when a run finishes.
type AnalysisResultMsg struct {
	CorrelationID string                 `json:"correlation_id"`
	Result        *common.AnalysisResult `json:"result,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

// ProcessAnalyzeMessage runs one analysis request from the queue and
// publishes the result. A malformed payload is an error so the worker can
// route the message to the retry or dead-letter queue.
func ProcessAnalyzeMessage(
	ctx context.Context,
	aiClient ai.InferenceClient,
	st store.RelationStore,
	searchClient *search.Client,
	ch *amqp091.Channel,
	msg string,
) error {
	data := new(AnalyzeMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	logger.Info("[Queue] Processing analysis request",
		"correlation_id", data.CorrelationID,
		"subject", data.SubjectBrand,
	)

	pipeline := analysis.NewPipeline(analysis.NewPipelineParams{
		SubjectBrand:           data.SubjectBrand,
		Inference:              aiClient,
		Store:                  st,
		Search:                 searchClient,
		ConfidenceThreshold:    util.GetEnvNumeric("CONFIDENCE_THRESHOLD", analysis.DefaultConfidenceThreshold),
		LowConfidenceThreshold: util.GetEnvNumeric("LOW_CONFIDENCE_THRESHOLD", analysis.DefaultLowConfidenceThreshold),
		ResolveConcurrency:     util.GetEnvInt("RESOLVE_CONCURRENCY", analysis.DefaultResolveConcurrency),
	})

	result := pipeline.Analyze(ctx, data.Text)

	resultMsg := AnalysisResultMsg{
		CorrelationID: data.CorrelationID,
		Result:        &result,
	}
	body, err := json.Marshal(resultMsg)
	if err != nil {
		return err
	}

	if err := PublishFIFO(ch, ResultsQueue, body); err != nil {
		return err
	}

	logger.Info("[Queue] Published analysis result",
		"correlation_id", data.CorrelationID,
		"relationships", len(result.Relationships),
	)
	return nil
}
