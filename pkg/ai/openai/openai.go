package openai

import (
	"sync"

	"github.com/signalhouse/brandgraph/pkg/ai"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIInferenceClient is an OpenAI-compatible backend for the relationship
// resolution engine. It serves both the extraction prompts (brands,
// categories, citations) and the relationship inference prompt.
//
// An OpenAIInferenceClient should be created using NewOpenAIInferenceClient.
type OpenAIInferenceClient struct {
	extractionModel string
	inferenceModel  string

	chatURL string
	chatKey string

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	ChatClient *openai.Client
}

// NewOpenAIInferenceClientParams defines the configuration parameters for
// creating a new OpenAIInferenceClient.
//
// ExtractionModel specifies the model used for brand, category, and citation
// extraction. InferenceModel specifies the model used for relationship
// inference. ChatURL and ChatKey configure the chat/completion API endpoint;
// an empty ChatURL means the default OpenAI endpoint.
type NewOpenAIInferenceClientParams struct {
	ExtractionModel string
	InferenceModel  string

	ChatURL string
	ChatKey string
}

// NewOpenAIInferenceClient creates and returns a new OpenAIInferenceClient
// configured with the provided parameters.
//
// Example:
//
//	params := openai.NewOpenAIInferenceClientParams{
//		ExtractionModel: "gpt-4o-mini",
//		InferenceModel:  "gpt-4o-mini",
//		ChatKey:         os.Getenv("OPENAI_API_KEY"),
//	}
//	client := openai.NewOpenAIInferenceClient(params)
func NewOpenAIInferenceClient(
	params NewOpenAIInferenceClientParams,
) *OpenAIInferenceClient {
	chatClient := newOpenaiClient(params.ChatURL, params.ChatKey)

	return &OpenAIInferenceClient{
		extractionModel: params.ExtractionModel,
		inferenceModel:  params.InferenceModel,

		chatURL: params.ChatURL,
		chatKey: params.ChatKey,

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		ChatClient: chatClient,
	}
}

func newOpenaiClient(
	baseURL string,
	apiKey string,
) *openai.Client {
	if apiKey == "" {
		return nil
	}
	options := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}

	if baseURL != "" {
		options = append(options, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(options...)

	return &client
}

func (c *OpenAIInferenceClient) modifyMetrics(delta ai.ModelMetrics) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics.InputTokens += delta.InputTokens
	c.metrics.OutputTokens += delta.OutputTokens
	c.metrics.TotalTokens += delta.TotalTokens
	c.metrics.DurationMs += delta.DurationMs
}

// ResetMetrics clears the accumulated token and latency counters.
func (c *OpenAIInferenceClient) ResetMetrics() {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.metrics = ai.ModelMetrics{}
}

// GetMetrics returns a snapshot of the accumulated token and latency counters.
func (c *OpenAIInferenceClient) GetMetrics() ai.ModelMetrics {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	return c.metrics
}
