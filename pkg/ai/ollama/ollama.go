package ollama

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/signalhouse/brandgraph/pkg/ai"

	"github.com/ollama/ollama/api"
	"golang.org/x/sync/semaphore"
)

// OllamaInferenceClient implements the ai.InferenceClient interface using
// Ollama as the backend, for running the extraction and relationship
// inference prompts against locally-hosted models.
type OllamaInferenceClient struct {
	extractionModel string
	inferenceModel  string

	reqLock *semaphore.Weighted

	metricsLock sync.Mutex
	metrics     ai.ModelMetrics

	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client

	Client *api.Client
}

// NewOllamaInferenceClientParams contains configuration options for creating
// a new OllamaInferenceClient.
//
// MaxConcurrentRequests bounds the number of in-flight requests; local
// models degrade badly when oversubscribed.
type NewOllamaInferenceClientParams struct {
	ExtractionModel string
	InferenceModel  string

	BaseURL string
	ApiKey  string

	MaxConcurrentRequests int64
}

type headerTransport struct {
	headers map[string]string
	rt      http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so original request isn't modified
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		// don't overwrite if already set
		if r.Header.Get(k) == "" {
			r.Header.Set(k, v)
		}
	}
	return t.rt.RoundTrip(r)
}

// NewOllamaInferenceClient creates a new Ollama-based inference client with
// the specified configuration. It connects to the Ollama server at the given
// BaseURL (or the default if empty).
func NewOllamaInferenceClient(
	params NewOllamaInferenceClientParams,
) (*OllamaInferenceClient, error) {
	var (
		u   *url.URL
		err error
	)

	if params.BaseURL != "" {
		u, err = url.Parse(params.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	httpClient := &http.Client{
		Transport: &headerTransport{
			headers: map[string]string{
				"Authorization": "Bearer " + params.ApiKey,
			},
			rt: http.DefaultTransport,
		},
	}

	cli := api.NewClient(u, httpClient)

	if params.MaxConcurrentRequests <= 0 {
		params.MaxConcurrentRequests = 1
	}
	sem := semaphore.NewWeighted(params.MaxConcurrentRequests)

	return &OllamaInferenceClient{
		extractionModel: params.ExtractionModel,
		inferenceModel:  params.InferenceModel,

		reqLock: sem,

		metricsLock: sync.Mutex{},
		metrics: ai.ModelMetrics{
			InputTokens:  0,
			OutputTokens: 0,
			TotalTokens:  0,
			DurationMs:   0,
		},

		baseURL:    u,
		apiKey:     params.ApiKey,
		httpClient: httpClient,

		Client: cli,
	}, nil
}
