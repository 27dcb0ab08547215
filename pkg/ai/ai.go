package ai

import "context"

// GenerateOptions holds configuration for inference requests.
type GenerateOptions struct {
	Model         string   // Model identifier to use for generation
	SystemPrompts []string // System prompts prepended to the request
	Temperature   float64  // Sampling temperature (0.0-2.0)
}

// GenerateOption is a functional option for configuring inference requests.
type GenerateOption func(*GenerateOptions)

// WithModel sets the model used for the request.
func WithModel(model string) GenerateOption {
	return func(o *GenerateOptions) {
		o.Model = model
	}
}

// WithSystemPrompts sets the system prompts prepended to the request.
func WithSystemPrompts(prompts ...string) GenerateOption {
	return func(o *GenerateOptions) {
		o.SystemPrompts = prompts
	}
}

// WithTemperature sets the sampling temperature. Lower values make the
// output more deterministic, which is what extraction prompts want.
func WithTemperature(temp float64) GenerateOption {
	return func(o *GenerateOptions) {
		o.Temperature = temp
	}
}

// ModelMetrics accumulates token and latency counters across inference calls.
type ModelMetrics struct {
	InputTokens  int   `json:"input_tokens"`
	OutputTokens int   `json:"output_tokens"`
	TotalTokens  int   `json:"total_tokens"`
	DurationMs   int64 `json:"duration_ms"`
}

// InferenceClient is the generative capability the resolution engine depends
// on. Implementations turn prompts into raw text or schema-constrained JSON;
// latency, cost, and occasionally malformed output are the caller's problem
// to tolerate, not the interface's to hide.
type InferenceClient interface {
	// GenerateCompletion sends a single-turn prompt and returns the raw
	// completion text.
	GenerateCompletion(
		ctx context.Context,
		prompt string,
		opts ...GenerateOption,
	) (string, error)

	// GenerateCompletionWithFormat sends a prompt and decodes the response
	// into out, using a JSON schema derived from out's type to constrain
	// the model where the backend supports it. A response that cannot be
	// decoded is an error, never a silent default.
	GenerateCompletionWithFormat(
		ctx context.Context,
		name string,
		description string,
		prompt string,
		out any,
		opts ...GenerateOption,
	) error

	ResetMetrics()
	GetMetrics() ModelMetrics
}
