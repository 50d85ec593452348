package driven

import "context"

// LLMService completes a single prompt. The router and the composer are its
// only callers. Provider failures wrap domain.ErrLLMUnavailable.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	ModelName() string

	// Ping checks the provider is reachable without running inference.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes one completion. Zero values use provider defaults.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64

	// StopWords end generation when produced.
	StopWords []string
}
