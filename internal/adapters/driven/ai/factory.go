// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	geminiembed "github.com/custodia-labs/repoqa/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/repoqa/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/repoqa/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/repoqa/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/repoqa/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/repoqa/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/repoqa/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// embeddingDimensions lists known vector sizes per model.
var embeddingDimensions = map[string]int{
	"embedding-001":          768,
	"text-embedding-004":     768,
	"nomic-embed-text":       768,
	"mxbai-embed-large":      1024,
	"all-minilm":             384,
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
}

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	LLMService       driven.LLMService
	EmbeddingService driven.EmbeddingService // nil when retrieval is degraded.
	Warnings         []string                // Non-fatal issues that caused fallback.
	FellBack         bool                    // True if embeddings are unavailable.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Init creates and validates both AI services. The LLM is required; an
// unreachable embedding provider is recorded as a warning and questions
// fall back to using the whole corpus as context.
func Init(ctx context.Context, llm domain.LLMSettings, embedding domain.EmbeddingSettings) (*InitResult, error) {
	llmSvc, err := CreateAndValidateLLMService(ctx, &llm)
	if err != nil {
		return nil, err
	}
	if llmSvc == nil {
		return nil, fmt.Errorf("%w: provider %q is not configured (missing API key?)",
			domain.ErrLLMUnavailable, llm.Provider)
	}

	result := &InitResult{LLMService: llmSvc}
	embedSvc, err := CreateAndValidateEmbeddingService(ctx, &embedding)
	switch {
	case err != nil:
		result.Warnings = append(result.Warnings, err.Error())
		result.FellBack = true
	case embedSvc == nil:
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("embedding provider %q is not configured", embedding.Provider))
		result.FellBack = true
	default:
		result.EmbeddingService = embedSvc
	}
	for _, w := range result.Warnings {
		logger.Warn("%s; answers will use the whole repository as context", w)
	}
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	if svc == nil {
		return nil, nil
	}

	if err := ping(ctx, svc.Ping); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	dimensions := embeddingDimensions[settings.Model]
	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     settings.APIKey,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: dimensions,
		})

	case domain.AIProviderAnthropic:
		return nil, fmt.Errorf("anthropic does not support embeddings, use gemini, ollama or openai")

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the LLM service selected by settings.
// Returns nil if the provider is not configured.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderGemini:
		return geminillm.NewLLMService(ctx, geminillm.Config{
			APIKey: settings.APIKey,
			Model:  settings.Model,
		})

	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}
