package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	t.Run("close with nil services", func(t *testing.T) {
		result := &InitResult{}
		// Should not panic
		result.Close()
	})
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.EmbeddingSettings
		wantNil     bool
		wantErr     bool
		errContains string
	}{
		{name: "nil settings returns nil", settings: nil, wantNil: true},
		{name: "unconfigured settings returns nil", settings: &domain.EmbeddingSettings{}, wantNil: true},
		{
			name:     "gemini without key is not configured",
			settings: &domain.EmbeddingSettings{Provider: domain.AIProviderGemini},
			wantNil:  true,
		},
		{
			name: "gemini provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderGemini,
				APIKey:   "test-key",
			},
		},
		{
			name: "ollama provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
		},
		{
			name: "openai provider creates service",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
		},
		{
			name: "anthropic provider returns error",
			settings: &domain.EmbeddingSettings{
				Provider: domain.AIProviderAnthropic,
				APIKey:   "test-key",
			},
			wantNil:     true,
			wantErr:     true,
			errContains: "anthropic does not support embeddings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(context.Background(), tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if tt.wantNil && svc != nil {
				t.Error("expected nil service, got non-nil")
			}
			if !tt.wantNil && svc == nil {
				t.Error("expected non-nil service, got nil")
			}
			if svc != nil {
				svc.Close()
			}
		})
	}
}

func TestCreateLLMService(t *testing.T) {
	providers := []domain.LLMSettings{
		{Provider: domain.AIProviderGemini, APIKey: "k"},
		{Provider: domain.AIProviderOllama},
		{Provider: domain.AIProviderOpenAI, APIKey: "k"},
		{Provider: domain.AIProviderAnthropic, APIKey: "k"},
	}
	for _, settings := range providers {
		t.Run(string(settings.Provider), func(t *testing.T) {
			svc, err := CreateLLMService(context.Background(), &settings)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc == nil {
				t.Fatal("expected service")
			}
			svc.Close()
		})
	}

	svc, err := CreateLLMService(context.Background(), &domain.LLMSettings{Provider: domain.AIProviderOpenAI})
	if err != nil || svc != nil {
		t.Errorf("missing key should return nil, nil; got %v, %v", svc, err)
	}
}

func TestCreateAndValidateLLMService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
		Provider: domain.AIProviderOllama,
		BaseURL:  srv.URL,
	})
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestInit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	t.Run("embedding unavailable falls back", func(t *testing.T) {
		res, err := Init(context.Background(),
			domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL},
			domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI},
		)
		if err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer res.Close()
		if !res.FellBack || res.EmbeddingService != nil || len(res.Warnings) != 1 {
			t.Errorf("expected fallback, got %+v", res)
		}
	})

	t.Run("both available", func(t *testing.T) {
		res, err := Init(context.Background(),
			domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL},
			domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: srv.URL},
		)
		if err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		defer res.Close()
		if res.FellBack || res.EmbeddingService == nil {
			t.Errorf("expected embeddings, got %+v", res)
		}
	})

	t.Run("llm not configured", func(t *testing.T) {
		_, err := Init(context.Background(),
			domain.LLMSettings{Provider: domain.AIProviderGemini},
			domain.EmbeddingSettings{},
		)
		if !errors.Is(err, domain.ErrLLMUnavailable) {
			t.Errorf("expected ErrLLMUnavailable, got %v", err)
		}
	})
}
