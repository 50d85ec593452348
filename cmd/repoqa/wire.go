package main

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/repoqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/auth"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/cache"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/llm/capabilities"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/metrics/prometheus"
	sessionmemory "github.com/custodia-labs/repoqa/internal/adapters/driven/session/memory"
	"github.com/custodia-labs/repoqa/internal/adapters/driven/vector/chromem"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/repoqa/internal/config"
	"github.com/custodia-labs/repoqa/internal/connectors/github"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/core/services"
	"github.com/custodia-labs/repoqa/internal/logger"
	"github.com/custodia-labs/repoqa/internal/postprocessors"
)

const sweepInterval = time.Minute

// newServiceFactory wires the adapters into the core services. It runs on
// the first command that needs them.
func newServiceFactory(store driven.ConfigStore) cli.ServiceFactory {
	return func(ctx context.Context) (*cli.Services, error) {
		settings, err := config.Load(store)
		if err != nil {
			return nil, err
		}

		chunker, err := postprocessors.NewChunker(settings.Chunker)
		if err != nil {
			return nil, fmt.Errorf("creating chunker: %w", err)
		}

		aiResult, err := ai.Init(ctx, settings.LLM, settings.Embedding)
		if err != nil {
			return nil, err
		}

		fetchCache, err := cache.New(ctx, settings.Cache)
		if err != nil {
			aiResult.Close()
			return nil, err
		}

		bgCtx, cancel := context.WithCancel(context.Background())

		index := chromem.New()
		sessions := sessionmemory.NewStore(settings.Server.SessionTTL)
		sessions.OnEvict = func(id string) {
			if err := index.Drop(context.Background(), id); err != nil {
				logger.Warn("dropping index for expired session %s: %v", id, err)
			}
		}
		go sessions.Run(bgCtx, sweepInterval)

		locks := services.NewSessionLocks()
		metrics := prometheus.New()

		router := capabilities.NewRouter(aiResult.LLMService)
		composer := capabilities.NewComposer(aiResult.LLMService,
			capabilities.WithMaxContextChars(settings.Retrieval.MaxContextChars))
		if prompts, err := file.NewPromptStore(""); err != nil {
			logger.Warn("custom prompts disabled: %v", err)
		} else {
			router.SetPromptStore(prompts)
			composer.SetPromptStore(prompts)
			go func() {
				if err := prompts.Watch(bgCtx); err != nil {
					logger.Debug("prompt watcher stopped: %v", err)
				}
			}()
		}

		ingest := services.NewIngestService(
			github.NewFetcher(github.ConfigFromSettings(settings.GitHub)),
			chunker,
			index,
			sessions,
			services.IngestConfig{
				MaxFiles:   settings.Ingest.MaxFiles,
				Truncation: settings.Ingest.Truncation,
			},
		)
		ingest.SetEmbeddingService(aiResult.EmbeddingService)
		ingest.SetFetchCache(fetchCache)
		ingest.SetTokenProvider(auth.NewTokenProvider(settings.GitHubToken, store))
		ingest.SetMetrics(metrics)
		ingest.SetSessionLocks(locks)

		question := services.NewQuestionService(
			router,
			composer,
			aiResult.EmbeddingService,
			index,
			services.RetrievalConfig{
				K:      settings.Retrieval.K,
				Lambda: settings.Retrieval.Lambda,
			},
		)
		question.SetMetrics(metrics)
		question.SetSessionLocks(locks)
		question.SetSessionStore(sessions)

		sessionService := services.NewSessionService(sessions, index)
		sessionService.SetSessionLocks(locks)

		return &cli.Services{
			Sessions: sessionService,
			Ingest:   ingest,
			Question: question,
			Metrics:  metrics.Handler(),
			Server:   settings.Server,
			Warnings: aiResult.Warnings,
			Close: func() {
				cancel()
				if err := fetchCache.Close(); err != nil {
					logger.Warn("closing fetch cache: %v", err)
				}
				if err := index.Close(); err != nil {
					logger.Warn("closing index: %v", err)
				}
				aiResult.Close()
			},
		}, nil
	}
}
