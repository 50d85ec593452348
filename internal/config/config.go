// Package config assembles domain.AppSettings from three layers, each
// overriding the one before:
//
//  1. built-in defaults (domain.DefaultAppSettings)
//  2. the TOML config store (~/.repoqa/config.toml)
//  3. the environment, after loading a .env file if present
//
// API keys are normally supplied only through the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Env holds values read from the process environment. Unset variables
// leave the lower layers untouched.
type Env struct {
	GitHubToken     string `env:"GITHUB_TOKEN"`
	GoogleAPIKey    string `env:"GOOGLE_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	LLMProvider       string `env:"REPOQA_LLM_PROVIDER"`
	LLMModel          string `env:"REPOQA_LLM_MODEL"`
	EmbeddingProvider string `env:"REPOQA_EMBEDDING_PROVIDER"`
	EmbeddingModel    string `env:"REPOQA_EMBEDDING_MODEL"`
	OllamaURL         string `env:"OLLAMA_URL"`

	Cache         string `env:"REPOQA_CACHE"`
	CachePath     string `env:"REPOQA_CACHE_PATH"`
	RedisAddr     string `env:"REPOQA_REDIS_ADDR"`
	RedisPassword string `env:"REPOQA_REDIS_PASSWORD"`
	RedisDB       *int   `env:"REPOQA_REDIS_DB"`

	JWTSecret string `env:"REPOQA_JWT_SECRET"`
	Listen    string `env:"REPOQA_LISTEN"`

	MaxFiles        *int     `env:"REPOQA_MAX_FILES"`
	Truncation      string   `env:"REPOQA_TRUNCATION"`
	RetrievalK      *int     `env:"REPOQA_RETRIEVAL_K"`
	RetrievalLambda *float64 `env:"REPOQA_RETRIEVAL_LAMBDA"`
	Chunker         string   `env:"REPOQA_CHUNKER"`
}

// Settings is the loaded configuration plus the default GitHub token,
// which is kept apart so it is never written back to the config store.
type Settings struct {
	domain.AppSettings
	GitHubToken string
}

// Loader reads settings. The zero value reads ".env" from the working
// directory and the real environment.
type Loader struct {
	// EnvFiles are loaded with godotenv before parsing. Missing files are
	// ignored. Defaults to ".env".
	EnvFiles []string

	// Environ overrides os.Environ for tests.
	Environ map[string]string
}

// Load reads settings using the default loader.
func Load(store driven.ConfigStore) (*Settings, error) {
	return Loader{}.Load(store)
}

// Load builds settings from defaults, store and environment, then validates.
func (l Loader) Load(store driven.ConfigStore) (*Settings, error) {
	settings := &Settings{AppSettings: domain.DefaultAppSettings()}

	if store != nil {
		applyStore(&settings.AppSettings, store)
	}

	e, err := l.parseEnv()
	if err != nil {
		return nil, err
	}
	applyEnv(settings, e)

	if err := Validate(&settings.AppSettings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (l Loader) parseEnv() (Env, error) {
	files := l.EnvFiles
	if files == nil {
		files = []string{".env"}
	}
	for _, f := range files {
		// godotenv never overrides variables already set.
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Ignoring %s: %v", f, err)
		}
	}

	var e Env
	opts := env.Options{}
	if l.Environ != nil {
		opts.Environment = l.Environ
	}
	if err := env.ParseWithOptions(&e, opts); err != nil {
		return Env{}, fmt.Errorf("%w: parsing environment: %w", domain.ErrInvalidInput, err)
	}
	return e, nil
}

func applyStore(s *domain.AppSettings, store driven.ConfigStore) {
	setString(&s.GitHub.BaseURL, store.GetString(KeyGitHubBaseURL))
	if v := store.GetFloat(KeyGitHubRPS); v > 0 {
		s.GitHub.RequestsPerSecond = v
	}
	setInt(&s.GitHub.Concurrency, store.GetInt(KeyGitHubConcurrency))

	applyProviderKeys(&s.LLM, store, KeyLLMProvider, KeyLLMModel, KeyLLMBaseURL, KeyLLMAPIKey, domain.DefaultLLMModels())
	applyProviderKeys(&s.Embedding, store, KeyEmbedProvider, KeyEmbedModel, KeyEmbedBaseURL, KeyEmbedAPIKey, domain.DefaultEmbeddingModels())

	setInt(&s.Ingest.MaxFiles, store.GetInt(KeyMaxFiles))
	if v := store.GetString(KeyTruncation); v != "" {
		s.Ingest.Truncation = domain.TruncationPolicy(v)
	}

	setString(&s.Chunker.Strategy, store.GetString(KeyChunker))
	s.Chunker.Configs = chunkerConfigs(store)

	setInt(&s.Retrieval.K, store.GetInt(KeyRetrievalK))
	if _, ok := store.Get(KeyRetrievalLambda); ok {
		s.Retrieval.Lambda = store.GetFloat(KeyRetrievalLambda)
	}
	setInt(&s.Retrieval.MaxContextChars, store.GetInt(KeyMaxContextChars))

	if v := store.GetString(KeyCacheBackend); v != "" {
		s.Cache.Backend = domain.CacheBackend(v)
	}
	setString(&s.Cache.Path, store.GetString(KeyCachePath))
	setString(&s.Cache.RedisAddr, store.GetString(KeyCacheRedisAddr))
	setInt(&s.Cache.RedisDB, store.GetInt(KeyCacheRedisDB))
	setDuration(&s.Cache.TTL, store.GetString(KeyCacheTTL), KeyCacheTTL)

	setString(&s.Server.Listen, store.GetString(KeyServerListen))
	setString(&s.Server.JWTSecret, store.GetString(KeyServerJWTSecret))
	setDuration(&s.Server.SessionTTL, store.GetString(KeyServerSessionTTL), KeyServerSessionTTL)
}

// applyProviderKeys switches the model to the provider default when the
// provider changes but no model is configured.
func applyProviderKeys(p *domain.ProviderSettings, store driven.ConfigStore,
	providerKey, modelKey, baseURLKey, apiKeyKey string, defaults map[domain.AIProvider]string) {
	if v := store.GetString(providerKey); v != "" {
		p.Provider = domain.AIProvider(v)
		p.Model = defaults[p.Provider]
	}
	setString(&p.Model, store.GetString(modelKey))
	setString(&p.BaseURL, store.GetString(baseURLKey))
	setString(&p.APIKey, store.GetString(apiKeyKey))
}

// chunkerConfigs gathers "chunker.<strategy>.<option>" keys.
func chunkerConfigs(store driven.ConfigStore) map[string]map[string]any {
	var configs map[string]map[string]any
	for _, key := range store.Keys() {
		rest, ok := strings.CutPrefix(key, "chunker.")
		if !ok {
			continue
		}
		strategy, option, ok := strings.Cut(rest, ".")
		if !ok {
			continue
		}
		if configs == nil {
			configs = make(map[string]map[string]any)
		}
		if configs[strategy] == nil {
			configs[strategy] = make(map[string]any)
		}
		configs[strategy][option] = store.GetInt(key)
	}
	return configs
}

func applyEnv(s *Settings, e Env) {
	s.GitHubToken = strings.TrimSpace(e.GitHubToken)

	if e.LLMProvider != "" {
		s.LLM.Provider = domain.AIProvider(e.LLMProvider)
		s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
	}
	setString(&s.LLM.Model, e.LLMModel)
	if e.EmbeddingProvider != "" {
		s.Embedding.Provider = domain.AIProvider(e.EmbeddingProvider)
		s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
	}
	setString(&s.Embedding.Model, e.EmbeddingModel)

	applyProviderEnv(&s.LLM, e)
	applyProviderEnv(&s.Embedding, e)

	if e.Cache != "" {
		s.Cache.Backend = domain.CacheBackend(e.Cache)
	}
	setString(&s.Cache.Path, e.CachePath)
	setString(&s.Cache.RedisAddr, e.RedisAddr)
	setString(&s.Cache.RedisPassword, e.RedisPassword)
	if e.RedisDB != nil {
		s.Cache.RedisDB = *e.RedisDB
	}

	setString(&s.Server.JWTSecret, e.JWTSecret)
	setString(&s.Server.Listen, e.Listen)

	if e.MaxFiles != nil {
		s.Ingest.MaxFiles = *e.MaxFiles
	}
	if e.Truncation != "" {
		s.Ingest.Truncation = domain.TruncationPolicy(e.Truncation)
	}
	if e.RetrievalK != nil {
		s.Retrieval.K = *e.RetrievalK
	}
	if e.RetrievalLambda != nil {
		s.Retrieval.Lambda = *e.RetrievalLambda
	}
	setString(&s.Chunker.Strategy, e.Chunker)
}

// applyProviderEnv fills the API key and Ollama endpoint for the selected
// provider. Keys already in the config store are kept unless the
// environment has one.
func applyProviderEnv(p *domain.ProviderSettings, e Env) {
	switch p.Provider {
	case domain.AIProviderGemini:
		setString(&p.APIKey, e.GoogleAPIKey)
	case domain.AIProviderOpenAI:
		setString(&p.APIKey, e.OpenAIAPIKey)
	case domain.AIProviderAnthropic:
		setString(&p.APIKey, e.AnthropicAPIKey)
	case domain.AIProviderOllama:
		setString(&p.BaseURL, e.OllamaURL)
	}
}

// Validate rejects settings the services cannot run with.
func Validate(s *domain.AppSettings) error {
	var errs []error
	if !s.LLM.Provider.IsValid() {
		errs = append(errs, fmt.Errorf("unknown llm provider %q", s.LLM.Provider))
	}
	if !s.Embedding.Provider.IsValid() || s.Embedding.Provider == domain.AIProviderAnthropic {
		errs = append(errs, fmt.Errorf("unsupported embedding provider %q", s.Embedding.Provider))
	}
	if s.Ingest.MaxFiles <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyMaxFiles, s.Ingest.MaxFiles))
	}
	if !s.Ingest.Truncation.IsValid() {
		errs = append(errs, fmt.Errorf("unknown truncation policy %q", s.Ingest.Truncation))
	}
	if s.Retrieval.K <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", KeyRetrievalK, s.Retrieval.K))
	}
	if s.Retrieval.Lambda < 0 || s.Retrieval.Lambda > 1 {
		errs = append(errs, fmt.Errorf("%s must be within [0,1], got %g", KeyRetrievalLambda, s.Retrieval.Lambda))
	}
	if !s.Cache.Backend.IsValid() {
		errs = append(errs, fmt.Errorf("unknown cache backend %q", s.Cache.Backend))
	}
	if s.GitHub.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("%s must be at least 1", KeyGitHubConcurrency))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errors.Join(errs...))
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, key string) {
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn("Ignoring %s=%q: %v", key, v, err)
		return
	}
	*dst = d
}
