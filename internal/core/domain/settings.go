package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is Google's Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API (LLM only).
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// ProviderSettings holds one AI provider configuration.
type ProviderSettings struct {
	Provider AIProvider
	Model    string
	// BaseURL is the API endpoint (Ollama, or a proxy).
	BaseURL string
	APIKey  string
}

// IsConfigured returns true if the provider is usable.
func (s ProviderSettings) IsConfigured() bool {
	if !s.Provider.IsValid() {
		return false
	}
	if s.Provider.RequiresAPIKey() && s.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings = ProviderSettings

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings = ProviderSettings

// GitHubSettings configures the content source.
type GitHubSettings struct {
	// Token is the fallback credential used when a session has none.
	Token   string
	BaseURL string
	// RequestsPerSecond throttles API calls; 0 disables throttling.
	RequestsPerSecond float64
	// Concurrency bounds parallel sibling fetches; 1 walks sequentially.
	Concurrency int
}

// IngestSettings controls how much of a repository is indexed.
type IngestSettings struct {
	MaxFiles   int
	Truncation TruncationPolicy
}

// ChunkerSettings selects and configures the segmenting strategy.
type ChunkerSettings struct {
	Strategy string
	// Configs holds per-strategy options keyed by strategy name.
	Configs map[string]map[string]any
}

// Config returns options for the selected strategy, or nil.
func (c ChunkerSettings) Config() map[string]any {
	if c.Configs == nil {
		return nil
	}
	return c.Configs[c.Strategy]
}

// RetrievalSettings configures diversity-aware search.
type RetrievalSettings struct {
	K      int
	Lambda float64
	// MaxContextChars caps the context handed to the answer composer.
	MaxContextChars int
}

// CacheBackend names a fetch cache implementation.
type CacheBackend string

// Available cache backends.
const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
	CacheRedis  CacheBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheNone, CacheMemory, CacheSQLite, CacheRedis:
		return true
	default:
		return false
	}
}

// CacheSettings configures the fetch cache.
type CacheSettings struct {
	Backend       CacheBackend
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	Listen     string
	JWTSecret  string
	SessionTTL time.Duration
}

// AppSettings holds all application settings.
type AppSettings struct {
	GitHub    GitHubSettings
	LLM       LLMSettings
	Embedding EmbeddingSettings
	Ingest    IngestSettings
	Chunker   ChunkerSettings
	Retrieval RetrievalSettings
	Cache     CacheSettings
	Server    ServerSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// API keys are left empty; they come from the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		GitHub: GitHubSettings{
			Concurrency: 1,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    DefaultEmbeddingModels()[AIProviderGemini],
		},
		Ingest: IngestSettings{
			MaxFiles:   100,
			Truncation: TruncateByPath,
		},
		Chunker: ChunkerSettings{
			Strategy: "recursive",
		},
		Retrieval: RetrievalSettings{
			K:               50,
			Lambda:          0.5,
			MaxContextChars: 400000,
		},
		Cache: CacheSettings{
			Backend: CacheMemory,
		},
		Server: ServerSettings{
			Listen:     ":8080",
			SessionTTL: 24 * time.Hour,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "embedding-001",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-2.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}
