package config

// Config store keys.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyGitHubToken       = "github.token"
	KeyGitHubBaseURL     = "github.base_url"
	KeyGitHubRPS         = "github.requests_per_second"
	KeyGitHubConcurrency = "github.concurrency"

	KeyLLMProvider = "llm.provider"
	KeyLLMModel    = "llm.model"
	KeyLLMBaseURL  = "llm.base_url"
	KeyLLMAPIKey   = "llm.api_key"

	KeyEmbedProvider = "embedding.provider"
	KeyEmbedModel    = "embedding.model"
	KeyEmbedBaseURL  = "embedding.base_url"
	KeyEmbedAPIKey   = "embedding.api_key"

	KeyMaxFiles   = "ingest.max_files"
	KeyTruncation = "ingest.truncation"

	KeyChunker = "chunker.strategy"

	KeyRetrievalK       = "retrieval.k"
	KeyRetrievalLambda  = "retrieval.lambda"
	KeyMaxContextChars  = "retrieval.max_context_chars"
	KeyCacheBackend     = "cache.backend"
	KeyCachePath        = "cache.path"
	KeyCacheRedisAddr   = "cache.redis_addr"
	KeyCacheRedisDB     = "cache.redis_db"
	KeyCacheTTL         = "cache.ttl"
	KeyServerListen     = "server.listen"
	KeyServerJWTSecret  = "server.jwt_secret"
	KeyServerSessionTTL = "server.session_ttl"
)

// KnownKey describes a setting for `repoqa config list`.
type KnownKey struct {
	Key         string
	Description string
	Env         string
}

// KnownKeys lists every setting read from the config store, in display order.
func KnownKeys() []KnownKey {
	return []KnownKey{
		{KeyGitHubToken, "saved GitHub token (set with config set-token)", "GITHUB_TOKEN"},
		{KeyGitHubBaseURL, "GitHub API base URL (Enterprise)", ""},
		{KeyGitHubRPS, "client-side GitHub request rate, 0 = unlimited", ""},
		{KeyGitHubConcurrency, "parallel sibling fetches during the tree walk", ""},
		{KeyLLMProvider, "gemini | openai | anthropic | ollama", "REPOQA_LLM_PROVIDER"},
		{KeyLLMModel, "LLM model name", "REPOQA_LLM_MODEL"},
		{KeyLLMBaseURL, "LLM endpoint override", ""},
		{KeyLLMAPIKey, "LLM API key (prefer the provider env var)", ""},
		{KeyEmbedProvider, "gemini | openai | ollama", "REPOQA_EMBEDDING_PROVIDER"},
		{KeyEmbedModel, "embedding model name", "REPOQA_EMBEDDING_MODEL"},
		{KeyEmbedBaseURL, "embedding endpoint override", ""},
		{KeyEmbedAPIKey, "embedding API key (prefer the provider env var)", ""},
		{KeyMaxFiles, "maximum files indexed per repository", "REPOQA_MAX_FILES"},
		{KeyTruncation, "path | smallest", "REPOQA_TRUNCATION"},
		{KeyChunker, "recursive | fixed", "REPOQA_CHUNKER"},
		{KeyRetrievalK, "segments retrieved per question", "REPOQA_RETRIEVAL_K"},
		{KeyRetrievalLambda, "MMR relevance weight in [0,1]", "REPOQA_RETRIEVAL_LAMBDA"},
		{KeyMaxContextChars, "answer context budget in characters", ""},
		{KeyCacheBackend, "none | memory | sqlite | redis", "REPOQA_CACHE"},
		{KeyCachePath, "sqlite cache directory", "REPOQA_CACHE_PATH"},
		{KeyCacheRedisAddr, "redis host:port", "REPOQA_REDIS_ADDR"},
		{KeyCacheRedisDB, "redis database number", "REPOQA_REDIS_DB"},
		{KeyCacheTTL, "redis entry lifetime, e.g. 24h; empty = forever", ""},
		{KeyServerListen, "HTTP listen address", "REPOQA_LISTEN"},
		{KeyServerJWTSecret, "HMAC secret for login tokens", "REPOQA_JWT_SECRET"},
		{KeyServerSessionTTL, "idle session lifetime, e.g. 24h", ""},
	}
}

// IsSecret reports whether a key holds a credential that should be masked
// when displayed.
func IsSecret(key string) bool {
	switch key {
	case KeyGitHubToken, KeyLLMAPIKey, KeyEmbedAPIKey, KeyServerJWTSecret:
		return true
	default:
		return false
	}
}
