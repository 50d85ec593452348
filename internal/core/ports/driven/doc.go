// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ContentSource: Fetches a repository's text files
//   - DocumentChunker: Splits files into segments
//   - EmbeddingService: Generates vector embeddings
//   - VectorIndex: Per-session vector storage with diversity-aware search
//   - QueryRouter: Labels a question with a route (LLM-backed)
//   - AnswerComposer: Produces an answer from segments (LLM-backed)
//   - SessionStore: Session persistence
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FetchCache: Skips repeat fetches of the same repository
//   - TokenProvider: Fallback GitHub credential when a session has none
//   - PromptStore: User-customised prompt templates
//   - Metrics: Service counters (NopMetrics when unset)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
