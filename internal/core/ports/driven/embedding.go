package driven

import "context"

// EmbeddingService turns segment text and questions into vectors for the
// VectorIndex. Failures wrap domain.ErrEmbeddingUnavailable.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector size, or 0 if unknown.
	Dimensions() int

	ModelName() string

	// Ping checks the provider is reachable without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
