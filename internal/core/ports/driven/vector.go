package driven

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// VectorIndex stores segment embeddings in named collections (one per
// session) and answers diversity-aware similarity queries.
type VectorIndex interface {
	// Add inserts entries into a collection, creating it if needed.
	Add(ctx context.Context, collection string, entries []VectorEntry) error

	// Search returns up to k segments by maximal marginal relevance over the
	// fetchK nearest candidates. lambda weights relevance (1.0) against
	// diversity (0.0).
	Search(ctx context.Context, collection string, query []float32, opts SearchOptions) ([]VectorHit, error)

	// Count returns the number of entries in a collection.
	Count(collection string) int

	// Drop removes a collection. Dropping a missing collection is not an error.
	Drop(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}

// VectorEntry pairs a segment with its embedding.
type VectorEntry struct {
	Segment   domain.Segment
	Embedding []float32
}

// SearchOptions configures a diversity-aware search.
type SearchOptions struct {
	K      int
	FetchK int
	Lambda float64
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	Segment domain.Segment

	// Similarity is the cosine similarity to the query.
	Similarity float64
}
