package driven

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// ContentSource fetches the decoded text files of a repository.
type ContentSource interface {
	// Fetch walks the repository tree. An empty credential means
	// unauthenticated access. Failures are *domain.FetchError values.
	Fetch(ctx context.Context, ref domain.RepoRef, credential string) (domain.FileMap, error)
}

// FetchCache keeps fetched file maps between requests. It carries no
// freshness contract: entries leave only through Invalidate or Clear.
type FetchCache interface {
	// Get returns the cached files for a key.
	Get(ctx context.Context, key string) (domain.FileMap, bool, error)

	// Put stores files under a key.
	Put(ctx context.Context, key string, files domain.FileMap) error

	// Invalidate removes one key.
	Invalidate(ctx context.Context, key string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error

	// Close releases resources.
	Close() error
}
