package driven

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// DocumentChunker turns a repository's files into retrieval segments.
// Files that cannot be segmented are skipped, never fatal.
type DocumentChunker interface {
	// Name returns the strategy identifier (e.g. "recursive").
	Name() string

	// Split returns segments ordered by source path, then position.
	Split(ctx context.Context, files domain.FileMap) ([]domain.Segment, error)
}
