package driving

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// IngestService loads repositories into sessions.
type IngestService interface {
	// Fetch retrieves, truncates, segments and indexes a repository for the
	// session. An empty credential falls back to the session's credential,
	// then to the configured default token.
	Fetch(ctx context.Context, session *domain.Session, identifier, credential string) (*domain.IngestReport, error)

	// Refresh drops the session's cached files, index and segments.
	Refresh(ctx context.Context, session *domain.Session) error

	// ClearCache empties the fetch cache for every repository.
	ClearCache(ctx context.Context) error
}
