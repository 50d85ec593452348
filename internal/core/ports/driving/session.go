package driving

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// SessionService manages user sessions.
type SessionService interface {
	// Start creates a session for a user with an optional GitHub token.
	Start(ctx context.Context, username, credential string) (*domain.Session, error)

	// Get returns a live session.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Snapshot returns a copy of a live session, read under its lock.
	Snapshot(ctx context.Context, id string) (domain.Session, error)

	// SetCredential replaces the session's GitHub token.
	SetCredential(ctx context.Context, id, credential string) (*domain.Session, error)

	// End drops the session and its index.
	End(ctx context.Context, id string) error
}
