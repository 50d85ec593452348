package driven

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// SessionStore persists sessions.
type SessionStore interface {
	// Save creates or replaces a session.
	Save(ctx context.Context, session *domain.Session) error

	// Get returns a session or domain.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns all live sessions.
	List(ctx context.Context) ([]*domain.Session, error)
}
