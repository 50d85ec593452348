package driven

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// TokenProvider supplies the fallback GitHub credential used when a
// session has none of its own.
type TokenProvider interface {
	// GetToken returns the token, or "" for unauthenticated access.
	GetToken(ctx context.Context) (string, error)

	// AuthMethod returns the authentication method.
	AuthMethod() domain.AuthMethod

	// IsAuthenticated returns true if a token is available.
	IsAuthenticated() bool
}
