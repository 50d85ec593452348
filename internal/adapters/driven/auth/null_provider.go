package auth

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider is used when no default GitHub token is configured.
// Public repositories still work; private ones report a credential prompt.
type NullTokenProvider struct{}

// NewNullTokenProvider creates a token provider for unauthenticated access.
func NewNullTokenProvider() *NullTokenProvider {
	return &NullTokenProvider{}
}

// GetToken returns an empty string.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", nil
}

// AuthMethod returns AuthMethodNone.
func (p *NullTokenProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodNone
}

// IsAuthenticated always returns false.
func (p *NullTokenProvider) IsAuthenticated() bool {
	return false
}
