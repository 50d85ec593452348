package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/repoqa/internal/config"
	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// ConfigKeyGitHubToken is the config store key holding a saved token.
const ConfigKeyGitHubToken = config.KeyGitHubToken

// Ensure the PAT providers implement the TokenProvider interface.
var (
	_ driven.TokenProvider = (*PATProvider)(nil)
	_ driven.TokenProvider = (*ConfigPATProvider)(nil)
)

// PATProvider supplies a fixed personal access token, typically from
// GITHUB_TOKEN.
type PATProvider struct {
	token string
}

// NewPATProvider creates a provider for a static token.
func NewPATProvider(token string) *PATProvider {
	return &PATProvider{token: strings.TrimSpace(token)}
}

// GetToken returns the token.
func (p *PATProvider) GetToken(_ context.Context) (string, error) {
	return p.token, nil
}

// AuthMethod returns AuthMethodToken.
func (p *PATProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodToken
}

// IsAuthenticated returns true if the token is non-empty.
func (p *PATProvider) IsAuthenticated() bool {
	return p.token != ""
}

// ConfigPATProvider reads the token from the config store on every call,
// so `repoqa config set-token` takes effect without a restart.
type ConfigPATProvider struct {
	store driven.ConfigStore
	key   string
}

// NewConfigPATProvider creates a provider backed by the config store.
func NewConfigPATProvider(store driven.ConfigStore) *ConfigPATProvider {
	return &ConfigPATProvider{store: store, key: ConfigKeyGitHubToken}
}

// GetToken returns the stored token.
func (p *ConfigPATProvider) GetToken(_ context.Context) (string, error) {
	token := strings.TrimSpace(p.store.GetString(p.key))
	if token == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrConfigNotFound, p.key)
	}
	return token, nil
}

// AuthMethod returns AuthMethodToken.
func (p *ConfigPATProvider) AuthMethod() domain.AuthMethod {
	return domain.AuthMethodToken
}

// IsAuthenticated returns true if a token is stored.
func (p *ConfigPATProvider) IsAuthenticated() bool {
	return strings.TrimSpace(p.store.GetString(p.key)) != ""
}
