// Package auth provides the fallback GitHub credential used when a session
// carries none of its own.
package auth

import (
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// NewTokenProvider picks the default credential source. An explicit token
// (from the environment) wins over one saved in the config store; with
// neither, requests go unauthenticated.
func NewTokenProvider(token string, store driven.ConfigStore) driven.TokenProvider {
	if p := NewPATProvider(token); p.IsAuthenticated() {
		return p
	}
	if store != nil {
		if p := NewConfigPATProvider(store); p.IsAuthenticated() {
			return p
		}
	}
	return NewNullTokenProvider()
}
