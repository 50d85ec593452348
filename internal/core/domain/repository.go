package domain

import (
	"fmt"
	"strings"
)

const githubURLPrefix = "https://github.com/"

// RepoRef identifies a GitHub repository.
type RepoRef struct {
	Owner string
	Name  string
}

// ParseRepoRef parses "owner/name", optionally given as a github.com URL.
// It performs no network access.
func ParseRepoRef(identifier string) (RepoRef, error) {
	s := strings.TrimSpace(identifier)
	s = strings.TrimPrefix(s, githubURLPrefix)
	s = strings.TrimPrefix(s, "http://github.com/")
	s = strings.Trim(s, "/")
	s = strings.TrimSuffix(s, ".git")

	owner, name, ok := strings.Cut(s, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoRef{}, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return RepoRef{Owner: owner, Name: name}, nil
}

// String returns "owner/name".
func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// URL returns the repository's web address.
func (r RepoRef) URL() string {
	return githubURLPrefix + r.String()
}

// IsZero reports whether the reference is unset.
func (r RepoRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}
