package web

import (
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FetchErrorResponse is the body of a failed repository fetch.
type FetchErrorResponse struct {
	Error      string `json:"error"`
	NeedsToken bool   `json:"needs_token"`
}

// LoginRequest starts a session.
type LoginRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LoginResponse carries the signed session token.
type LoginResponse struct {
	Token   string          `json:"token"`
	Session SessionResponse `json:"session"`
}

// SessionResponse summarises a session. The credential is never returned.
type SessionResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	HasToken      bool      `json:"has_token"`
	Repository    string    `json:"repository,omitempty"`
	RepositoryURL string    `json:"repository_url,omitempty"`
	Files         int       `json:"files"`
	Segments      int       `json:"segments"`
	Truncated     bool      `json:"truncated"`
	Indexed       bool      `json:"indexed"`
	NeedsToken    bool      `json:"needs_token"`
	CreatedAt     time.Time `json:"created_at"`
}

// RepositoryRequest fetches a repository into the session.
type RepositoryRequest struct {
	Repository string `json:"repository"`
	Token      string `json:"token"`
}

// RepositoryResponse reports a completed fetch.
type RepositoryResponse struct {
	Repository string `json:"repository"`
	Fetched    int    `json:"fetched"`
	Files      int    `json:"files"`
	Truncated  bool   `json:"truncated"`
	Segments   int    `json:"segments"`
	Indexed    bool   `json:"indexed"`
	FromCache  bool   `json:"from_cache"`
}

// AskRequest asks a question about the session's repository.
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse is a composed answer.
type AskResponse struct {
	Answer   string   `json:"answer"`
	Route    string   `json:"route"`
	Sources  []string `json:"sources"`
	Degraded bool     `json:"degraded"`
}

func summarize(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:         s.ID,
		Username:   s.Username,
		HasToken:   s.Credential != "",
		Truncated:  s.Truncated,
		Indexed:    s.Indexed,
		NeedsToken: s.CredentialRequired,
		CreatedAt:  s.CreatedAt,
	}
	if s.HasRepository() {
		resp.Repository = s.Repository.String()
		resp.RepositoryURL = s.Repository.URL()
		resp.Files = s.FileCount
		resp.Segments = len(s.Segments)
	}
	return resp
}
