package mcp

import (
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Sessions creates the server-lifetime session.
	Sessions driving.SessionService

	// Ingest fetches and indexes repositories.
	Ingest driving.IngestService

	// Question answers questions about the loaded repository.
	Question driving.QuestionService

	// Username owns the session. Defaults to "mcp".
	Username string

	// Credential is the initial GitHub token for the session. Optional.
	Credential string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	switch {
	case p.Sessions == nil:
		return ErrMissingSessionService
	case p.Ingest == nil:
		return ErrMissingIngestService
	case p.Question == nil:
		return ErrMissingQuestionService
	}
	return nil
}
