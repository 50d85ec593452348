// Package tui provides an interactive terminal user interface for repoqa.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
type Ports struct {
	// Sessions creates the session the TUI works in.
	Sessions driving.SessionService

	// Ingest fetches and indexes repositories.
	Ingest driving.IngestService

	// Question answers questions about the fetched repository.
	Question driving.QuestionService

	// Username owns the session. Defaults to "tui".
	Username string

	// Credential is the GitHub token the session starts with. Optional.
	Credential string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	sessions driving.SessionService,
	ingest driving.IngestService,
	question driving.QuestionService,
) *Ports {
	return &Ports{
		Sessions: sessions,
		Ingest:   ingest,
		Question: question,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Sessions == nil {
		return ErrMissingSessionService
	}
	if p.Ingest == nil {
		return ErrMissingIngestService
	}
	if p.Question == nil {
		return ErrMissingQuestionService
	}
	return nil
}
