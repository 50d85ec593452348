// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewRepository is the repository and token input view.
	ViewRepository ViewType = iota
	// ViewChat is the question input and answer transcript.
	ViewChat
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewRepository:
		return "repository"
	case ViewChat:
		return "chat"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// SessionStarted carries the session created at start-up.
type SessionStarted struct {
	Session *domain.Session
	Err     error
}

// FetchRequested asks the app to fetch a repository.
type FetchRequested struct {
	Repository string
	Token      string
}

// RepositoryFetched carries the outcome of a fetch.
type RepositoryFetched struct {
	Report *domain.IngestReport
	Err    error
	// NeedsToken is true when a GitHub token could fix Err.
	NeedsToken bool
}

// AskRequested asks the app to answer a question.
type AskRequested struct {
	Question string
}

// AnswerReceived carries the outcome of a question.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// RefreshRequested asks the app to forget the loaded repository.
type RefreshRequested struct{}

// RefreshCompleted signals the session was reset.
type RefreshCompleted struct {
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
