// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateFetching State = "fetching"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar shows the loaded repository, warnings and keybinding hints.
type Bar struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	state  State

	message    string
	repository string
	files      int
	truncated  bool
	indexed    bool
	needsToken bool

	hints []key.Binding
	width int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		hints:  km.RepositoryHelp(),
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	inner := s.width - s.styles.StatusBar.GetHorizontalPadding()
	padding := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StateFetching:
		return s.styles.Muted.Render("Fetching repository...")
	case StateThinking:
		return s.styles.Muted.Render("Thinking...")
	case StateError:
		text := "Error"
		if s.message != "" {
			text = "Error: " + s.message
		}
		if s.needsToken {
			text += " (add a GitHub token)"
		}
		return s.styles.Error.Render(text)
	case StateReady:
	}

	if s.repository == "" {
		return s.styles.Muted.Render("No repository loaded")
	}
	parts := []string{s.styles.Normal.Render(fmt.Sprintf("%s · %d files", s.repository, s.files))}
	if s.truncated {
		parts = append(parts, s.styles.Warning.Render("truncated"))
	}
	if !s.indexed {
		parts = append(parts, s.styles.Warning.Render("no index"))
	}
	return strings.Join(parts, " ")
}

func (s *Bar) renderRight() string {
	hints := make([]string, 0, len(s.hints))
	for _, b := range s.hints {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetRepository records a completed fetch.
func (s *Bar) SetRepository(r *domain.IngestReport) {
	s.repository = r.Repository.String()
	s.files = r.FilesKept
	s.truncated = r.Truncated
	s.indexed = r.Indexed
	s.needsToken = false
	s.state = StateReady
	s.message = ""
}

// ClearRepository forgets the loaded repository.
func (s *Bar) ClearRepository() {
	s.repository = ""
	s.files = 0
	s.truncated = false
	s.indexed = false
}

// SetError shows an error. needsToken adds a token hint.
func (s *Bar) SetError(err error, needsToken bool) {
	s.state = StateError
	s.message = err.Error()
	s.needsToken = needsToken
}

// SetState sets the current state and clears any error.
func (s *Bar) SetState(state State) {
	s.state = state
	if state != StateError {
		s.message = ""
		s.needsToken = false
	}
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// Message returns the current error message.
func (s *Bar) Message() string {
	return s.message
}

// NeedsToken reports whether the last error asked for a token.
func (s *Bar) NeedsToken() bool {
	return s.needsToken
}

// Repository returns the loaded repository, or "".
func (s *Bar) Repository() string {
	return s.repository
}

// SetHints sets the keybindings shown on the right.
func (s *Bar) SetHints(bindings []key.Binding) {
	s.hints = bindings
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Width returns the current width.
func (s *Bar) Width() int {
	return s.width
}
