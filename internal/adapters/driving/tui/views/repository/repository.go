// Package repository provides the view where the user names a repository
// and optionally supplies a GitHub token.
package repository

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/styles"
)

// View holds the repository and token inputs.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	repo  *input.Field
	token *input.Field

	// focusToken is true when the token input has focus.
	focusToken bool
	fetching   bool
	err        string
	needsToken bool

	width  int
	height int
}

// NewView creates a new repository view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles: s,
		keymap: km,
		repo:   input.NewField(s, "Repository", "owner/name or https://github.com/owner/name"),
		token:  input.NewSecretField(s, "Token     ", "optional, for private repositories"),
		width:  80,
		height: 24,
	}
	v.repo.Focus()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.repo.Init()
}

// Update handles messages for the repository view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.RepositoryFetched:
		v.fetching = false
		if msg.Err != nil {
			v.SetError(msg.Err.Error(), msg.NeedsToken)
			return v, nil
		}
		v.err = ""
		v.needsToken = false
		return v, nil
	}

	return v.forward(msg)
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch {
	case keymap.Matches(msg.String(), v.keymap.NextField):
		v.toggleFocus()
		return v, nil
	case keymap.Matches(msg.String(), v.keymap.Submit):
		return v.submit()
	}
	return v.forward(msg)
}

func (v *View) forward(msg tea.Msg) (*View, tea.Cmd) {
	var cmd tea.Cmd
	if v.focusToken {
		v.token, cmd = v.token.Update(msg)
	} else {
		v.repo, cmd = v.repo.Update(msg)
	}
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	if v.fetching {
		return v, nil
	}
	repo := strings.TrimSpace(v.repo.Value())
	if repo == "" {
		v.SetError("enter a repository", false)
		return v, nil
	}

	v.fetching = true
	v.err = ""
	token := strings.TrimSpace(v.token.Value())
	return v, func() tea.Msg {
		return messages.FetchRequested{Repository: repo, Token: token}
	}
}

func (v *View) toggleFocus() {
	v.focusToken = !v.focusToken
	if v.focusToken {
		v.repo.Blur()
		v.token.Focus()
		return
	}
	v.token.Blur()
	v.repo.Focus()
}

// View renders the repository view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("repoqa"))
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Ask questions about a GitHub repository"))
	b.WriteString("\n\n")
	b.WriteString(v.repo.View())
	b.WriteString("\n")
	b.WriteString(v.token.View())
	b.WriteString("\n\n")

	switch {
	case v.fetching:
		b.WriteString(v.styles.Muted.Render("Fetching repository..."))
	case v.err != "":
		b.WriteString(v.styles.Error.Render(v.err))
		if v.needsToken {
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render("The repository may be private. Enter a token and press enter."))
		}
	}

	return lipgloss.NewStyle().Width(v.width).MaxHeight(max(v.height-1, 1)).Render(b.String())
}

// SetError shows an error below the inputs. needsToken moves focus to
// the token input.
func (v *View) SetError(message string, needsToken bool) {
	v.fetching = false
	v.err = message
	v.needsToken = needsToken
	if needsToken && !v.focusToken {
		v.toggleFocus()
	}
}

// Reset clears both inputs and focuses the repository input.
func (v *View) Reset() {
	v.repo.Reset()
	v.token.Reset()
	v.err = ""
	v.needsToken = false
	v.fetching = false
	if v.focusToken {
		v.toggleFocus()
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.repo.SetWidth(width)
	v.token.SetWidth(width)
}

// SetRepository prefills the repository input.
func (v *View) SetRepository(repo string) {
	v.repo.SetValue(repo)
}

// Repository returns the repository input value.
func (v *View) Repository() string {
	return v.repo.Value()
}

// Token returns the token input value.
func (v *View) Token() string {
	return v.token.Value()
}

// TokenFocused reports whether the token input has focus.
func (v *View) TokenFocused() bool {
	return v.focusToken
}

// Fetching reports whether a fetch is in flight.
func (v *View) Fetching() bool {
	return v.fetching
}

// Err returns the current error message.
func (v *View) Err() string {
	return v.err
}
