// Package chat provides the question input and answer transcript view.
package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repoqa/internal/core/domain"
)

type lineKind int

const (
	kindQuestion lineKind = iota
	kindAnswer
	kindSource
	kindError
	kindBlank
)

type line struct {
	kind lineKind
	text string
}

// Entry is one question and its outcome.
type Entry struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// View shows the transcript above a question input.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	input  *input.Field

	repository string
	entries    []Entry
	lines      []line

	scrollOffset int
	thinking     bool
	width        int
	height       int
}

// NewView creates a new chat view.
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
		input:  input.NewField(s, "Ask", "a question about the repository"),
		width:  80,
		height: 24,
	}
	v.input.Focus()
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	case messages.AnswerReceived:
		v.AddAnswer(msg.Question, msg.Answer, msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Submit):
		return v.submit()
	case keymap.Matches(key, v.keymap.ScrollUp):
		v.scrollOffset = max(v.scrollOffset-v.visibleLines(), 0)
		return v, nil
	case keymap.Matches(key, v.keymap.ScrollDown):
		v.scrollOffset = min(v.scrollOffset+v.visibleLines(), v.maxScrollOffset())
		return v, nil
	case key == "up":
		v.scrollOffset = max(v.scrollOffset-1, 0)
		return v, nil
	case key == "down":
		v.scrollOffset = min(v.scrollOffset+1, v.maxScrollOffset())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) submit() (*View, tea.Cmd) {
	question := strings.TrimSpace(v.input.Value())
	if question == "" || v.thinking {
		return v, nil
	}
	v.thinking = true
	v.input.Reset()
	return v, func() tea.Msg {
		return messages.AskRequested{Question: question}
	}
}

// AddAnswer appends an entry and scrolls to the bottom.
func (v *View) AddAnswer(question string, answer *domain.Answer, err error) {
	v.thinking = false
	v.entries = append(v.entries, Entry{Question: question, Answer: answer, Err: err})
	v.wrapTranscript()
	v.scrollOffset = v.maxScrollOffset()
}

// wrapTranscript rebuilds the display lines for the current width.
func (v *View) wrapTranscript() {
	width := max(v.width-4, 20)
	v.lines = v.lines[:0]

	add := func(kind lineKind, text string) {
		for _, raw := range strings.Split(text, "\n") {
			for _, w := range wrap(raw, width) {
				v.lines = append(v.lines, line{kind: kind, text: w})
			}
		}
	}

	for i, e := range v.entries {
		if i > 0 {
			v.lines = append(v.lines, line{kind: kindBlank})
		}
		add(kindQuestion, "> "+e.Question)
		switch {
		case e.Err != nil:
			add(kindError, "Error: "+e.Err.Error())
		case e.Answer != nil:
			add(kindAnswer, e.Answer.Text)
			if len(e.Answer.Sources) > 0 && !e.Answer.Degraded {
				add(kindSource, fmt.Sprintf("Sources (%s): %s", e.Answer.Route, strings.Join(e.Answer.Sources, ", ")))
			}
		}
	}
}

// wrap splits s into rune-safe chunks of at most width runes.
func wrap(s string, width int) []string {
	runes := []rune(s)
	if len(runes) <= width {
		return []string{s}
	}
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// visibleLines returns the number of transcript lines that fit.
func (v *View) visibleLines() int {
	// title, input, status bar and padding
	return max(v.height-7, 1)
}

func (v *View) maxScrollOffset() int {
	return max(len(v.lines)-v.visibleLines(), 0)
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	title := "Chat"
	if v.repository != "" {
		title = v.repository
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 1), 60)))
	b.WriteString("\n")

	visible := v.visibleLines()
	if len(v.lines) == 0 {
		b.WriteString(v.styles.Muted.Render("Ask anything about the repository."))
		b.WriteString("\n")
		visible--
	}
	end := min(v.scrollOffset+visible, len(v.lines))
	for i := v.scrollOffset; i < end; i++ {
		b.WriteString(v.renderLine(v.lines[i]))
		b.WriteString("\n")
	}
	for range visible - max(end-v.scrollOffset, 0) {
		b.WriteString("\n")
	}

	if v.thinking {
		b.WriteString(v.styles.Muted.Render("Thinking..."))
	}
	b.WriteString("\n")
	b.WriteString(v.input.View())
	return b.String()
}

func (v *View) renderLine(l line) string {
	switch l.kind {
	case kindQuestion:
		return v.styles.Question.Render(l.text)
	case kindAnswer:
		return v.styles.Answer.Render(l.text)
	case kindSource:
		return v.styles.Source.Render(l.text)
	case kindError:
		return v.styles.Error.Render(l.text)
	case kindBlank:
	}
	return ""
}

// SetRepository sets the title shown above the transcript.
func (v *View) SetRepository(repo string) {
	v.repository = repo
}

// Reset clears the transcript and the input.
func (v *View) Reset() {
	v.entries = nil
	v.lines = nil
	v.scrollOffset = 0
	v.thinking = false
	v.input.Reset()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.SetWidth(width)
	v.wrapTranscript()
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// Entries returns the transcript.
func (v *View) Entries() []Entry {
	return v.entries
}

// Thinking reports whether a question is awaiting its answer.
func (v *View) Thinking() bool {
	return v.thinking
}

// ScrollOffset returns the first visible transcript line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Input returns the current question text.
func (v *View) Input() string {
	return v.input.Value()
}
