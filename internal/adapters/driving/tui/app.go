package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/views/repository"
	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/logger"
)

const defaultUsername = "tui"

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	repositoryView *repository.View
	chatView       *chat.View
	statusbar      *status.Bar

	// session is owned by the command goroutines while busy is true.
	// Update only reads the pointer.
	session *domain.Session
	busy    bool

	currentView messages.ViewType
	// previousView is restored when help is closed.
	previousView messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w: %w", ErrInvalidPorts, err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		repositoryView: repository.NewView(s, km),
		chatView:       chat.NewView(s, km),
		statusbar:      status.NewBar(s, km),
		currentView:    messages.ViewRepository,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithRepository prefills the repository input.
func (a *App) WithRepository(repo string) *App {
	a.repositoryView.SetRepository(repo)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("repoqa"),
		a.repositoryView.Init(),
		a.startSession(),
	)
}

func (a *App) startSession() tea.Cmd {
	username := a.ports.Username
	if username == "" {
		username = defaultUsername
	}
	ctx := a.ctx
	sessions := a.ports.Sessions
	credential := a.ports.Credential
	return func() tea.Msg {
		session, err := sessions.Start(ctx, username, credential)
		return messages.SessionStarted{Session: session, Err: err}
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SessionStarted:
		if msg.Err != nil {
			a.setError(msg.Err, false)
			return a, nil
		}
		a.session = msg.Session
		logger.Debug("tui session %s started", msg.Session.ID)
		return a, nil

	case messages.FetchRequested:
		return a, a.fetch(msg)

	case messages.RepositoryFetched:
		a.busy = false
		a.repositoryView, cmd = a.repositoryView.Update(msg)
		if msg.Err != nil {
			a.setError(msg.Err, msg.NeedsToken)
			return a, cmd
		}
		a.err = nil
		repo := msg.Report.Repository.String()
		if a.statusbar.Repository() != repo {
			a.chatView.Reset()
		}
		a.statusbar.SetRepository(msg.Report)
		a.chatView.SetRepository(repo)
		return a, tea.Batch(cmd, a.switchView(messages.ViewChat))

	case messages.AskRequested:
		return a, a.ask(msg.Question)

	case messages.AnswerReceived:
		a.busy = false
		a.statusbar.SetState(status.StateReady)
		if msg.Err != nil {
			a.err = msg.Err
		}
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.RefreshRequested:
		return a, a.refresh()

	case messages.RefreshCompleted:
		a.busy = false
		if msg.Err != nil {
			a.setError(msg.Err, false)
			return a, nil
		}
		a.statusbar.ClearRepository()
		a.statusbar.SetState(status.StateReady)
		a.chatView.Reset()
		a.chatView.SetRepository("")
		a.repositoryView.Reset()
		return a, a.switchView(messages.ViewRepository)

	case messages.ViewChanged:
		return a, a.switchView(msg.View)

	case messages.ErrorOccurred:
		a.setError(msg.Err, false)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a.forward(msg)
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit
	case keymap.Matches(key, a.keymap.Help):
		if a.currentView == messages.ViewHelp {
			return a, a.switchView(a.previousView)
		}
		return a, a.switchView(messages.ViewHelp)
	case keymap.Matches(key, a.keymap.Back):
		switch a.currentView {
		case messages.ViewHelp:
			return a, a.switchView(a.previousView)
		case messages.ViewChat:
			return a, a.switchView(messages.ViewRepository)
		case messages.ViewRepository:
		}
		return a, nil
	case keymap.Matches(key, a.keymap.Refresh):
		if a.currentView == messages.ViewChat {
			return a, func() tea.Msg { return messages.RefreshRequested{} }
		}
		return a, nil
	}

	return a.forward(msg)
}

// forward sends a message to the active view.
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewRepository:
		a.repositoryView, cmd = a.repositoryView.Update(msg)
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) switchView(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp && a.currentView != messages.ViewHelp {
		a.previousView = a.currentView
	}
	if view == messages.ViewChat && a.statusbar.Repository() == "" {
		view = messages.ViewRepository
	}
	a.currentView = view

	switch view {
	case messages.ViewRepository:
		a.statusbar.SetHints(a.keymap.RepositoryHelp())
		return a.repositoryView.Init()
	case messages.ViewChat:
		a.statusbar.SetHints(a.keymap.ChatHelp())
		return a.chatView.Init()
	case messages.ViewHelp:
	}
	return nil
}

func (a *App) fetch(req messages.FetchRequested) tea.Cmd {
	if a.session == nil {
		return func() tea.Msg {
			return messages.RepositoryFetched{Err: ErrSessionNotReady}
		}
	}
	if a.busy {
		return nil
	}
	a.busy = true
	a.statusbar.SetState(status.StateFetching)

	ctx, ingest, session := a.ctx, a.ports.Ingest, a.session
	return func() tea.Msg {
		report, err := ingest.Fetch(ctx, session, req.Repository, req.Token)
		if err != nil {
			return messages.RepositoryFetched{Err: err, NeedsToken: domain.NeedsCredential(err)}
		}
		return messages.RepositoryFetched{Report: report}
	}
}

func (a *App) ask(question string) tea.Cmd {
	if a.session == nil {
		return func() tea.Msg {
			return messages.AnswerReceived{Question: question, Err: ErrSessionNotReady}
		}
	}
	if a.busy {
		return nil
	}
	a.busy = true
	a.statusbar.SetState(status.StateThinking)

	ctx, svc, session := a.ctx, a.ports.Question, a.session
	return func() tea.Msg {
		answer, err := svc.Ask(ctx, session, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	}
}

func (a *App) refresh() tea.Cmd {
	if a.session == nil || a.busy {
		return nil
	}
	a.busy = true

	ctx, ingest, session := a.ctx, a.ports.Ingest, a.session
	return func() tea.Msg {
		return messages.RefreshCompleted{Err: ingest.Refresh(ctx, session)}
	}
}

func (a *App) setError(err error, needsToken bool) {
	a.err = err
	a.statusbar.SetError(err, needsToken)
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewRepository:
		body = a.repositoryView.View()
	case messages.ViewChat:
		body = a.chatView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	}

	return body + "\n" + a.statusbar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-10s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("Fetch a repository, then ask questions about it. " +
		"Private repositories need a GitHub token."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Close ends the session.
func (a *App) Close() {
	if a.session == nil {
		return
	}
	if err := a.ports.Sessions.End(context.Background(), a.session.ID); err != nil {
		logger.Warn("failed to end tui session: %v", err)
	}
	a.session = nil
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Session returns the session, or nil before it has started.
func (a *App) Session() *domain.Session {
	return a.session
}

// Busy reports whether a fetch, question or refresh is in flight.
func (a *App) Busy() bool {
	return a.busy
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.statusbar.SetWidth(width)
	// one line for the status bar
	a.repositoryView.SetDimensions(width, height-1)
	a.chatView.SetDimensions(width, height-1)
}
