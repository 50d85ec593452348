package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/repoqa/internal/core/domain"
)

func newTestPorts() (*Ports, *MockSessionService, *MockIngestService, *MockQuestionService) {
	sessions := &MockSessionService{}
	ingest := &MockIngestService{}
	question := &MockQuestionService{}
	return NewPorts(sessions, ingest, question), sessions, ingest, question
}

// startedApp returns an app with a session and dimensions set.
func startedApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(120, 30)
	app.Update(messages.SessionStarted{Session: &domain.Session{ID: "s1"}})
	return app
}

// run executes cmd and feeds its message back into the app.
func run(t *testing.T, app *App, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	app.Update(cmd())
}

func fetchedApp(t *testing.T, ports *Ports) *App {
	t.Helper()
	app := startedApp(t, ports)
	_, cmd := app.Update(messages.FetchRequested{Repository: "octo/demo"})
	run(t, app, cmd)
	return app
}

func TestNewApp_Success(t *testing.T) {
	ports, _, _, _ := newTestPorts()

	app, err := NewApp(ports)

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, messages.ViewRepository, app.CurrentView())
	assert.Nil(t, app.Session())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{Ingest: &MockIngestService{}, Question: &MockQuestionService{}})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidPorts)
	assert.ErrorIs(t, err, ErrMissingSessionService)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)

	assert.NotNil(t, app.Init())
}

func TestApp_StartSession(t *testing.T) {
	t.Run("default username", func(t *testing.T) {
		ports, sessions, _, _ := newTestPorts()
		app, _ := NewApp(ports)

		msg := app.startSession()()
		app.Update(msg)

		require.NotNil(t, app.Session())
		assert.Equal(t, "tui", sessions.Username)
	})

	t.Run("configured username", func(t *testing.T) {
		ports, sessions, _, _ := newTestPorts()
		ports.Username = "alice"
		app, _ := NewApp(ports)

		app.Update(app.startSession()())

		assert.Equal(t, "alice", sessions.Username)
	})

	t.Run("start failure", func(t *testing.T) {
		ports, sessions, _, _ := newTestPorts()
		sessions.StartErr = errors.New("store down")
		app, _ := NewApp(ports)
		app.SetDimensions(100, 30)

		app.Update(app.startSession()())

		assert.Nil(t, app.Session())
		assert.EqualError(t, app.Err(), "store down")
		assert.Contains(t, app.View(), "store down")
	})
}

func TestApp_Update_WindowSize(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)
	assert.False(t, app.Ready())

	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.True(t, app.Ready())
	assert.Equal(t, 80, app.width)
	assert.Equal(t, 24, app.height)
}

func TestApp_View_NotReady(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_Fetch_Success(t *testing.T) {
	ports, _, _, _ := newTestPorts()

	app := fetchedApp(t, ports)

	assert.Equal(t, messages.ViewChat, app.CurrentView())
	assert.False(t, app.Busy())
	assert.NoError(t, app.Err())
	assert.Equal(t, "octo/demo", app.Session().Repository.String())
	view := app.View()
	assert.Contains(t, view, "octo/demo")
	assert.Contains(t, view, "3 files")
}

func TestApp_Fetch_PassesToken(t *testing.T) {
	ports, _, ingest, _ := newTestPorts()
	var gotCred string
	ingest.FetchFunc = func(_ context.Context, s *domain.Session, id, cred string) (*domain.IngestReport, error) {
		gotCred = cred
		ref, _ := domain.ParseRepoRef(id)
		return &domain.IngestReport{Repository: ref}, nil
	}
	app := startedApp(t, ports)

	_, cmd := app.Update(messages.FetchRequested{Repository: "octo/private", Token: "ghp_x"})
	run(t, app, cmd)

	assert.Equal(t, "ghp_x", gotCred)
}

func TestApp_Fetch_NeedsToken(t *testing.T) {
	ports, _, ingest, _ := newTestPorts()
	ingest.FetchFunc = func(context.Context, *domain.Session, string, string) (*domain.IngestReport, error) {
		return nil, domain.NewNotFoundError("https://api.github.com/repos/octo/private", false)
	}
	app := startedApp(t, ports)

	_, cmd := app.Update(messages.FetchRequested{Repository: "octo/private"})
	run(t, app, cmd)

	assert.Equal(t, messages.ViewRepository, app.CurrentView())
	assert.ErrorIs(t, app.Err(), domain.ErrResourceNotFound)
	assert.Contains(t, app.View(), "Enter a token")
}

func TestApp_Fetch_BeforeSession(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)
	app.SetDimensions(100, 30)

	_, cmd := app.Update(messages.FetchRequested{Repository: "octo/demo"})
	run(t, app, cmd)

	assert.ErrorIs(t, app.Err(), ErrSessionNotReady)
}

func TestApp_Fetch_IgnoredWhileBusy(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := startedApp(t, ports)

	_, first := app.Update(messages.FetchRequested{Repository: "octo/demo"})
	_, second := app.Update(messages.FetchRequested{Repository: "octo/other"})

	assert.NotNil(t, first)
	assert.Nil(t, second)
	assert.True(t, app.Busy())
}

func TestApp_Ask(t *testing.T) {
	ports, _, _, question := newTestPorts()
	question.AskFunc = func(_ context.Context, _ *domain.Session, q string) (*domain.Answer, error) {
		return &domain.Answer{Question: q, Text: "See main.go.", Route: domain.RouteGeneral, Sources: []string{"main.go"}}, nil
	}
	app := fetchedApp(t, ports)

	_, cmd := app.Update(messages.AskRequested{Question: "where is main?"})
	assert.True(t, app.Busy())
	run(t, app, cmd)

	assert.False(t, app.Busy())
	view := app.View()
	assert.Contains(t, view, "where is main?")
	assert.Contains(t, view, "See main.go.")
}

func TestApp_Ask_Error(t *testing.T) {
	ports, _, _, question := newTestPorts()
	question.AskFunc = func(context.Context, *domain.Session, string) (*domain.Answer, error) {
		return nil, domain.ErrNoRepository
	}
	app := fetchedApp(t, ports)

	_, cmd := app.Update(messages.AskRequested{Question: "q"})
	run(t, app, cmd)

	assert.ErrorIs(t, app.Err(), domain.ErrNoRepository)
	assert.Contains(t, app.View(), "Error:")
}

func TestApp_Refresh(t *testing.T) {
	ports, _, ingest, _ := newTestPorts()
	app := fetchedApp(t, ports)
	require.Equal(t, messages.ViewChat, app.CurrentView())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	_, cmd = app.Update(cmd())
	run(t, app, cmd)

	assert.Equal(t, 1, ingest.Refreshed)
	assert.Equal(t, messages.ViewRepository, app.CurrentView())
	assert.False(t, app.Session().HasRepository())
	assert.Contains(t, app.View(), "No repository loaded")
}

func TestApp_Refresh_Error(t *testing.T) {
	ports, _, ingest, _ := newTestPorts()
	ingest.RefreshErr = errors.New("locked")
	app := fetchedApp(t, ports)

	_, cmd := app.Update(messages.RefreshRequested{})
	run(t, app, cmd)

	assert.EqualError(t, app.Err(), "locked")
	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_Refresh_OnlyInChat(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := startedApp(t, ports)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})

	assert.Nil(t, cmd)
}

func TestApp_NewRepositoryResetsTranscript(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := fetchedApp(t, ports)
	_, cmd := app.Update(messages.AskRequested{Question: "q"})
	run(t, app, cmd)
	require.Len(t, app.chatView.Entries(), 1)

	_, cmd = app.Update(messages.FetchRequested{Repository: "octo/other"})
	run(t, app, cmd)

	assert.Empty(t, app.chatView.Entries())
}

func TestApp_KeyMsg_Quit(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_Update_Quit(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestApp_Help(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := startedApp(t, ports)

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	assert.Contains(t, app.View(), "Help")
	assert.Contains(t, app.View(), "ctrl+r")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewRepository, app.CurrentView())
}

func TestApp_Help_ReturnsToChat(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := fetchedApp(t, ports)

	app.Update(tea.KeyMsg{Type: tea.KeyF1})
	app.Update(tea.KeyMsg{Type: tea.KeyF1})

	assert.Equal(t, messages.ViewChat, app.CurrentView())
}

func TestApp_EscFromChat(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := fetchedApp(t, ports)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, messages.ViewRepository, app.CurrentView())
	// the repository stays loaded
	assert.True(t, app.Session().HasRepository())
}

func TestApp_ViewChanged_ChatRequiresRepository(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := startedApp(t, ports)

	app.Update(messages.ViewChanged{View: messages.ViewChat})

	assert.Equal(t, messages.ViewRepository, app.CurrentView())
}

func TestApp_ErrorOccurred(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := startedApp(t, ports)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_TypingReachesRepositoryView(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app := startedApp(t, ports)

	for _, r := range "octo/demo" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.FetchRequested)
	require.True(t, ok)
	assert.Equal(t, "octo/demo", msg.Repository)
}

func TestApp_WithRepository(t *testing.T) {
	ports, _, _, _ := newTestPorts()
	app, _ := NewApp(ports)

	app.WithRepository("octo/demo")

	assert.Equal(t, "octo/demo", app.repositoryView.Repository())
}

func TestApp_Close(t *testing.T) {
	ports, sessions, _, _ := newTestPorts()
	app := startedApp(t, ports)

	app.Close()
	app.Close()

	assert.Equal(t, []string{"s1"}, sessions.Ended)
	assert.Nil(t, app.Session())
}
