package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui"
)

// stubProgram replaces the TUI runner and records the app it was given.
func stubProgram(t *testing.T, err error) **tui.App {
	t.Helper()
	var got *tui.App
	orig := runProgram
	runProgram = func(app *tui.App) error {
		got = app
		return err
	}
	t.Cleanup(func() { runProgram = orig })
	return &got
}

func TestTUICmd_Exists(t *testing.T) {
	found := false
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == "tui" {
			found = true
			break
		}
	}
	assert.True(t, found, "tui command should be registered")
}

func TestTUICmd_ShortDescription(t *testing.T) {
	assert.Equal(t, "Launch the interactive terminal UI", tuiCmd.Short)
}

func TestTUICmd_HelpOutput(t *testing.T) {
	out, _, err := execute(t, "", "tui", "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "interactive terminal user interface")
	assert.Contains(t, out, "Controls:")
	assert.Contains(t, out, "--token")
}

func TestTUICmd_Runs(t *testing.T) {
	ts := useServices(t)
	got := stubProgram(t, nil)

	_, _, err := execute(t, "", "tui", "octo/demo")

	require.NoError(t, err)
	require.NotNil(t, *got)
	// the session starts inside the program loop, which the stub skips
	assert.Nil(t, (*got).Session())
	assert.Empty(t, ts.sessions.ended)
}

func TestTUICmd_ProgramError(t *testing.T) {
	useServices(t)
	stubProgram(t, errors.New("no tty"))

	_, _, err := execute(t, "", "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI error: no tty")
}

func TestTUICmd_ServicesNotConfigured(t *testing.T) {
	stubProgram(t, nil)

	_, _, err := execute(t, "", "tui")

	assert.EqualError(t, err, "services not configured")
}

func TestTUICmd_RecoversPanic(t *testing.T) {
	useServices(t)
	orig := runProgram
	runProgram = func(*tui.App) error { panic("boom") }
	t.Cleanup(func() { runProgram = orig })

	_, _, err := execute(t, "", "tui")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUI panic: boom")
}
