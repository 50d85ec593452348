package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/tui"
)

var tuiToken string

// runProgram runs the TUI. Replaced in tests.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [owner/name]",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Enter a repository (and a token for private ones), then ask questions
about it. An optional argument prefills the repository.

Controls:
  Enter    - Fetch / Ask
  Tab      - Switch between repository and token
  PgUp/Dn  - Scroll the answers
  Ctrl+R   - Forget the repository
  Esc      - Back
  F1       - Toggle help
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiToken, "token", "", "GitHub token for private repositories")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	printWarnings(cmd, svc.Warnings)

	ports := tui.NewPorts(svc.Sessions, svc.Ingest, svc.Question)
	ports.Username = localUser()
	ports.Credential = tuiToken

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)
	if len(args) == 1 {
		app.WithRepository(args[0])
	}
	defer app.Close()

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
