package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

var (
	fetchToken    string
	fetchAskToken bool
	askToken      string
	chatToken     string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [owner/name]",
	Short: "Fetch and index a repository",
	Long: `Fetch the text files of a GitHub repository, segment them and build the
search index, then report what was loaded. Nothing is kept between runs
except the fetch cache.

Private repositories need a token: pass --token, use --ask-token to type it
without echo, set GITHUB_TOKEN or run "repoqa config set-token".`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var askCmd = &cobra.Command{
	Use:   "ask [owner/name] [question]",
	Short: "Ask one question about a repository",
	Long: `Fetch a repository and answer a single question about it.

Example:
  repoqa ask golang/example "How is the hello command structured?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [owner/name]",
	Short: "Ask questions about a repository interactively",
	Long: `Fetch a repository once, then answer questions read line by line from
standard input. An empty line or "exit" ends the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchToken, "token", "", "GitHub token for private repositories")
	fetchCmd.Flags().BoolVar(&fetchAskToken, "ask-token", false, "prompt for the GitHub token")
	askCmd.Flags().StringVar(&askToken, "token", "", "GitHub token for private repositories")
	chatCmd.Flags().StringVar(&chatToken, "token", "", "GitHub token for private repositories")
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	printWarnings(cmd, svc.Warnings)

	token := fetchToken
	if fetchAskToken {
		cmd.Print("GitHub token: ")
		token = readSecret(cmd.InOrStdin())
		cmd.Println()
	}

	session, err := startSession(ctx, svc, token)
	if err != nil {
		return err
	}
	defer endSession(svc, session)

	report, err := svc.Ingest.Fetch(ctx, session, args[0], "")
	if err != nil {
		return fetchFailure(err)
	}
	printReport(cmd, report)
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return domain.ErrEmptyQuestion
	}

	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	printWarnings(cmd, svc.Warnings)

	session, err := startSession(ctx, svc, askToken)
	if err != nil {
		return err
	}
	defer endSession(svc, session)

	if _, err := svc.Ingest.Fetch(ctx, session, args[0], ""); err != nil {
		return fetchFailure(err)
	}

	answer, err := svc.Question.Ask(ctx, session, question)
	if err != nil {
		return err
	}
	printAnswer(cmd, answer)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	printWarnings(cmd, svc.Warnings)

	session, err := startSession(ctx, svc, chatToken)
	if err != nil {
		return err
	}
	defer endSession(svc, session)

	report, err := svc.Ingest.Fetch(ctx, session, args[0], "")
	if err != nil {
		return fetchFailure(err)
	}
	printReport(cmd, report)
	cmd.Println()

	return chatLoop(ctx, cmd, cmd.InOrStdin(), func(q string) error {
		answer, err := svc.Question.Ask(ctx, session, q)
		if err != nil {
			return err
		}
		printAnswer(cmd, answer)
		return nil
	})
}

// chatLoop reads questions until EOF, an empty line or "exit".
func chatLoop(ctx context.Context, cmd *cobra.Command, in io.Reader, ask func(string) error) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" || q == "exit" || q == "quit" {
			return nil
		}
		if err := ask(q); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			cmd.PrintErrf("Error: %v\n", err)
		}
		cmd.Println()
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func endSession(svc *Services, session *domain.Session) {
	_ = svc.Sessions.End(context.Background(), session.ID)
}

// fetchFailure adds a hint when a token could fix the failure.
func fetchFailure(err error) error {
	if domain.NeedsCredential(err) {
		return fmt.Errorf("%w\nhint: pass --token, set GITHUB_TOKEN or run \"repoqa config set-token\"", err)
	}
	if errors.Is(err, domain.ErrInvalidIdentifier) {
		return fmt.Errorf("%w (for example golang/go)", err)
	}
	return err
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		cmd.PrintErrf("warning: %s\n", w)
	}
}

func printReport(cmd *cobra.Command, r *domain.IngestReport) {
	cmd.Printf("Repository: %s\n", r.Repository)
	cmd.Printf("Files: %d", r.FilesKept)
	if r.Truncated {
		cmd.Printf(" (truncated from %d)", r.FilesFetched)
	}
	cmd.Println()
	cmd.Printf("Segments: %d\n", r.Segments)
	if !r.Indexed {
		cmd.Println("Index: unavailable, answers use the whole repository")
	}
	if r.FromCache {
		cmd.Println("Source: cache")
	}
}

func printAnswer(cmd *cobra.Command, a *domain.Answer) {
	cmd.Println(a.Text)
	if len(a.Sources) > 0 && !a.Degraded {
		cmd.Println()
		cmd.Printf("Sources (%s):\n", a.Route)
		for _, src := range a.Sources {
			cmd.Printf("  %s\n", src)
		}
	}
}
