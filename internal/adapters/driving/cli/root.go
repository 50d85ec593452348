// Package cli implements the repoqa command line.
//
// Commands drive the core services through the driving ports. The
// services are built lazily by a ServiceFactory set from main, so
// commands that only touch settings (config, version) work without AI
// provider credentials.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repoqa/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "repoqa",
	Short: "Ask questions about GitHub repositories",
	Long: `repoqa fetches the text files of a GitHub repository, indexes them
and answers natural-language questions about the code.

Questions are classified by the kind of file they concern, relevant
segments are retrieved with diversity-aware vector search and an LLM
composes the answer.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx. Services built during
// the run are closed before returning.
func ExecuteContext(ctx context.Context) error {
	defer closeServices()
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
