// Command repoqa answers questions about GitHub repositories.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/repoqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/repoqa/internal/adapters/driving/cli"
)

// version is set at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	store, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}

	cli.SetVersion(version)
	cli.SetConfigStore(store)
	cli.SetServiceFactory(newServiceFactory(store))

	return cli.ExecuteContext(ctx)
}
