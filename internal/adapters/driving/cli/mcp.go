package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server exposes three tools that share one session for its lifetime:
  fetch_repository  fetch and index a GitHub repository
  ask               answer a question about it
  refresh           forget the repository and its cached files

By default, the server communicates over stdio using JSON-RPC. Use --http
to serve streamable HTTP instead (MCP Inspector, remote access).

Examples:
  # Stdio mode (default)
  repoqa mcp serve

  # HTTP mode
  repoqa mcp serve --http :8090`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "HTTP listen address (empty = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}

	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	printWarnings(cmd, svc.Warnings)

	server, err := mcp.NewServer(&mcp.Ports{
		Sessions: svc.Sessions,
		Ingest:   svc.Ingest,
		Question: svc.Question,
		Username: localUser(),
	})
	if err != nil {
		return err
	}

	if addr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", displayAddr(addr))
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
