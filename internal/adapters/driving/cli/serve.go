package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/repoqa/internal/adapters/driving/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API.

Endpoints:
  POST /api/auth/login             {username, token} -> session token
  POST /api/auth/logout
  GET  /api/session
  POST /api/repository             {repository, token}
  POST /api/repository/refresh
  POST /api/ask                    {question}
  GET  /healthz
  GET  /metrics

Authenticated routes accept the login token as a Bearer header or the
"auth" cookie. Set REPOQA_JWT_SECRET so tokens survive restarts.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (default from settings, :8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	printWarnings(cmd, svc.Warnings)

	listen := serveListen
	if listen == "" {
		listen = svc.Server.Listen
	}

	server, err := web.New(&web.Ports{
		Sessions: svc.Sessions,
		Ingest:   svc.Ingest,
		Question: svc.Question,
	}, web.Config{
		Listen:    listen,
		JWTSecret: svc.Server.JWTSecret,
		TokenTTL:  svc.Server.SessionTTL,
		Metrics:   svc.Metrics,
	})
	if err != nil {
		return err
	}

	cmd.PrintErrf("Listening on http://%s\n", displayAddr(listen))
	return server.Run(ctx)
}
