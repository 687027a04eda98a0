package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leadvet/prospectval/internal/repository"
	"github.com/leadvet/prospectval/internal/webapi"
)

var serveFlags struct {
	SinkFlags
	Addr string
}

var serveCmd = &cobra.Command{
	Use:           "serve",
	Short:         "Serve the validation pipeline over HTTP",
	GroupID:       "validation",
	SilenceUsage:  true,
	SilenceErrors: true,
	Long: `Serve exposes the pipeline as a local HTTP API.

Endpoints:
  POST /api/v1/validate   {"url": "..."} -> flat composite result
  GET  /api/v1/records    stored records (only with a store backend)
  GET  /healthz           liveness probe

When a store backend is configured, every validated result is recorded
and the records endpoint serves them with domain, passed, min_score, and
sort query filters. The server drains in-flight requests on SIGINT or
SIGTERM before exiting.

Examples:
  # Serve on the default port, results not persisted
  prospectval serve

  # Persist results and expose the records endpoint
  prospectval serve --addr :9090 --store-sqlite ./records.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		repoCfg, err := repositoryConfig(serveFlags.SinkFlags)
		if err != nil {
			return UsageError{err}
		}

		var repo repository.RecordRepository
		if hasSink(repoCfg) {
			repo, err = repository.NewRepository(ctx, repoCfg, rootLogger)
			if err != nil {
				return err
			}
		}

		addr := serveFlags.Addr
		if !cmd.Flags().Changed("addr") && rootConfig.Serve.Addr != "" {
			addr = rootConfig.Serve.Addr
		}

		server := webapi.NewServer(newValidator(), repo, rootLogger)
		return server.Run(ctx, addr)
	},
}

func init() {
	addSinkFlags(serveCmd, &serveFlags.SinkFlags)
	serveCmd.Flags().StringVar(&serveFlags.Addr, "addr", webapi.DefaultAddr, "Listen address")
}
