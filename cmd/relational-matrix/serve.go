// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/relational-matrix/internal/api"
	"github.com/pdiddy/relational-matrix/internal/evidence"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the evidence API over HTTP",
	Long: `Serve starts a JSON API over the evidence engine:

  GET  /healthz                          repository reachability
  POST /api/results                      verdicts for a query key
  POST /api/sources/{source}/findings    detail view of one source

Request bodies have the form
  {"level": "...", "dependent": {"selection": "...", "other": "..."},
   "independent": {"selection": "...", "other": "..."}}

The server shuts down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := appConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	src, err := openDataSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.close()

	engine := evidence.New(src.repo, cfg.Engine, logger)
	server := api.NewServer(engine, src.health, cfg.Server, logger)
	return server.Run(ctx)
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}
