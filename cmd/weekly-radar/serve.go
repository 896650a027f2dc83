// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weekly-radar/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the trigger endpoint, read API and metrics",
	Long: `Serve starts the HTTP surface. A scheduler calls /run-weekly?token=...
to process the current week; /api/weeks exposes the archive and /metrics
the Prometheus registry.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if cfg.Server.TriggerToken == "" {
		logger.Warn().Msg("no trigger-token configured, /run-weekly is open")
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, cancel := signalContext()
	defer cancel()

	srv := server.New(cfg.Server, p.runner, p.archive, p.registry, logger, nil)
	return srv.ListenAndServe(ctx)
}
