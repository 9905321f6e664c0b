package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/uxradar/internal/metrics"
	"github.com/amishk599/uxradar/internal/server"
)

var serveDebug bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve searches over HTTP",
	Long:  "Starts the HTTP server: POST /api/search runs the pipeline, /metrics exposes Prometheus metrics. Blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveDebug, "debug-response", false, "include the pipeline log in every response (overrides server.debug)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	m := metrics.New()
	runner, err := buildRunner(cfg, m, logger)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"addr", cfg.Server.Addr,
		"sources", len(cfg.EnabledSources()),
		"discovery", cfg.Discovery,
		"ai", cfg.AI.Enabled,
	)

	respDebug := cfg.Server.Debug || serveDebug
	srv := server.New(
		server.Config{Addr: cfg.Server.Addr, Debug: debug},
		server.NewSearchHandler(runner, respDebug, logger),
		m.Handler(),
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
