package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/giygas/druglabel-checker/handlers"
	"github.com/giygas/druglabel-checker/health"
	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/scheduler"
	"github.com/giygas/druglabel-checker/server"
	"github.com/giygas/druglabel-checker/status"
	"github.com/giygas/druglabel-checker/validation"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and web page",
	Long: `Serves the web page on /, the JSON API under /v1, /health and /metrics.

A background job probes openFDA every UPSTREAM_PROBE_INTERVAL and reports the
result on /health.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := appConfig

	logging.Info("Starting druglabel server", "version", version, "env", cfg.Env)

	source := newLabelSource(cfg)
	service := interactions.NewService(source)

	upstream := status.NewContainer()
	upstream.SetServerStartTime(time.Now())

	probe := scheduler.NewScheduler(upstream, source, scheduler.Options{
		Interval: cfg.Upstream.ProbeInterval,
		Drug:     cfg.Upstream.ProbeDrug,
		Timeout:  2 * cfg.OpenFDA.Timeout,
	})
	if err := probe.Start(); err != nil {
		return err
	}
	defer probe.Stop()

	checker := health.NewHealthChecker(upstream, probe)
	handler := handlers.NewHTTPHandler(service, validation.NewNameValidator(), checker, upstream)
	srv := server.NewServer(cfg, handler)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logging.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logging.Info("Server stopped")
	return nil
}
