// Package cmd holds the druglabel command tree: serve, check and tui.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/giygas/druglabel-checker/config"
	"github.com/giygas/druglabel-checker/interactions"
	"github.com/giygas/druglabel-checker/logging"
	"github.com/giygas/druglabel-checker/openfda"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose bool

	// appConfig is loaded before any subcommand runs.
	appConfig *config.Config

	// newLabelSource builds the openFDA client. Tests replace it.
	newLabelSource = func(cfg *config.Config) interactions.LabelSource {
		return openfda.NewClient(openfda.ClientConfig{
			BaseURL:    cfg.OpenFDA.BaseURL,
			Timeout:    cfg.OpenFDA.Timeout,
			RetryCount: cfg.OpenFDA.RetryCount,
			RetryWait:  cfg.OpenFDA.RetryWait,
			UserAgent:  "druglabel-checker/" + version,
		})
	}
)

var rootCmd = &cobra.Command{
	Use:   "druglabel",
	Short: "Look up FDA drug labels and flag interaction cross-mentions",
	Long: `druglabel fetches drug label excerpts from openFDA for two drugs and checks
whether either drug is named in the other's interaction sections.

Educational prototype only, not a clinical decision support system.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		if err := logging.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log more to the console")
}

// setup loads configuration and installs the logger for the command about to run.
func setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	appConfig = cfg

	level := logging.GetConsoleLogLevel(cfg.Env, cfg.LogLevel, verbose)
	var console io.Writer = cmd.ErrOrStderr()
	switch cmd.Name() {
	case "serve":
	case "tui":
		console = io.Discard
	default:
		// stdout carries the report
		if !verbose && level < slog.LevelWarn {
			level = slog.LevelWarn
		}
	}

	logging.InitLogger(logging.Options{
		Dir:            cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
		ConsoleLevel:   level,
		Console:        console,
	})
	return nil
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
