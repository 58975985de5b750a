package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"internwatch/internal/engine"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one watch cycle",
	Long:  "One-shot cycle: fetch all sources, notify for new postings, commit state, exit. Exit code is non-zero on config, state, or notify errors; zero otherwise, including when nothing is new.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	// .env is optional; deployments normally inject the variables directly.
	_ = godotenv.Load()

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"sources", len(cfg.Sources),
		"state_backend", cfg.State.Backend,
		"notification", cfg.Notification.Type,
		"display_cap", cfg.Notification.DisplayCap,
	)

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}

	// Credentials are checked before any fetch happens.
	n, err := setupNotifier(cfg, httpClient, logger)
	if err != nil {
		logger.Error("notifier setup failed", "error", err)
		os.Exit(1)
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open state store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	sources, err := buildSources(cfg, httpClient, logger)
	if err != nil {
		logger.Error("failed to build sources", "error", err)
		os.Exit(1)
	}
	if len(sources) == 0 {
		logger.Error("no sources to poll")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng := engine.New(sources, store, n, cfg.Notification.DisplayCap, false, logger)
	if err := eng.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
	return nil
}
