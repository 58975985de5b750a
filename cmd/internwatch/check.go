package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"internwatch/internal/engine"
	"internwatch/internal/notifier"
	"internwatch/internal/state"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch once, print what would be announced, exit",
	Long:  "One-shot diagnostic: fetches all sources and logs the would-be digest. Does not read credentials and does not write state.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: no state will be written")

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	n := notifier.NewLogNotifier(logger)
	store := state.NewNopStore()

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

	eng := engine.New(sources, store, n, cfg.Notification.DisplayCap, true, logger)
	if err := eng.Run(ctx); err != nil {
		logger.Error("check failed", "error", err)
		os.Exit(1)
	}

	logger.Info("check complete")
	return nil
}
