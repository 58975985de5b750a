package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"internwatch/internal/config"
	"internwatch/internal/engine"
	"internwatch/internal/filter"
	"internwatch/internal/model"
	"internwatch/internal/notifier"
	"internwatch/internal/source"
	"internwatch/internal/state"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "internwatch",
	Short: "Internship listing watcher",
	Long:  "Internwatch polls internship listing sources and sends one Telegram digest for new postings.",
	// Default to `run` so the scheduler can invoke the binary directly.
	RunE: runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: INTERNWATCH_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > INTERNWATCH_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("INTERNWATCH_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (model.Notifier, error) {
	switch cfg.Notification.Type {
	case "telegram":
		logger.Info("using telegram notifier")
		return notifier.NewTelegramNotifier(cfg.Notification.BotTokenEnv, cfg.Notification.ChatIDEnv, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger), nil
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (model.StateStore, error) {
	switch cfg.State.Backend {
	case "sqlite":
		logger.Info("using sqlite state store", "path", cfg.State.Path)
		return state.NewSQLiteStore(cfg.State.Path)
	default:
		return state.NewFileStore(cfg.State.Path, logger)
	}
}

func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ([]engine.Source, error) {
	var sources []engine.Source
	for _, sc := range cfg.Sources {
		if !sc.Enabled {
			continue
		}

		var adapter model.SourceAdapter
		switch sc.Type {
		case "html":
			a, err := source.NewHTMLAdapter(sc, httpClient)
			if err != nil {
				return nil, err
			}
			adapter = a
		case "table":
			adapter = source.NewTableAdapter(sc, httpClient)
		default:
			logger.Warn("unsupported source type, skipping", "source", sc.Name, "type", sc.Type)
			continue
		}

		sources = append(sources, engine.Source{
			Adapter: adapter,
			Fresh:   filter.NewAgeFilter(sc.FreshAges),
		})
		logger.Info("registered source", "name", sc.Name, "type", sc.Type, "fresh_ages", sc.FreshAges)
	}
	return sources, nil
}
