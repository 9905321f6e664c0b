package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/uxradar/internal/ai"
	"github.com/amishk599/uxradar/internal/config"
	"github.com/amishk599/uxradar/internal/dedup"
	"github.com/amishk599/uxradar/internal/eligibility"
	"github.com/amishk599/uxradar/internal/fetch"
	"github.com/amishk599/uxradar/internal/metrics"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/normalize"
	"github.com/amishk599/uxradar/internal/notifier"
	"github.com/amishk599/uxradar/internal/pipeline"
	"github.com/amishk599/uxradar/internal/search"
)

var (
	cfgPath string
	envPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "uxradar",
	Short: "Remote UX research job radar",
	Long:  "uxradar searches curated job boards and the open web for remote UX research roles, removes duplicates, and flags where each role can be worked from.",
	// Default to `search` so that `uxradar` with no args runs one search.
	RunE:          runSearch,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: UXRADAR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env-file", ".env", "dotenv file loaded before the config is expanded (ignored if missing)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	addViewFlags(rootCmd)
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > UXRADAR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if err := loadEnvFile(envPath); err != nil {
		return nil, err
	}
	if path == "" {
		if env := os.Getenv("UXRADAR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

// loadEnvFile loads KEY=value pairs without overriding variables already set.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func setupLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stdout, dbg, slog.LevelInfo)
}

// setupQuietLogger keeps stdout clean for command output: warnings only, on stderr.
func setupQuietLogger(dbg bool) *slog.Logger {
	return newLogger(os.Stderr, dbg, slog.LevelWarn)
}

func newLogger(w io.Writer, dbg bool, level slog.Level) *slog.Logger {
	if dbg {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupCompleter returns the AI-assisted text service, or a Nop completer
// when AI is disabled so both assisted steps fall back.
func setupCompleter(cfg *config.Config, logger *slog.Logger) (model.TextCompleter, error) {
	if !cfg.AI.Enabled {
		logger.Debug("ai disabled, dedup is url-only and eligibility is heuristic-only")
		return ai.NewNopCompleter(), nil
	}
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	completer, err := ai.NewCompleter(cfg.AI.Provider, cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	if err != nil {
		return nil, err
	}
	logger.Debug("ai enabled", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return completer, nil
}

// buildRunner wires the full pipeline from config. m may be nil.
func buildRunner(cfg *config.Config, m *metrics.Metrics, logger *slog.Logger) (*pipeline.Runner, error) {
	searchClient := search.NewClient(
		cfg.Search.BaseURL,
		cfg.Search.APIKey,
		cfg.Search.RetryBackoff,
		&http.Client{Timeout: cfg.Search.Timeout},
		logger,
	)
	normalizer := normalize.New(cfg.Pipeline.RecencyDays, time.Now, logger)
	orchestrator := fetch.NewOrchestrator(searchClient, normalizer, cfg.EnabledSources(), cfg.Discovery, cfg.Search.Limit, logger)

	completer, err := setupCompleter(cfg, logger)
	if err != nil {
		return nil, err
	}

	return pipeline.NewRunner(
		orchestrator,
		dedup.New(completer, logger),
		eligibility.New(completer, logger),
		m,
		logger,
	), nil
}
