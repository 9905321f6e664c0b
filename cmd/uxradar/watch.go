package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/scheduler"
	"github.com/amishk599/uxradar/internal/store"
)

var (
	watchOnce   bool
	watchDryRun bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Search on an interval and notify about new listings",
	Long:  "Runs a search every watch.interval and sends listings not seen earlier in this process to the configured notifier. Blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addViewFlags(watchCmd)
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "run a single cycle and exit")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "never mark listings as seen, so every cycle notifies everything")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}

	listingFilter, _, err := view.build(time.Now())
	if err != nil {
		return err
	}

	runner, err := buildRunner(cfg, nil, logger)
	if err != nil {
		return err
	}

	var seen model.ListingStore = store.NewMemoryStore()
	if watchDryRun {
		logger.Info("dry-run mode enabled, no listings will be marked as seen")
		seen = store.NewNopStore()
	}

	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)

	// Seen IDs older than twice the recency window can never come back.
	retention := time.Duration(2*cfg.Pipeline.RecencyDays) * 24 * time.Hour
	sched := scheduler.NewScheduler(runner, listingFilter, seen, n, cfg.Watch.Interval, retention, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if watchOnce {
		delivered, err := sched.RunOnce(ctx)
		if err != nil {
			logger.Error("watch cycle failed", "error", err)
			return err
		}
		logger.Info("watch cycle complete", "delivered", delivered)
		return nil
	}

	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
