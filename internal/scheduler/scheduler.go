package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

// Runner executes one pipeline run. Implemented by *pipeline.Runner.
type Runner interface {
	Run(ctx context.Context) (model.PipelineOutcome, []pipelinelog.Event, error)
}

// Scheduler owns the watch loop: it reruns the pipeline on an interval and
// delivers listings it has not delivered before.
type Scheduler struct {
	runner    Runner
	filter    model.ListingFilter
	store     model.ListingStore
	notifier  model.Notifier
	interval  time.Duration
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler. filter may be nil to accept every
// listing; a zero retention never forgets seen IDs.
func NewScheduler(
	runner Runner,
	filter model.ListingFilter,
	store model.ListingStore,
	notifier model.Notifier,
	interval time.Duration,
	retention time.Duration,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		runner:    runner,
		filter:    filter,
		store:     store,
		notifier:  notifier,
		interval:  interval,
		retention: retention,
		logger:    logger,
	}
}

// Run starts the watch loop. It runs one immediate cycle, then waits the
// configured interval between cycles. It returns nil when ctx is cancelled
// (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.cycle(ctx)
		}
	}
}

func (s *Scheduler) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error("watch cycle failed", "error", err)
	}
}

// RunOnce runs the pipeline once: filter, drop already-seen listings, notify,
// then mark the delivered listings seen. It returns how many were delivered.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	outcome, _, err := s.runner.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("watch cycle: %w", err)
	}

	switch outcome.Status {
	case model.StatusQuotaExhausted:
		return 0, fmt.Errorf("watch cycle %s: %w", outcome.RunID, model.ErrQuotaExhausted)
	case model.StatusAllFailed:
		return 0, fmt.Errorf("watch cycle %s: %w", outcome.RunID, model.ErrSourceUnavailable)
	}

	var matched []model.Listing
	for _, l := range outcome.Listings {
		if s.filter == nil || s.filter.Match(l) {
			matched = append(matched, l)
		}
	}

	var fresh []model.Listing
	for _, l := range matched {
		seen, err := s.store.HasSeen(l.ID)
		if err != nil {
			return 0, fmt.Errorf("watch cycle %s: checking seen status: %w", outcome.RunID, err)
		}
		if !seen {
			fresh = append(fresh, l)
		}
	}

	if len(fresh) > 0 {
		if err := s.notifier.Notify(fresh); err != nil {
			return 0, fmt.Errorf("watch cycle %s: notifying: %w", outcome.RunID, err)
		}
	}

	for _, l := range fresh {
		if err := s.store.MarkSeen(l.ID); err != nil {
			return len(fresh), fmt.Errorf("watch cycle %s: marking seen: %w", outcome.RunID, err)
		}
	}

	if s.retention > 0 {
		if err := s.store.Cleanup(s.retention); err != nil {
			s.logger.Warn("seen-store cleanup failed", "error", err)
		}
	}

	s.logger.Info("watch cycle complete",
		"run_id", outcome.RunID,
		"status", outcome.Status,
		"listings", len(outcome.Listings),
		"matched", len(matched),
		"new", len(fresh),
	)
	return len(fresh), nil
}
