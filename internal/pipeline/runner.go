package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/uxradar/internal/dedup"
	"github.com/amishk599/uxradar/internal/metrics"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

// Fetcher queries every source. Implemented by *fetch.Orchestrator.
type Fetcher interface {
	RunAll(ctx context.Context, plog *pipelinelog.Log) model.FetchResult
	SourcesSearched() int
}

// Deduplicator is implemented by *dedup.Deduplicator.
type Deduplicator interface {
	Deduplicate(ctx context.Context, listings []model.Listing, plog *pipelinelog.Log) dedup.Result
}

// Classifier is implemented by *eligibility.Classifier.
type Classifier interface {
	Classify(ctx context.Context, listings []model.Listing, plog *pipelinelog.Log) []model.Listing
}

// Runner owns one full search run: fetch → dedup → classify → sort.
type Runner struct {
	fetcher    Fetcher
	deduper    Deduplicator
	classifier Classifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
	newRunID   func() string
}

// NewRunner wires a runner. m may be nil.
func NewRunner(fetcher Fetcher, deduper Deduplicator, classifier Classifier, m *metrics.Metrics, logger *slog.Logger) *Runner {
	return &Runner{
		fetcher:    fetcher,
		deduper:    deduper,
		classifier: classifier,
		metrics:    m,
		logger:     logger,
		newRunID:   uuid.NewString,
	}
}

// Run executes one pipeline run. Source failures are reported through the
// outcome's Status; an error is returned only when the run itself could not
// complete. The pipeline log is returned in both cases.
func (r *Runner) Run(ctx context.Context) (model.PipelineOutcome, []pipelinelog.Event, error) {
	start := time.Now()
	runID := r.newRunID()
	plog := pipelinelog.New(runID, r.logger)

	fr := r.fetcher.RunAll(ctx, plog)
	if err := ctx.Err(); err != nil {
		plog.Add(pipelinelog.Event{Stage: "fatal_error", Error: err.Error(), Duration: time.Since(start)})
		return model.PipelineOutcome{RunID: runID, Listings: []model.Listing{}}, plog.Events(), fmt.Errorf("pipeline run %s: %w", runID, err)
	}

	outcome := model.PipelineOutcome{
		RunID:             runID,
		Listings:          []model.Listing{},
		SourcesSearched:   r.fetcher.SourcesSearched(),
		Succeeded:         fr.Succeeded,
		Failed:            fr.Failed,
		DiscoveryIncluded: fr.DiscoveryIncluded,
		QuotaExhausted:    fr.QuotaExhausted,
		DedupMethod:       model.DedupURLOnly,
		Status:            model.ClassifyStatus(fr),
	}

	if outcome.Status == model.StatusQuotaExhausted || outcome.Status == model.StatusAllFailed {
		return r.finish(outcome, plog, start), plog.Events(), nil
	}

	deduped := r.deduper.Deduplicate(ctx, fr.Listings, plog)
	outcome.DuplicatesRemoved = deduped.Removed
	outcome.DedupMethod = deduped.Method

	listings := r.classifier.Classify(ctx, deduped.Listings, plog)
	SortByDate(listings)
	outcome.Listings = listings

	return r.finish(outcome, plog, start), plog.Events(), nil
}

func (r *Runner) finish(outcome model.PipelineOutcome, plog *pipelinelog.Log, start time.Time) model.PipelineOutcome {
	elapsed := time.Since(start)
	plog.Add(pipelinelog.Event{
		Stage:           "complete",
		NormalizedCount: pipelinelog.Count(len(outcome.Listings)),
		Duration:        elapsed,
	})
	r.metrics.ObserveRun(outcome, plog.Events(), elapsed)

	r.logger.Info("pipeline run finished",
		"run_id", outcome.RunID,
		"status", outcome.Status,
		"listings", len(outcome.Listings),
		"succeeded", len(outcome.Succeeded),
		"failed", len(outcome.Failed),
		"duplicates_removed", outcome.DuplicatesRemoved,
		"dedup_method", outcome.DedupMethod,
	)
	return outcome
}

// SortByDate orders listings newest first. Listings posted on the same day
// keep their relative order.
func SortByDate(listings []model.Listing) {
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].DatePosted > listings[j].DatePosted
	})
}
