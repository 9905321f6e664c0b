package fetch

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
	"github.com/amishk599/uxradar/internal/query"
	"github.com/amishk599/uxradar/internal/search"
)

// DefaultLimit is the per-query result cap requested from the provider.
const DefaultLimit = 10

// Searcher runs one search request. Implemented by *search.Client.
type Searcher interface {
	Search(ctx context.Context, req search.Request, plog *pipelinelog.Log) ([]model.RawResult, error)
}

// Normalizer turns a source's raw results into listings.
// Implemented by *normalize.Normalizer.
type Normalizer interface {
	NormalizeBatch(raw []model.RawResult, source string, tier model.TrustTier, plog *pipelinelog.Log) []model.Listing
}

// Orchestrator queries every curated source plus the discovery query
// concurrently. One source failing never affects the others.
type Orchestrator struct {
	searcher   Searcher
	normalizer Normalizer
	sources    []model.SourceConfig
	discovery  bool
	limit      int
	logger     *slog.Logger
}

// NewOrchestrator wires an orchestrator over the given curated sources.
// discovery toggles the extra unscoped query.
func NewOrchestrator(searcher Searcher, normalizer Normalizer, sources []model.SourceConfig, discovery bool, limit int, logger *slog.Logger) *Orchestrator {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Orchestrator{
		searcher:   searcher,
		normalizer: normalizer,
		sources:    sources,
		discovery:  discovery,
		limit:      limit,
		logger:     logger,
	}
}

// SourcesSearched is the number of queries a run issues.
func (o *Orchestrator) SourcesSearched() int {
	if o.discovery {
		return len(o.sources) + 1
	}
	return len(o.sources)
}

type task struct {
	name      string
	query     string
	tier      model.TrustTier
	discovery bool
}

type outcome struct {
	listings []model.Listing
	err      error
}

// RunAll issues every query and merges the outcomes. Listings are merged in
// source order with discovery last, regardless of completion order.
func (o *Orchestrator) RunAll(ctx context.Context, plog *pipelinelog.Log) model.FetchResult {
	tasks := make([]task, 0, o.SourcesSearched())
	for _, src := range o.sources {
		tier := src.Tier
		if tier == "" {
			tier = model.TierCurated
		}
		tasks = append(tasks, task{name: src.Name, query: query.ForSource(src), tier: tier})
	}
	if o.discovery {
		tasks = append(tasks, task{name: model.DiscoverySourceName, query: query.Discovery(), tier: model.TierDiscovery, discovery: true})
	}

	outcomes := make([]outcome, len(tasks))

	// Tasks never return an error to the group: a failed source is an
	// outcome, not a reason to cancel the siblings.
	var g errgroup.Group
	for i, t := range tasks {
		g.Go(func() error {
			raw, err := o.searcher.Search(ctx, search.Request{Label: t.name, Query: t.query, Limit: o.limit}, plog)
			if err != nil {
				outcomes[i] = outcome{err: err}
				return nil
			}
			outcomes[i] = outcome{listings: o.normalizer.NormalizeBatch(raw, t.name, t.tier, plog)}
			return nil
		})
	}
	_ = g.Wait()

	result := model.FetchResult{
		Listings:  []model.Listing{},
		Succeeded: []string{},
		Failed:    []string{},
	}
	for i, t := range tasks {
		out := outcomes[i]
		if out.err != nil {
			if errors.Is(out.err, model.ErrQuotaExhausted) {
				result.QuotaExhausted = true
			}
			result.Failed = append(result.Failed, t.name)
			plog.Add(pipelinelog.Event{Stage: "source_error", Source: t.name, Error: out.err.Error()})
			continue
		}

		if t.discovery {
			result.DiscoveryIncluded = true
		} else {
			result.Succeeded = append(result.Succeeded, t.name)
		}
		result.Listings = append(result.Listings, out.listings...)
	}

	plog.Add(pipelinelog.Event{Stage: "aggregate", NormalizedCount: pipelinelog.Count(len(result.Listings))})
	o.logger.Info("fetched sources",
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
		"discovery", result.DiscoveryIncluded,
		"listings", len(result.Listings),
	)
	return result
}
