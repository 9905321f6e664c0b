package dedup

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/uxradar/internal/ai"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

// Result is the outcome of a deduplication pass.
type Result struct {
	Listings []model.Listing
	Removed  int
	Method   model.DedupMethod
}

// Deduplicator removes exact URL duplicates, then asks the text service to
// group near-duplicates across boards. Any failure in the second phase
// leaves the URL-deduplicated list untouched.
type Deduplicator struct {
	completer model.TextCompleter
	logger    *slog.Logger
}

// New creates a Deduplicator.
func New(completer model.TextCompleter, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{completer: completer, logger: logger}
}

// Deduplicate never fails: the worst case is URL-only deduplication.
func (d *Deduplicator) Deduplicate(ctx context.Context, listings []model.Listing, plog *pipelinelog.Log) Result {
	start := time.Now()
	unique := ByURL(listings)

	result := Result{Listings: unique, Method: model.DedupURLOnly}

	if len(unique) > 1 {
		kept, err := d.assisted(ctx, unique)
		if err != nil {
			d.logger.Warn("assisted dedup failed, keeping url-only result", "error", err)
			plog.Add(pipelinelog.Event{Stage: "dedup", Error: err.Error(), Duration: time.Since(start)})
		} else {
			result.Listings = kept
			result.Method = model.DedupAssisted
		}
	}

	result.Removed = len(listings) - len(result.Listings)
	plog.Add(pipelinelog.Event{
		Stage:           "dedup",
		RawCount:        pipelinelog.Count(len(listings)),
		NormalizedCount: pipelinelog.Count(len(result.Listings)),
		DroppedCount:    pipelinelog.Count(result.Removed),
		Duration:        time.Since(start),
	})
	return result
}

// ByURL keeps the first listing for each canonical URL, preserving order.
func ByURL(listings []model.Listing) []model.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		key := model.CanonicalURL(l.URL)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, l)
	}
	return out
}

type summary struct {
	I       int    `json:"i"`
	Title   string `json:"title"`
	Company string `json:"company"`
	URL     string `json:"url"`
	Board   string `json:"board"`
}

func (d *Deduplicator) assisted(ctx context.Context, listings []model.Listing) ([]model.Listing, error) {
	system, err := ai.DedupPrompt(len(listings))
	if err != nil {
		return nil, err
	}

	summaries := make([]summary, len(listings))
	for i, l := range listings {
		summaries[i] = summary{I: i, Title: l.Title, Company: l.Company, URL: l.URL, Board: l.SourceName}
	}
	payload, err := json.Marshal(summaries)
	if err != nil {
		return nil, fmt.Errorf("marshal dedup payload: %w", err)
	}

	reply, err := d.completer.Complete(ctx, system, string(payload))
	if err != nil {
		return nil, err
	}

	groups, err := decodeGroups(reply)
	if err != nil {
		return nil, err
	}

	discard := selectDiscards(groups, len(listings))
	kept := make([]model.Listing, 0, len(listings)-len(discard))
	for i, l := range listings {
		if !discard[i] {
			kept = append(kept, l)
		}
	}
	return kept, nil
}
