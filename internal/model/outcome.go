package model

// DropReason explains why a raw result did not become a Listing.
type DropReason string

const (
	DropNoURL           DropReason = "no_url"
	DropJunkURL         DropReason = "junk_url"
	DropJunkTitle       DropReason = "junk_title"
	DropTitleIrrelevant DropReason = "title_irrelevant"
	DropNoDate          DropReason = "no_date"
	DropTooOld          DropReason = "too_old"
)

// DedupMethod reports which deduplication phases actually ran.
type DedupMethod string

const (
	DedupURLOnly  DedupMethod = "url-only"
	DedupAssisted DedupMethod = "assisted"
)

// FetchResult is what the fetch orchestrator hands to the rest of the pipeline.
type FetchResult struct {
	Listings          []Listing
	Succeeded         []string // curated sources only
	Failed            []string // curated and discovery
	DiscoveryIncluded bool
	QuotaExhausted    bool
}

// Status summarizes a run for user-facing reporting.
type Status string

const (
	StatusOK             Status = "ok"
	StatusPartial        Status = "partial"
	StatusAllFailed      Status = "all_failed"
	StatusQuotaExhausted Status = "quota_exhausted"
)

// PipelineOutcome is the aggregate result of one pipeline run.
type PipelineOutcome struct {
	RunID             string
	Listings          []Listing // sorted by DatePosted, newest first
	SourcesSearched   int
	Succeeded         []string
	Failed            []string
	DiscoveryIncluded bool
	QuotaExhausted    bool
	DuplicatesRemoved int
	DedupMethod       DedupMethod
	Status            Status
}

// ClassifyStatus derives the reporting status from a fetch result.
// Quota exhaustion only counts as fatal when nothing at all was fetched.
func ClassifyStatus(fr FetchResult) Status {
	switch {
	case fr.QuotaExhausted && len(fr.Listings) == 0:
		return StatusQuotaExhausted
	case len(fr.Succeeded) == 0 && !fr.DiscoveryIncluded:
		return StatusAllFailed
	case len(fr.Failed) > 0:
		return StatusPartial
	default:
		return StatusOK
	}
}
