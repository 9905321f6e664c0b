package normalize

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

const (
	// DefaultRecencyDays is the default recency window.
	DefaultRecencyDays = 14

	descriptionFallbackLen = 300
	remoteLocation         = "Remote"
)

// Normalizer turns raw search results into listings, dropping junk,
// irrelevant and stale entries.
type Normalizer struct {
	recencyDays int
	now         func() time.Time
	logger      *slog.Logger
}

// New creates a Normalizer. now may be nil, in which case time.Now is used.
func New(recencyDays int, now func() time.Time, logger *slog.Logger) *Normalizer {
	if recencyDays <= 0 {
		recencyDays = DefaultRecencyDays
	}
	if now == nil {
		now = time.Now
	}
	return &Normalizer{recencyDays: recencyDays, now: now, logger: logger}
}

// Normalize converts one raw result. It returns either a listing and an
// empty drop reason, or the reason the result was discarded. Filters run in
// a fixed order and the first failing one decides the reason.
func (n *Normalizer) Normalize(r model.RawResult, source string, tier model.TrustTier) (model.Listing, model.DropReason) {
	rawURL := strings.TrimSpace(r.URL)
	if rawURL == "" {
		return model.Listing{}, model.DropNoURL
	}
	if isJunkURL(rawURL) {
		return model.Listing{}, model.DropJunkURL
	}
	if isJunkTitle(r.Title) {
		return model.Listing{}, model.DropJunkTitle
	}
	if !isRelevant(r.Title, rawURL) {
		return model.Listing{}, model.DropTitleIrrelevant
	}

	now := n.now().UTC()
	text := r.Body
	if text == "" {
		text = r.Description
	}

	posted, found := extractDate(r.MetadataDate, text, now)
	switch {
	case !found && tier == model.TierCurated:
		posted = now
	case !found:
		return model.Listing{}, model.DropNoDate
	case !withinRecency(posted, now, n.recencyDays):
		return model.Listing{}, model.DropTooOld
	}

	description := strings.TrimSpace(r.Description)
	if description == "" {
		description = strings.TrimSpace(head(r.Body, descriptionFallbackLen))
	}

	return model.Listing{
		ID:             listingID(rawURL),
		Title:          cleanTitle(r.Title, source),
		Company:        extractCompany(r.Title, rawURL),
		Location:       remoteLocation,
		Salary:         extractSalary(r.Body, r.Description, r.Title),
		Description:    description,
		URL:            rawURL,
		DatePosted:     posted.UTC().Format(model.DateLayout),
		SourceName:     source,
		TrustTier:      tier,
		Eligibility:    model.EligibilityUnknown,
		AllowedRegions: []string{},
	}, ""
}

// NormalizeBatch normalizes every result of one source and records the
// outcome in plog.
func (n *Normalizer) NormalizeBatch(raw []model.RawResult, source string, tier model.TrustTier, plog *pipelinelog.Log) []model.Listing {
	listings := make([]model.Listing, 0, len(raw))
	reasons := make(map[string]int)

	for _, r := range raw {
		l, reason := n.Normalize(r, source, tier)
		if reason != "" {
			reasons[string(reason)]++
			continue
		}
		listings = append(listings, l)
	}

	dropped := len(raw) - len(listings)
	if dropped > 0 {
		plog.Add(pipelinelog.Event{
			Stage:        "normalize_drops",
			Source:       source,
			DroppedCount: pipelinelog.Count(dropped),
			DropReasons:  reasons,
		})
	}
	plog.Add(pipelinelog.Event{
		Stage:           "normalize",
		Source:          source,
		RawCount:        pipelinelog.Count(len(raw)),
		NormalizedCount: pipelinelog.Count(len(listings)),
		DroppedCount:    pipelinelog.Count(dropped),
	})

	if n.logger != nil {
		n.logger.Debug("normalized source results",
			"source", source,
			"raw", len(raw),
			"kept", len(listings),
		)
	}
	return listings
}

// listingID derives a stable identifier from the canonical URL.
func listingID(rawURL string) string {
	return strconv.FormatUint(xxhash.Sum64String(model.CanonicalURL(rawURL)), 36)
}
