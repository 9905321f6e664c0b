package model

import (
	"strings"
	"time"
)

// CanonicalURL is the dedup key for a listing URL: trailing slashes removed,
// case folded.
func CanonicalURL(u string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(u), "/"))
}

// TrustTier decides how leniently a source's results are normalized.
type TrustTier string

const (
	TierCurated   TrustTier = "curated"
	TierDiscovery TrustTier = "discovery"
)

// Eligibility is the geographic scope of a remote listing.
type Eligibility string

const (
	EligibilityGlobal     Eligibility = "global"
	EligibilityRestricted Eligibility = "restricted"
	EligibilityUnknown    Eligibility = "unknown"
)

// ParseEligibility maps a loosely formatted scope string onto an Eligibility.
// Anything unrecognised becomes EligibilityUnknown.
func ParseEligibility(s string) Eligibility {
	switch s {
	case "global", "worldwide", "anywhere":
		return EligibilityGlobal
	case "restricted", "country_restricted", "country-restricted", "region_restricted":
		return EligibilityRestricted
	default:
		return EligibilityUnknown
	}
}

// DiscoverySourceName labels listings found by the unscoped discovery query.
const DiscoverySourceName = "Discovery"

// SourceConfig describes one curated source. Loaded once at startup.
type SourceConfig struct {
	Name      string
	SiteQuery string // e.g. "site:remotive.com/remote/jobs"
	Tier      TrustTier
}

// RawResult is one unstructured entry returned by the search provider.
type RawResult struct {
	URL          string
	Title        string
	Description  string
	Body         string // markdown or plain-text page body, may be empty
	MetadataDate string // provider-reported publish date, may be empty
}

// Listing is the canonical job listing produced by normalization.
type Listing struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Company        string      `json:"company"`
	Location       string      `json:"location"`
	Salary         string      `json:"salary,omitempty"`
	Description    string      `json:"description"`
	URL            string      `json:"url"`
	DatePosted     string      `json:"datePosted"` // YYYY-MM-DD
	SourceName     string      `json:"sourceName"`
	TrustTier      TrustTier   `json:"trustTier"`
	Eligibility    Eligibility `json:"eligibility"`
	AllowedRegions []string    `json:"allowedRegions"`
}

// DateLayout is the calendar-date format of Listing.DatePosted.
const DateLayout = "2006-01-02"

// PostedAt parses DatePosted. The zero time is returned for a malformed value.
func (l Listing) PostedAt() time.Time {
	t, err := time.Parse(DateLayout, l.DatePosted)
	if err != nil {
		return time.Time{}
	}
	return t
}

// WithEligibility returns a copy of l with its eligibility resolved. Regions
// are kept only for restricted listings.
func (l Listing) WithEligibility(e Eligibility, regions []string) Listing {
	l.Eligibility = e
	l.AllowedRegions = []string{}
	if e == EligibilityRestricted && len(regions) > 0 {
		l.AllowedRegions = append(l.AllowedRegions, regions...)
	}
	return l
}
