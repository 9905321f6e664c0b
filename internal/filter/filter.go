package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/amishk599/uxradar/internal/model"
)

// Options are the caller-side view controls for a result list.
type Options struct {
	GlobalOnly    bool     // hide restricted and unknown listings
	Sources       []string // source names to keep; empty keeps all
	MaxAgeDays    int      // 0 keeps all dates
	TitleKeywords []string // any must appear in the title; empty keeps all
}

// ListingFilter matches listings against Options. Matching is
// case-insensitive; empty option lists are treated as "match all".
type ListingFilter struct {
	opts   Options
	cutoff string // YYYY-MM-DD, empty when MaxAgeDays is 0
}

// NewListingFilter builds a filter. now anchors the date range.
func NewListingFilter(opts Options, now time.Time) *ListingFilter {
	f := &ListingFilter{opts: opts}
	if opts.MaxAgeDays > 0 {
		f.cutoff = now.UTC().AddDate(0, 0, -opts.MaxAgeDays).Format(model.DateLayout)
	}
	return f
}

// Match reports whether l passes every configured option.
func (f *ListingFilter) Match(l model.Listing) bool {
	if f.opts.GlobalOnly && l.Eligibility != model.EligibilityGlobal {
		return false
	}

	if len(f.opts.Sources) > 0 {
		matched := false
		for _, s := range f.opts.Sources {
			if strings.EqualFold(s, l.SourceName) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if f.cutoff != "" && l.DatePosted < f.cutoff {
		return false
	}

	if len(f.opts.TitleKeywords) > 0 {
		titleLower := strings.ToLower(l.Title)
		matched := false
		for _, kw := range f.opts.TitleKeywords {
			if strings.Contains(titleLower, strings.ToLower(kw)) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// Apply returns the listings f matches, in order.
func Apply(listings []model.Listing, f model.ListingFilter) []model.Listing {
	out := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if f.Match(l) {
			out = append(out, l)
		}
	}
	return out
}

// SortOrder names a result ordering.
type SortOrder string

const (
	SortByDate    SortOrder = "date"    // newest first
	SortByCompany SortOrder = "company" // A to Z, newest first within a company
)

// ParseSortOrder validates a user-supplied sort name.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case SortByDate, "":
		return SortByDate, nil
	case SortByCompany:
		return SortByCompany, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (want date or company)", s)
	}
}

// Sort orders listings in place.
func Sort(listings []model.Listing, order SortOrder) {
	sort.SliceStable(listings, func(i, j int) bool {
		a, b := listings[i], listings[j]
		if order == SortByCompany {
			ca, cb := strings.ToLower(a.Company), strings.ToLower(b.Company)
			if ca != cb {
				return ca < cb
			}
		}
		return a.DatePosted > b.DatePosted
	})
}
