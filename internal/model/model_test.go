package model

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name string
		fr   FetchResult
		want Status
	}{
		{"all good", FetchResult{Succeeded: []string{"Remotive"}, DiscoveryIncluded: true}, StatusOK},
		{"one failed", FetchResult{Succeeded: []string{"Remotive"}, Failed: []string{"Dribbble"}, DiscoveryIncluded: true}, StatusPartial},
		{"discovery only", FetchResult{Failed: []string{"Remotive"}, DiscoveryIncluded: true}, StatusPartial},
		{"everything failed", FetchResult{Failed: []string{"Remotive", DiscoverySourceName}}, StatusAllFailed},
		{"quota with nothing fetched", FetchResult{Failed: []string{"Remotive"}, QuotaExhausted: true}, StatusQuotaExhausted},
		{
			"quota after some results",
			FetchResult{Listings: []Listing{{ID: "a"}}, Succeeded: []string{"Remotive"}, Failed: []string{"Dribbble"}, QuotaExhausted: true},
			StatusPartial,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.fr); got != tt.want {
				t.Errorf("ClassifyStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseEligibility(t *testing.T) {
	tests := map[string]Eligibility{
		"global":             EligibilityGlobal,
		"worldwide":          EligibilityGlobal,
		"restricted":         EligibilityRestricted,
		"country_restricted": EligibilityRestricted,
		"unknown":            EligibilityUnknown,
		"":                   EligibilityUnknown,
		"GLOBAL":             EligibilityUnknown,
	}
	for in, want := range tests {
		if got := ParseEligibility(in); got != want {
			t.Errorf("ParseEligibility(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithEligibility(t *testing.T) {
	base := Listing{ID: "a", AllowedRegions: []string{"stale"}}

	r := base.WithEligibility(EligibilityRestricted, []string{"US", "CA"})
	if r.Eligibility != EligibilityRestricted || len(r.AllowedRegions) != 2 {
		t.Errorf("restricted = %+v", r)
	}

	g := base.WithEligibility(EligibilityGlobal, []string{"US"})
	if g.AllowedRegions == nil || len(g.AllowedRegions) != 0 {
		t.Errorf("global regions = %v, want empty non-nil", g.AllowedRegions)
	}

	if len(base.AllowedRegions) != 1 || base.AllowedRegions[0] != "stale" {
		t.Errorf("original mutated: %v", base.AllowedRegions)
	}
}

func TestCanonicalURL(t *testing.T) {
	tests := map[string]string{
		"https://Remotive.com/Jobs/123/": "https://remotive.com/jobs/123",
		"  https://a.io/x//  ":           "https://a.io/x",
		"https://a.io/x?ref=1":           "https://a.io/x?ref=1",
	}
	for in, want := range tests {
		if got := CanonicalURL(in); got != want {
			t.Errorf("CanonicalURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPostedAt(t *testing.T) {
	l := Listing{DatePosted: "2026-10-14"}
	if want := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC); !l.PostedAt().Equal(want) {
		t.Errorf("PostedAt() = %v, want %v", l.PostedAt(), want)
	}
	if !(Listing{DatePosted: "last week"}).PostedAt().IsZero() {
		t.Error("malformed date should give the zero time")
	}
}

func TestHTTPError(t *testing.T) {
	err := fmt.Errorf("search Remotive: %w", &HTTPError{StatusCode: 402, Err: ErrQuotaExhausted})

	if !errors.Is(err, ErrQuotaExhausted) {
		t.Error("errors.Is(ErrQuotaExhausted) = false")
	}
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != 402 {
		t.Errorf("errors.As = %v", he)
	}
	if got := (&HTTPError{StatusCode: 503}).Error(); got != "HTTP 503" {
		t.Errorf("Error() = %q", got)
	}
}
