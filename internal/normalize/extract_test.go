package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		raw, source, want string
	}{
		{"[Hiring] UX Researcher @Acme - Remotive", "Remotive", "UX Researcher"},
		{"Senior UX Researcher | Dribbble", "Dribbble", "Senior UX Researcher"},
		{"User Researcher - We Work Remotely", "WWR", "User Researcher"},
		{"UX Researcher - Lisbon UX", "Lisbon UX", "UX Researcher"},
		{"UX Researcher - Acme", "Remotive", "UX Researcher - Acme"},
		{"  [HIRING]   Research Ops Lead ", "", "Research Ops Lead"},
		{"", "Remotive", "Untitled"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanTitle(tt.raw, tt.source))
		})
	}
}

func TestExtractCompany(t *testing.T) {
	tests := []struct {
		name, title, url, want string
	}{
		{"at symbol", "[Hiring] UX Researcher @Acme - Remotive", "", "Acme"},
		{"at word", "Senior User Researcher at Globex | We Work Remotely", "", "Globex"},
		{"second segment", "UX Researcher - Initech - Dribbble", "", "Initech"},
		{"skips generic segment", "UX Research Lead - Remote Jobs - Hooli", "", "Hooli"},
		{"remotive slug", "UX Researcher", "https://remotive.com/remote/jobs/design/umbrella-corp-12345", "Umbrella Corp"},
		{"nothing found", "UX Researcher", "https://example.com/jobs/1", "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractCompany(tt.title, tt.url))
		})
	}
}

func TestExtractSalary(t *testing.T) {
	assert.Equal(t, "$120,000 - $150,000/yr", extractSalary("Pay: $120,000 - $150,000/yr plus equity", "", ""))
	assert.Equal(t, "$90k–$110k", extractSalary("", "Comp $90k–$110k", ""))
	assert.Equal(t, "$60/hour", extractSalary("", "", "UX Researcher ($60/hour)"))
	assert.Empty(t, extractSalary("Signing bonus of $500", "", ""))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2 weeks ago", "2026-10-01", true},
		{"3 months ago", "2026-07-15", true},
		{"5h ago", "2026-10-15", true},
		{"5 mins ago", "2026-10-15", true},
		{"4 days ago", "2026-10-11", true},
		{"yesterday", "2026-10-14", true},
		{"Today", "2026-10-15", true},
		{"2026-10-10T08:00:00Z", "2026-10-10", true},
		{"2026-10-03", "2026-10-03", true},
		{"3 Oct 2026", "2026-10-03", true},
		{"3 oct", "2026-10-03", true},
		{"20 December", "2025-12-20", true},
		{"garbage", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in, fixedNow)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.UTC().Format("2006-01-02"))
			}
		})
	}
}

func TestFormatRelativeDate(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	tests := []struct{ in, want string }{
		{"2026-10-15", "Today"},
		{"2026-10-16", "Today"},
		{"2026-10-14", "Yesterday"},
		{"2026-10-11", "4d ago"},
		{"2026-10-01", "2w ago"},
		{"2026-08-01", "Aug 1"},
		{"not a date", "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatRelativeDate(tt.in, now), tt.in)
	}
}

func TestHeadKeepsRunesWhole(t *testing.T) {
	s := "ab€cd" // € is three bytes
	assert.Equal(t, "ab", head(s, 3))
	assert.Equal(t, "ab€", head(s, 5))
	assert.Equal(t, s, head(s, 100))
}
