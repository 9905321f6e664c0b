package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

// boardNames are job-board labels that providers append to page titles.
var boardNames = []string{"remotive", "dribbble", "we work remotely", "weworkremotely", "user interviews", "lisbon ux"}

var (
	hiringPrefixRe = regexp.MustCompile(`(?i)^\s*\[hiring\]\s*`)
	lastSegmentRe  = regexp.MustCompile(`\s*[-|–·•]\s*([^-|–·•]+)$`)
	atSuffixRe     = regexp.MustCompile(`\s*@\s*[^@]+$`)

	atSymbolCompanyRe = regexp.MustCompile(`@\s*(.+?)(?:\s*[-|–•·]|$)`)
	atWordCompanyRe   = regexp.MustCompile(`(?i)\bat\s+(.+?)(?:\s*[-|–•·]|$)`)
	titleSplitRe      = regexp.MustCompile(`\s*[-|–•·]\s*`)
	genericSegmentRe  = regexp.MustCompile(`(?i)remote|job|career|hire|hiring|remotive|dribbble|weworkremotely|we work remotely|research`)
	remotiveSlugRe    = regexp.MustCompile(`(?i)remotive\.com/remote(?:/jobs)?/[^/]+/([^/?#]+?)(?:-\d+)?/?$`)

	salaryRangeRe  = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?k?\s*(?:-|–|to)\s*\$[\d,]+(?:\.\d+)?k?(?:\s*(?:/yr|/year|/hr|/hour|per year|per hour|annually|a year))?`)
	salarySingleRe = regexp.MustCompile(`(?i)\$[\d,]+(?:\.\d+)?k?\s*(?:/yr|/year|/hr|/hour|per year|per hour|annually|a year)`)
)

const (
	maxCompanyLen    = 50
	salaryBodyWindow = 2000
	unknownCompany   = "Unknown"
	untitled         = "Untitled"
)

// cleanTitle strips the "[Hiring]" prefix, a trailing board label, and a
// trailing "@Company" from a raw page title.
func cleanTitle(raw, source string) string {
	title := strings.TrimSpace(hiringPrefixRe.ReplaceAllString(raw, ""))

	if m := lastSegmentRe.FindStringSubmatchIndex(title); m != nil {
		if isBoardName(title[m[2]:m[3]], source) {
			title = strings.TrimSpace(title[:m[0]])
		}
	}

	if stripped := strings.TrimSpace(atSuffixRe.ReplaceAllString(title, "")); stripped != "" {
		title = stripped
	}

	if title == "" {
		return untitled
	}
	return title
}

func isBoardName(s, source string) bool {
	s = strings.TrimSpace(s)
	if source != "" && strings.EqualFold(s, source) {
		return true
	}
	for _, b := range boardNames {
		if strings.EqualFold(s, b) {
			return true
		}
	}
	return false
}

// extractCompany guesses the hiring company from the raw title, falling back
// to the URL slug for boards that encode it there.
func extractCompany(rawTitle, rawURL string) string {
	title := strings.TrimSpace(hiringPrefixRe.ReplaceAllString(rawTitle, ""))

	if m := atSymbolCompanyRe.FindStringSubmatch(title); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" {
			return c
		}
	}
	if m := atWordCompanyRe.FindStringSubmatch(title); m != nil {
		if c := strings.TrimSpace(m[1]); c != "" && len(c) < maxCompanyLen {
			return c
		}
	}

	parts := titleSplitRe.Split(title, -1)
	for _, i := range []int{1, 2} {
		if i >= len(parts) {
			break
		}
		p := strings.TrimSpace(parts[i])
		if p != "" && len(p) < maxCompanyLen && !genericSegmentRe.MatchString(p) {
			return p
		}
	}

	if m := remotiveSlugRe.FindStringSubmatch(rawURL); m != nil {
		return titleCase(strings.ReplaceAll(m[1], "-", " "))
	}

	return unknownCompany
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// extractSalary looks for a dollar range first, then a single amount that
// carries a period qualifier. Bare dollar figures are ignored.
func extractSalary(body, description, title string) string {
	text := head(body, salaryBodyWindow) + " " + description + " " + title
	if m := salaryRangeRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if m := salarySingleRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}
