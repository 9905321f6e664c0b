package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// relativeUnits matches a unit word or abbreviation. Longer forms come first
// so "3 months ago" does not stop at "m".
const relativeUnits = `minutes?|mins?|hours?|hrs?|days?|weeks?|wks?|months?|mos?|[mhdw]`

var (
	relativeRe = regexp.MustCompile(`(\d+)\s*(` + relativeUnits + `)\s+ago`)
	dayMonthRe = regexp.MustCompile(`^(\d{1,2})\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?(?:\s+(\d{4}))?$`)

	contextDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:posted|published|listed|date)\s*:?\s*(\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(?i)(?:posted|published|listed|date)\s*:?\s*(\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)\w*(?:\s+\d{4})?)`),
		regexp.MustCompile(`(?i)(?:posted|published|listed)\s*:?\s*(\d+\s*(?:` + relativeUnits + `)\s+ago)`),
		regexp.MustCompile(`(?i)(?:posted|published|listed)\s*:?\s*(today|yesterday)\b`),
	}
	bareRelativeRe = regexp.MustCompile(`(?i)(\d+\s*(?:` + relativeUnits + `)\s+ago)`)
)

// bareRelativeWindow bounds how far into the body a context-free relative
// phrase is trusted.
const bareRelativeWindow = 500

// maxRelativeAmount caps N in "N units ago". Anything larger is decades old
// whatever the unit, and the cap keeps the duration arithmetic in range.
const maxRelativeAmount = 100000

// futureSkew is how far past now a parsed date may land before it is treated
// as bogus. Provider dates carry time zones, listings are day-granular.
const futureSkew = 24 * time.Hour

// ParseDate interprets a date string found in a listing. Relative phrases
// ("3 days ago", "5h ago", "today") resolve against now. Returns false when
// nothing could be parsed.
func ParseDate(raw string, now time.Time) (time.Time, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return time.Time{}, false
	}

	if m := relativeRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return subtract(now, n, m[2]), true
		}
	}

	switch text {
	case "today", "just posted", "just now":
		return now, true
	case "yesterday":
		return now.AddDate(0, 0, -1), true
	}

	if m := dayMonthRe.FindStringSubmatch(text); m != nil {
		if t, ok := dayMonth(m[1], m[2], m[3], now); ok {
			return t, true
		}
	}

	t, err := dateparse.ParseIn(strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func subtract(now time.Time, n int, unit string) time.Time {
	n = min(n, maxRelativeAmount)
	switch {
	case unit == "m" || strings.HasPrefix(unit, "min"):
		return now.Add(-time.Duration(n) * time.Minute)
	case unit == "h" || strings.HasPrefix(unit, "h"):
		return now.Add(-time.Duration(n) * time.Hour)
	case unit == "d" || strings.HasPrefix(unit, "day"):
		return now.AddDate(0, 0, -n)
	case unit == "w" || strings.HasPrefix(unit, "w"):
		return now.AddDate(0, 0, -7*n)
	default: // months, mos
		return now.AddDate(0, -n, 0)
	}
}

// dayMonth builds a date from "3 may [2024]". A yearless date that would land
// in the future is taken to mean last year.
func dayMonth(day, month, year string, now time.Time) (time.Time, bool) {
	y := now.Year()
	if year != "" {
		y, _ = strconv.Atoi(year)
	}
	t, err := time.Parse("2 Jan 2006", fmt.Sprintf("%s %s %d", day, strings.ToUpper(month[:1])+month[1:3], y))
	if err != nil {
		return time.Time{}, false
	}
	if year == "" && t.After(now) {
		t = t.AddDate(-1, 0, 0)
	}
	return t, true
}

// extractDate finds the posting date of a result. Priority: provider
// metadata, then a date phrase with posting context anywhere in the text,
// then a bare relative phrase near the top of the text. Candidates dated
// after now are skipped.
func extractDate(metadataDate, text string, now time.Time) (time.Time, bool) {
	if metadataDate != "" {
		if t, ok := ParseDate(metadataDate, now); ok && !inFuture(t, now) {
			return t, true
		}
	}

	for _, p := range contextDatePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if t, ok := ParseDate(m[1], now); ok && !inFuture(t, now) {
				return t, true
			}
		}
	}

	if m := bareRelativeRe.FindStringSubmatch(head(text, bareRelativeWindow)); m != nil {
		if t, ok := ParseDate(m[1], now); ok && !inFuture(t, now) {
			return t, true
		}
	}

	return time.Time{}, false
}

func inFuture(t, now time.Time) bool {
	return t.After(now.Add(futureSkew))
}

// withinRecency reports whether t falls on or after the calendar day that is
// days before now.
func withinRecency(t, now time.Time, days int) bool {
	y, m, d := now.UTC().Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	return !t.UTC().Before(cutoff)
}

// FormatRelativeDate renders a YYYY-MM-DD date for display.
func FormatRelativeDate(date string, now time.Time) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "Unknown"
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(t).Hours() / 24)

	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	case days < 30:
		return fmt.Sprintf("%dw ago", days/7)
	default:
		return t.Format("Jan 2")
	}
}

// head returns at most n bytes of s without splitting a UTF-8 sequence.
func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
