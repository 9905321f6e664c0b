package eligibility

import "regexp"

// restrictionPhrases mark a listing as country-restricted. They do not say
// which regions are allowed.
var restrictionPhrases = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bus[- ]only\b`),
	regexp.MustCompile(`(?i)\busa only\b`),
	regexp.MustCompile(`(?i)\bunited states only\b`),
	regexp.MustCompile(`(?i)\bus[-\s]based\b`),
	regexp.MustCompile(`(?i)\buk only\b`),
	regexp.MustCompile(`(?i)\beu only\b`),
	regexp.MustCompile(`(?i)\bmust be based in\b`),
	regexp.MustCompile(`(?i)\bmust reside in\b`),
	regexp.MustCompile(`(?i)\bauthori[sz]ed to work in\b`),
}

// matchRestriction reports whether text contains a restriction phrase.
func matchRestriction(text string) bool {
	for _, re := range restrictionPhrases {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
