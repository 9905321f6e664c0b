package normalize

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

var junkURLPatterns = compileAll(
	`\.pdf$`,
	`\.docx?$`,
	`wikipedia\.org`,
	`medium\.com`,
	`linkedin\.com/pulse`,
	`youtube\.com`,
	`reddit\.com`,
	`quora\.com`,
	`arxiv\.org`,
	`scholar\.google`,
	`glassdoor\.com/(?:salary|salaries|interview)`,
	`indeed\.com/q-`,
	`news\.`,
	`blog\.`,
	`/search\?`,
	`/search$`,
	`/jobs/new$`,
	`/remote-jobs/new$`,
)

var junkTitlePatterns = compileAll(
	`\[pdf\]`,
	`how to`,
	`what is`,
	`guide to`,
	`tips for`,
	`course`,
	`certification`,
	`bootcamp`,
	`salary report`,
	`salaries`,
	`interview questions`,
)

var relevancePatterns = compileAll(
	`ux\s*research`,
	`user\s*research`,
	`ux\s*researcher`,
	`user\s*researcher`,
	`user\s*experience\s*research`,
	`design\s*research`,
	`usability`,
	`research\s*ops`,
	`research\s*operations`,
	`research\s*manager`,
	`research\s*lead`,
	`research\s*director`,
	`research\s*analyst`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func isJunkURL(u string) bool {
	return matchesAny(junkURLPatterns, u)
}

func isJunkTitle(title string) bool {
	return matchesAny(junkTitlePatterns, title)
}

// isRelevant checks the title together with the URL's last path segment, so
// a terse title like "Apply now" still passes when the slug names the role.
func isRelevant(title, rawURL string) bool {
	return matchesAny(relevancePatterns, title+" "+urlSlugWords(rawURL))
}

// urlSlugWords returns the last path segment of rawURL with dashes and
// underscores turned into spaces.
func urlSlugWords(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	seg := path.Base(p)
	return strings.NewReplacer("-", " ", "_", " ").Replace(seg)
}
