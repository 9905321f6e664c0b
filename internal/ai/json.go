package ai

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

var codeFenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// ExtractJSON returns the JSON object inside a model reply. Markdown code
// fences and any prose around the outermost braces are removed. The result
// is not validated.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if m := codeFenceRe.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// DecodeIndex reads a list index from a model reply. Only a JSON number
// with no fractional part is accepted.
func DecodeIndex(raw json.RawMessage) (int, bool) {
	var p *float64
	if err := json.Unmarshal(raw, &p); err != nil || p == nil {
		return 0, false
	}
	f := *p
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}
