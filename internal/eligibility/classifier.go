package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/uxradar/internal/ai"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

const descExcerptLen = 300

// Classifier resolves the eligibility of every listing. Phrases like
// "US only" settle a listing locally; the rest go to the text service in one
// batch. Anything the service does not answer stays unknown.
type Classifier struct {
	completer model.TextCompleter
	logger    *slog.Logger
}

// New creates a Classifier.
func New(completer model.TextCompleter, logger *slog.Logger) *Classifier {
	return &Classifier{completer: completer, logger: logger}
}

// Classify returns a copy of listings with Eligibility set on each. It
// never fails.
func (c *Classifier) Classify(ctx context.Context, listings []model.Listing, plog *pipelinelog.Log) []model.Listing {
	start := time.Now()
	out := make([]model.Listing, len(listings))
	var pending []int

	for i, l := range listings {
		if matchRestriction(l.Title + " " + l.Location + " " + l.Description) {
			out[i] = l.WithEligibility(model.EligibilityRestricted, nil)
			continue
		}
		out[i] = l.WithEligibility(model.EligibilityUnknown, nil)
		pending = append(pending, i)
	}

	event := pipelinelog.Event{
		Stage:    "classify",
		RawCount: pipelinelog.Count(len(listings)),
	}

	if len(pending) > 0 {
		verdicts, err := c.assisted(ctx, out, pending)
		if err != nil {
			c.logger.Warn("assisted classification failed, leaving listings unknown",
				"pending", len(pending),
				"error", err,
			)
			event.Error = err.Error()
		}
		for j, v := range verdicts {
			i := pending[j]
			out[i] = out[i].WithEligibility(v.eligibility, v.regions)
		}
	}

	resolved := 0
	for _, l := range out {
		if l.Eligibility != model.EligibilityUnknown {
			resolved++
		}
	}
	event.NormalizedCount = pipelinelog.Count(resolved)
	event.Duration = time.Since(start)
	plog.Add(event)
	return out
}

type verdict struct {
	eligibility model.Eligibility
	regions     []string
}

type classifyItem struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

// assisted asks the service about the pending listings. Payload indices are
// positions in pending. The returned map is keyed the same way.
func (c *Classifier) assisted(ctx context.Context, listings []model.Listing, pending []int) (map[int]verdict, error) {
	system, err := ai.EligibilityPrompt(len(pending))
	if err != nil {
		return nil, err
	}

	items := make([]classifyItem, len(pending))
	for j, i := range pending {
		items[j] = classifyItem{Index: j, Title: listings[i].Title, Desc: excerpt(listings[i].Description, descExcerptLen)}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal classify payload: %w", err)
	}

	reply, err := c.completer.Complete(ctx, system, string(payload))
	if err != nil {
		return nil, err
	}
	return decodeVerdicts(reply, len(pending))
}

// decodeVerdicts parses {"results":[{"index":i,"scope":s,"countries":[...]}]}.
// Entries with a bad or out-of-range index are skipped, and the first entry
// for an index wins.
func decodeVerdicts(reply string, n int) (map[int]verdict, error) {
	var env struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSON(reply)), &env); err != nil {
		return nil, fmt.Errorf("%w: classify reply: %w", model.ErrMalformedAssistedResponse, err)
	}
	var items []json.RawMessage
	if len(env.Results) == 0 || json.Unmarshal(env.Results, &items) != nil || items == nil {
		return nil, fmt.Errorf("%w: classify reply has no results array", model.ErrMalformedAssistedResponse)
	}

	verdicts := make(map[int]verdict, len(items))
	for _, item := range items {
		var raw struct {
			Index     json.RawMessage `json:"index"`
			Scope     json.RawMessage `json:"scope"`
			Countries json.RawMessage `json:"countries"`
		}
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		idx, ok := ai.DecodeIndex(raw.Index)
		if !ok || idx < 0 || idx >= n {
			continue
		}
		if _, done := verdicts[idx]; done {
			continue
		}

		var scope string
		_ = json.Unmarshal(raw.Scope, &scope)
		v := verdict{eligibility: model.ParseEligibility(strings.ToLower(strings.TrimSpace(scope)))}
		var countries []json.RawMessage
		_ = json.Unmarshal(raw.Countries, &countries)
		for _, rc := range countries {
			var country string
			if json.Unmarshal(rc, &country) == nil && strings.TrimSpace(country) != "" {
				v.regions = append(v.regions, strings.TrimSpace(country))
			}
		}
		verdicts[idx] = v
	}
	return verdicts, nil
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
