package search

import (
	"encoding/json"
	"fmt"

	"github.com/amishk599/uxradar/internal/model"
)

// rawEnvelope holds every known top-level result location. The provider
// answers with either {"data":{"web":[...]}} or {"results":[...]}; older
// deployments also send {"data":[...]}.
type rawEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Results json.RawMessage `json:"results"`
}

// decodeResults pulls raw results out of a search response body. Only a body
// that is not a JSON object is an error; unknown shapes yield no results and
// individual entries that are not objects are skipped.
func decodeResults(body []byte) ([]model.RawResult, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode search envelope: %w", err)
	}

	items := webItems(env.Data)
	if len(items) == 0 {
		items = arrayItems(env.Results)
	}

	results := make([]model.RawResult, 0, len(items))
	for _, item := range items {
		if r, ok := toRawResult(item); ok {
			results = append(results, r)
		}
	}
	return results, nil
}

func webItems(data json.RawMessage) []json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	if items := arrayItems(data); items != nil {
		return items
	}
	var obj struct {
		Web json.RawMessage `json:"web"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	return arrayItems(obj.Web)
}

func arrayItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

// toRawResult maps one loosely typed entry onto RawResult. Fields of the
// wrong JSON type are treated as absent.
func toRawResult(item json.RawMessage) (model.RawResult, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
		return model.RawResult{}, false
	}

	var meta map[string]json.RawMessage
	if raw, ok := fields["metadata"]; ok {
		_ = json.Unmarshal(raw, &meta)
	}

	r := model.RawResult{
		URL:         firstString(fields, "url"),
		Title:       firstString(fields, "title"),
		Description: firstString(fields, "description", "snippet"),
		Body:        firstString(fields, "markdown"),
	}
	if r.URL == "" {
		r.URL = firstString(meta, "sourceURL", "url")
	}
	if r.Title == "" {
		r.Title = firstString(meta, "title", "ogTitle")
	}
	if r.Body == "" {
		if content := firstString(fields, "content"); content != "" {
			r.Body = extractText(content)
		}
	}
	r.MetadataDate = firstString(meta, "date", "publishedTime", "published_time", "article:published_time")
	return r, true
}

// firstString returns the first key in m whose value is a non-empty JSON string.
func firstString(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
