package dedup

import (
	"encoding/json"
	"fmt"

	"github.com/amishk599/uxradar/internal/ai"
	"github.com/amishk599/uxradar/internal/model"
)

// group is one duplicate cluster as reported by the text service. Indices
// are integers but not yet range-checked.
type group struct {
	keep    int
	discard []int
}

// decodeGroups parses {"groups":[{"keep":k,"discard":[...]}]}. A reply
// without a groups array is malformed. Individual groups or indices of the
// wrong type are skipped.
func decodeGroups(reply string) ([]group, error) {
	var env struct {
		Groups json.RawMessage `json:"groups"`
	}
	if err := json.Unmarshal([]byte(ai.ExtractJSON(reply)), &env); err != nil {
		return nil, fmt.Errorf("%w: dedup reply: %w", model.ErrMalformedAssistedResponse, err)
	}

	var items []json.RawMessage
	if len(env.Groups) == 0 || json.Unmarshal(env.Groups, &items) != nil || items == nil {
		return nil, fmt.Errorf("%w: dedup reply has no groups array", model.ErrMalformedAssistedResponse)
	}

	groups := make([]group, 0, len(items))
	for _, item := range items {
		var raw struct {
			Keep    json.RawMessage `json:"keep"`
			Discard json.RawMessage `json:"discard"`
		}
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		keep, ok := ai.DecodeIndex(raw.Keep)
		if !ok {
			continue
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(raw.Discard, &entries); err != nil {
			continue
		}
		g := group{keep: keep}
		for _, e := range entries {
			if idx, ok := ai.DecodeIndex(e); ok {
				g.discard = append(g.discard, idx)
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// selectDiscards returns the union of every group's discard indices for a
// list of n listings. Out-of-range indices are ignored, as is a group whose
// keep is out of range, and a group never discards its own keep.
func selectDiscards(groups []group, n int) map[int]bool {
	inRange := func(i int) bool { return i >= 0 && i < n }

	discard := make(map[int]bool)
	for _, g := range groups {
		if !inRange(g.keep) {
			continue
		}
		for _, idx := range g.discard {
			if inRange(idx) && idx != g.keep {
				discard[idx] = true
			}
		}
	}
	return discard
}
