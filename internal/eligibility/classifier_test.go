package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockCompleter returns a canned reply and records the user payload.
type MockCompleter struct {
	reply string
	err   error
	calls int
	user  string
}

func (m *MockCompleter) Complete(_ context.Context, _, user string) (string, error) {
	m.calls++
	m.user = user
	return m.reply, m.err
}

func listing(title, desc string) model.Listing {
	return model.Listing{Title: title, Description: desc, Eligibility: model.EligibilityUnknown}
}

func eligibilities(ls []model.Listing) []model.Eligibility {
	out := make([]model.Eligibility, len(ls))
	for i, l := range ls {
		out[i] = l.Eligibility
	}
	return out
}

func TestClassify_HeuristicThenAssisted(t *testing.T) {
	in := []model.Listing{
		listing("UX Researcher", "Remote, US only. Benefits included."),
		listing("User Researcher", "Work from anywhere."),
		listing("Research Ops Lead", "Candidates must be based in Germany."),
		listing("UX Research Manager", "Remote within EMEA time zones."),
	}
	mc := &MockCompleter{reply: `{"results":[
		{"index": 0, "scope": "global", "countries": []},
		{"index": 1, "scope": "restricted", "countries": ["EU", "UK", 7]}
	]}`}

	out := New(mc, discardLogger()).Classify(context.Background(), in, nil)

	require.Len(t, out, 4)
	assert.Equal(t, []model.Eligibility{
		model.EligibilityRestricted,
		model.EligibilityGlobal,
		model.EligibilityRestricted,
		model.EligibilityRestricted,
	}, eligibilities(out))
	assert.Empty(t, out[0].AllowedRegions, "heuristic matches carry no regions")
	assert.Empty(t, out[1].AllowedRegions)
	assert.Empty(t, out[2].AllowedRegions)
	assert.Equal(t, []string{"EU", "UK"}, out[3].AllowedRegions)

	var sent []classifyItem
	require.NoError(t, json.Unmarshal([]byte(mc.user), &sent))
	assert.Equal(t, []classifyItem{
		{Index: 0, Title: "User Researcher", Desc: "Work from anywhere."},
		{Index: 1, Title: "UX Research Manager", Desc: "Remote within EMEA time zones."},
	}, sent, "only listings the heuristic left open are sent, indexed by position")
}

func TestClassify_AllHeuristicSkipsService(t *testing.T) {
	mc := &MockCompleter{}
	out := New(mc, discardLogger()).Classify(context.Background(), []model.Listing{
		listing("UX Researcher (USA only)", ""),
		listing("UX Researcher", "Applicants must be authorised to work in the UK"),
	}, nil)

	assert.Equal(t, 0, mc.calls)
	assert.Equal(t, []model.Eligibility{model.EligibilityRestricted, model.EligibilityRestricted}, eligibilities(out))
}

func TestClassify_FailureLeavesPendingUnknown(t *testing.T) {
	in := []model.Listing{
		listing("UX Researcher", "US-based team"),
		listing("User Researcher", "Anywhere"),
		listing("Design Researcher", ""),
	}

	for name, mc := range map[string]*MockCompleter{
		"service error":     {err: errors.New("timeout")},
		"malformed reply":   {reply: "not json"},
		"results not array": {reply: `{"results": {"index": 0}}`},
	} {
		t.Run(name, func(t *testing.T) {
			plog := pipelinelog.New("run", nil)
			out := New(mc, discardLogger()).Classify(context.Background(), in, plog)

			assert.Equal(t, []model.Eligibility{
				model.EligibilityRestricted,
				model.EligibilityUnknown,
				model.EligibilityUnknown,
			}, eligibilities(out))

			events := plog.Events()
			require.Len(t, events, 1)
			assert.Equal(t, "classify", events[0].Stage)
			assert.NotEmpty(t, events[0].Error)
		})
	}
}

func TestClassify_TolerantReply(t *testing.T) {
	in := []model.Listing{listing("A", ""), listing("B", ""), listing("C", ""), listing("D", "")}
	mc := &MockCompleter{reply: "```json\n" + `{"results":[
		{"index": 0, "scope": "worldwide"},
		{"index": 0, "scope": "restricted", "countries": ["US"]},
		{"index": 1, "scope": "martian"},
		{"index": 9, "scope": "global"},
		{"index": "2", "scope": "global"},
		{"index": 3, "scope": "Country_Restricted", "countries": "US"}
	]}` + "\n```"}

	out := New(mc, discardLogger()).Classify(context.Background(), in, nil)

	assert.Equal(t, []model.Eligibility{
		model.EligibilityGlobal,     // first reply for an index wins
		model.EligibilityUnknown,    // unrecognised scope
		model.EligibilityUnknown,    // no valid entry
		model.EligibilityRestricted, // countries of the wrong type ignored
	}, eligibilities(out))
	assert.Empty(t, out[3].AllowedRegions)
}

func TestClassify_EveryListingResolved(t *testing.T) {
	in := make([]model.Listing, 25)
	for i := range in {
		in[i] = listing("UX Researcher", strings.Repeat("x", 500))
		in[i].Eligibility = "" // never left blank on output
	}
	out := New(&MockCompleter{reply: `{"results": []}`}, discardLogger()).Classify(context.Background(), in, nil)

	require.Len(t, out, len(in))
	for _, l := range out {
		assert.Contains(t, []model.Eligibility{model.EligibilityGlobal, model.EligibilityRestricted, model.EligibilityUnknown}, l.Eligibility)
		assert.NotNil(t, l.AllowedRegions)
	}
}

func TestClassify_TruncatesDescription(t *testing.T) {
	mc := &MockCompleter{reply: `{"results": []}`}
	New(mc, discardLogger()).Classify(context.Background(), []model.Listing{listing("UX Researcher", strings.Repeat("é", 400))}, nil)

	var sent []classifyItem
	require.NoError(t, json.Unmarshal([]byte(mc.user), &sent))
	require.Len(t, sent, 1)
	assert.Equal(t, 300, len([]rune(sent[0].Desc)))
}

func TestClassify_HeuristicScansLocation(t *testing.T) {
	in := []model.Listing{
		{Title: "UX Researcher", Location: "Remote - US only", Description: "Join our research team."},
		{Title: "UX Researcher", Location: "Remote", Description: "Join our research team."},
	}
	mc := &MockCompleter{reply: `{"results":[{"index": 0, "scope": "global"}]}`}

	out := New(mc, discardLogger()).Classify(context.Background(), in, nil)

	assert.Equal(t, []model.Eligibility{model.EligibilityRestricted, model.EligibilityGlobal}, eligibilities(out))
	assert.NotNil(t, out[0].AllowedRegions)
	assert.Empty(t, out[0].AllowedRegions)

	var sent []classifyItem
	require.NoError(t, json.Unmarshal([]byte(mc.user), &sent))
	require.Len(t, sent, 1, "the location match settles the first listing locally")
}

func TestMatchRestriction(t *testing.T) {
	tests := []struct {
		text    string
		matched bool
	}{
		{"Remote (US-only)", true},
		{"US based; USA only", true},
		{"UK only or EU only", true},
		{"You must reside in Canada", true},
		{"Must be authorized to work in the United States", true},
		{"Fully remote, worldwide", false},
		{"Focus on user research", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.matched, matchRestriction(tt.text), tt.text)
	}
}
