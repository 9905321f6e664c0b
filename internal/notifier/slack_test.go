package notifier

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/uxradar/internal/model"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleListing(title, company string) model.Listing {
	return model.Listing{
		ID:             "abc123",
		Title:          title,
		Company:        company,
		Location:       "Remote",
		URL:            "https://remotive.com/remote/jobs/design/ux-researcher-1",
		DatePosted:     "2026-10-14",
		SourceName:     "Remotive",
		TrustTier:      model.TierCurated,
		Eligibility:    model.EligibilityGlobal,
		AllowedRegions: []string{},
	}
}

func newTestNotifier(url string, client *http.Client) *SlackNotifier {
	n := NewSlackNotifier(url, client, discardLogger())
	n.now = func() time.Time { return fixedNow }
	n.pause = 0
	return n
}

func TestSlackNotifier_EmptyListings(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, srv.Client())

	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.Listing{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if c := calls.Load(); c != 0 {
		t.Errorf("expected 0 HTTP calls, got %d", c)
	}
}

func TestSlackNotifier_SingleDigest(t *testing.T) {
	var calls atomic.Int32
	var body []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, srv.Client())
	listings := []model.Listing{
		sampleListing("UX Researcher", "Acme"),
		sampleListing("Design Researcher", "Globex"),
		sampleListing("Research Ops Lead", "Initech"),
	}

	if err := n.Notify(listings); err != nil {
		t.Fatalf("Notify() = %v, want nil", err)
	}
	if c := calls.Load(); c != 1 {
		t.Errorf("expected 1 HTTP call for a small digest, got %d", c)
	}

	var payload slackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}

	// header + (section, context) per listing
	if len(payload.Blocks) != 1+2*len(listings) {
		t.Fatalf("expected %d blocks, got %d", 1+2*len(listings), len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" || payload.Blocks[0].Text.Text != "🔎 3 new UX research roles" {
		t.Errorf("header = %+v", payload.Blocks[0].Text)
	}
	if payload.Text != payload.Blocks[0].Text.Text {
		t.Errorf("fallback text = %q, want header text", payload.Text)
	}

	section := payload.Blocks[1]
	if section.Type != "section" || section.Text.Text != "*UX Researcher*\nAcme" {
		t.Errorf("section = %+v", section.Text)
	}
	if section.Accessory == nil || section.Accessory.URL != listings[0].URL {
		t.Errorf("accessory = %+v, want apply button", section.Accessory)
	}

	ctx := payload.Blocks[2]
	if ctx.Type != "context" || len(ctx.Elements) != 1 {
		t.Fatalf("context block = %+v", ctx)
	}
	if ctx.Elements[0].Text != "Yesterday  ·  Remotive  ·  🌍 Worldwide" {
		t.Errorf("context text = %q", ctx.Elements[0].Text)
	}
}

func TestSlackNotifier_SingularHeader(t *testing.T) {
	p := buildDigest([]model.Listing{sampleListing("UX Researcher", "Acme")}, 1, 1, 1, fixedNow)
	if p.Blocks[0].Text.Text != "🔎 1 new UX research role" {
		t.Errorf("header = %q", p.Blocks[0].Text.Text)
	}
}

func TestSlackNotifier_ChunksLargeDigest(t *testing.T) {
	var calls atomic.Int32
	var headers []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var p slackPayload
		_ = json.NewDecoder(r.Body).Decode(&p)
		headers = append(headers, p.Text)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, srv.Client())
	var listings []model.Listing
	for i := range 45 {
		listings = append(listings, sampleListing(fmt.Sprintf("UX Researcher %d", i), "Acme"))
	}

	if err := n.Notify(listings); err != nil {
		t.Fatalf("Notify() = %v", err)
	}
	if c := calls.Load(); c != 3 {
		t.Fatalf("expected 3 messages, got %d", c)
	}
	if headers[0] != "🔎 45 new UX research roles (1/3)" || headers[2] != "🔎 45 new UX research roles (3/3)" {
		t.Errorf("headers = %q", headers)
	}
}

func TestSlackNotifier_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, srv.Client())
	if err := n.Notify([]model.Listing{sampleListing("A", "X")}); err == nil {
		t.Error("expected error when all messages fail, got nil")
	}
}

func TestSlackNotifier_PartialFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, srv.Client())
	var listings []model.Listing
	for i := range 25 {
		listings = append(listings, sampleListing(fmt.Sprintf("Role %d", i), "Acme"))
	}

	if err := n.Notify(listings); err != nil {
		t.Errorf("expected nil (partial success), got %v", err)
	}
}

func TestSlackNotifier_RateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL, srv.Client())
	if err := n.Notify([]model.Listing{sampleListing("Rate Limited", "Test")}); err != nil {
		t.Fatalf("expected nil after retry, got %v", err)
	}
	if c := calls.Load(); c != 2 {
		t.Errorf("expected 2 HTTP calls (initial + retry), got %d", c)
	}
}

func TestBuildDigest_EscapesAndLabels(t *testing.T) {
	restricted := sampleListing("UX <Researcher> & Designer", "Acme")
	restricted.Eligibility = model.EligibilityRestricted
	restricted.AllowedRegions = []string{"US", "CA"}
	restricted.Salary = "$120k - $150k"
	unknown := sampleListing("UX Researcher", "Globex")
	unknown.Eligibility = model.EligibilityUnknown

	p := buildDigest([]model.Listing{restricted, unknown}, 2, 1, 1, fixedNow)

	if got := p.Blocks[1].Text.Text; got != "*UX &lt;Researcher&gt; &amp; Designer*\nAcme  ·  $120k - $150k" {
		t.Errorf("section text = %q", got)
	}
	if got := p.Blocks[2].Elements[0].Text; !strings.HasSuffix(got, "📍 US, CA") {
		t.Errorf("restricted label = %q", got)
	}
	if got := p.Blocks[4].Elements[0].Text; !strings.HasSuffix(got, "❔ Unclear") {
		t.Errorf("unknown label = %q", got)
	}
}

func TestSendTestMessage(t *testing.T) {
	rec := &recordingNotifier{}
	if err := SendTestMessage(rec); err != nil {
		t.Fatalf("SendTestMessage() = %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].Title == "" || rec.got[0].URL == "" {
		t.Errorf("notified = %+v", rec.got)
	}
}

type recordingNotifier struct {
	got []model.Listing
}

func (r *recordingNotifier) Notify(listings []model.Listing) error {
	r.got = append(r.got, listings...)
	return nil
}
