package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/normalize"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// listingsPerMessage keeps a digest message under Slack's 50-block limit.
const listingsPerMessage = 20

// SlackNotifier posts listing digests to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
	pause      time.Duration // gap between digest messages
}

// NewSlackNotifier returns a notifier that posts digests to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		now:        time.Now,
		pause:      500 * time.Millisecond,
	}
}

// Notify sends the listings as one or more digest messages.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(listings []model.Listing) error {
	if len(listings) == 0 {
		return nil
	}

	chunks := chunk(listings, listingsPerMessage)
	failures := 0
	for i, c := range chunks {
		if i > 0 {
			time.Sleep(s.pause)
		}
		payload := buildDigest(c, len(listings), i+1, len(chunks), s.now())
		if err := s.sendMessage(payload); err != nil {
			s.logger.Error("slack notification failed", "part", i+1, "listings", len(c), "error", err)
			failures++
		}
	}

	if failures == len(chunks) {
		return fmt.Errorf("all %d slack messages failed", failures)
	}
	s.logger.Info("slack digest complete", "listings", len(listings), "messages", len(chunks), "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(payload slackPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Text   string       `json:"text"` // notification fallback
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type      string       `json:"type"`
	Text      *slackText   `json:"text,omitempty"`
	Elements  []slackText  `json:"elements,omitempty"`
	Accessory *slackButton `json:"accessory,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackButton struct {
	Type string    `json:"type"`
	Text slackText `json:"text"`
	URL  string    `json:"url"`
}

// SendTestMessage sends a dummy listing to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	test := model.Listing{
		ID:             "test-001",
		Title:          "Test Notification: Integration Verified",
		Company:        "uxradar",
		Location:       "Remote",
		URL:            "https://example.com/jobs/ux-researcher",
		DatePosted:     time.Now().UTC().Format(model.DateLayout),
		SourceName:     "test",
		TrustTier:      model.TierCurated,
		Eligibility:    model.EligibilityGlobal,
		AllowedRegions: []string{},
	}
	return n.Notify([]model.Listing{test})
}

func chunk(listings []model.Listing, size int) [][]model.Listing {
	var out [][]model.Listing
	for start := 0; start < len(listings); start += size {
		end := min(start+size, len(listings))
		out = append(out, listings[start:end])
	}
	return out
}

func eligibilityLabel(l model.Listing) string {
	switch l.Eligibility {
	case model.EligibilityGlobal:
		return "🌍 Worldwide"
	case model.EligibilityRestricted:
		if len(l.AllowedRegions) > 0 {
			return "📍 " + strings.Join(l.AllowedRegions, ", ")
		}
		return "📍 Restricted"
	default:
		return "❔ Unclear"
	}
}

// escape neutralizes the three characters Slack treats as control sequences.
func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}

func buildDigest(listings []model.Listing, total, part, parts int, now time.Time) slackPayload {
	heading := fmt.Sprintf("🔎 %d new UX research role", total)
	if total != 1 {
		heading += "s"
	}
	if parts > 1 {
		heading += fmt.Sprintf(" (%d/%d)", part, parts)
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackText{Type: "plain_text", Text: heading}},
	}

	for _, l := range listings {
		line := fmt.Sprintf("*%s*\n%s", escape(l.Title), escape(l.Company))
		if l.Salary != "" {
			line += "  ·  " + escape(l.Salary)
		}
		blocks = append(blocks,
			slackBlock{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: line},
				Accessory: &slackButton{
					Type: "button",
					Text: slackText{Type: "plain_text", Text: "Apply"},
					URL:  l.URL,
				},
			},
			slackBlock{
				Type: "context",
				Elements: []slackText{
					{Type: "mrkdwn", Text: strings.Join([]string{
						normalize.FormatRelativeDate(l.DatePosted, now),
						escape(l.SourceName),
						eligibilityLabel(l),
					}, "  ·  ")},
				},
			},
		)
	}

	return slackPayload{Text: heading, Blocks: blocks}
}
