package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
	"github.com/amishk599/uxradar/internal/retry"
)

const (
	// DefaultBaseURL is the search provider's v2 API root.
	DefaultBaseURL = "https://api.firecrawl.dev/v2"

	// providerTimeoutMillis is the provider-side scrape timeout sent with every request.
	providerTimeoutMillis = 60000
)

// Request is one search call.
type Request struct {
	Label string // source name used in logs
	Query string
	Limit int
}

type searchRequest struct {
	Query         string         `json:"query"`
	Limit         int            `json:"limit"`
	Timeout       int            `json:"timeout"`
	Sources       []searchSource `json:"sources"`
	ScrapeOptions scrapeOptions  `json:"scrapeOptions"`
}

type searchSource struct {
	Type string `json:"type"`
}

type scrapeOptions struct {
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// Client issues search requests to the provider. A 429 is retried exactly
// once after a fixed backoff; 402 maps to model.ErrQuotaExhausted; anything
// else that is not a JSON 2xx maps to model.ErrSourceUnavailable.
type Client struct {
	baseURL string
	apiKey  string
	backoff time.Duration
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a search client. backoff is the wait before the single
// rate-limit retry.
func NewClient(baseURL, apiKey string, backoff time.Duration, client *http.Client, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		backoff: backoff,
		client:  client,
		logger:  logger,
	}
}

// Search runs one query and returns the provider's raw results.
func (c *Client) Search(ctx context.Context, req Request, plog *pipelinelog.Log) ([]model.RawResult, error) {
	payload, err := json.Marshal(searchRequest{
		Query:         req.Query,
		Limit:         req.Limit,
		Timeout:       providerTimeoutMillis,
		Sources:       []searchSource{{Type: "web"}},
		ScrapeOptions: scrapeOptions{Formats: []string{"markdown"}, OnlyMainContent: true},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: marshal request: %w", req.Label, err)
	}

	plog.Add(pipelinelog.Event{Stage: "search_request", Source: req.Label, Query: req.Query})
	start := time.Now()

	retrier := retry.NewRetrier(1, c.backoff, retry.IsRateLimited, c.logger)
	retrier.OnRetry = func(_ int, _ error) {
		plog.Add(pipelinelog.Event{Stage: "search_retry", Source: req.Label})
	}

	var body []byte
	err = retrier.Do(ctx, func(ctx context.Context) error {
		var doErr error
		body, doErr = c.do(ctx, req.Label, payload)
		return doErr
	})
	if err != nil {
		err = classify(req.Label, err)
		plog.Add(pipelinelog.Event{Stage: "search_error", Source: req.Label, Error: err.Error(), Duration: time.Since(start)})
		return nil, err
	}

	results, err := decodeResults(body)
	if err != nil {
		err = fmt.Errorf("%w: search %s: %w", model.ErrSourceUnavailable, req.Label, err)
		plog.Add(pipelinelog.Event{Stage: "search_error", Source: req.Label, Error: err.Error(), Duration: time.Since(start)})
		return nil, err
	}

	plog.Add(pipelinelog.Event{
		Stage:    "search_response",
		Source:   req.Label,
		RawCount: pipelinelog.Count(len(results)),
		Duration: time.Since(start),
	})
	return results, nil
}

// do performs a single HTTP round trip. Non-2xx responses and non-JSON
// bodies come back as *model.HTTPError.
func (c *Client) do(ctx context.Context, label string, payload []byte) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("search %s: create request: %w", label, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", label, err)
	}
	defer resp.Body.Close()

	body, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search %s: read body: %w", label, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
			Err:        fmt.Errorf("search %s: unexpected status %d", label, resp.StatusCode),
		}
	}

	if ct := resp.Header.Get("Content-Type"); !isJSONContentType(ct) {
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBody),
			Err:        fmt.Errorf("search %s: unexpected content type %q", label, ct),
		}
	}

	return body, nil
}

// classify maps a failed round trip onto the two search failure classes.
func classify(label string, err error) error {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) && isQuotaSignal(httpErr) {
		return fmt.Errorf("%w: search %s: %w", model.ErrQuotaExhausted, label, err)
	}
	return fmt.Errorf("%w: %w", model.ErrSourceUnavailable, err)
}

func isQuotaSignal(e *model.HTTPError) bool {
	if e.StatusCode == http.StatusPaymentRequired {
		return true
	}
	body := strings.ToLower(e.Body)
	return strings.Contains(body, "insufficient credits") || strings.Contains(body, "credits exhausted")
}
