package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/uxradar/internal/filter"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipelinelog"
)

// Error codes returned in the response envelope.
const (
	CodeQuotaExhausted   = "QUOTA_EXHAUSTED"
	CodeAllSourcesFailed = "ALL_SOURCES_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeBadRequest       = "BAD_REQUEST"
)

// Runner executes one pipeline run. Implemented by *pipeline.Runner.
type Runner interface {
	Run(ctx context.Context) (model.PipelineOutcome, []pipelinelog.Event, error)
}

// SearchResponse is the JSON envelope for /api/search.
type SearchResponse struct {
	Success bool            `json:"success"`
	Results []model.Listing `json:"results"`
	Meta    Meta            `json:"meta"`
	Error   *APIError       `json:"error,omitempty"`
	Debug   []DebugEvent    `json:"_debug,omitempty"`
}

// Meta summarizes how the run went.
type Meta struct {
	RunID             string            `json:"runId,omitempty"`
	TotalResults      int               `json:"totalResults"`
	SourcesSearched   int               `json:"sourcesSearched"`
	SourcesSucceeded  []string          `json:"sourcesSucceeded"`
	SourcesFailed     []string          `json:"sourcesFailed"`
	DiscoveryIncluded bool              `json:"discoveryIncluded"`
	DuplicatesRemoved int               `json:"duplicatesRemoved"`
	DedupMethod       model.DedupMethod `json:"dedupMethod"`
}

// APIError is the machine-readable failure carried by unsuccessful responses.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DebugEvent is the wire form of a pipeline log event.
type DebugEvent struct {
	Stage           string         `json:"stage"`
	Source          string         `json:"source,omitempty"`
	Query           string         `json:"query,omitempty"`
	RawCount        *int           `json:"rawResultCount,omitempty"`
	NormalizedCount *int           `json:"normalisedCount,omitempty"`
	DroppedCount    *int           `json:"droppedCount,omitempty"`
	DropReasons     map[string]int `json:"dropReasons,omitempty"`
	Error           string         `json:"error,omitempty"`
	DurationMs      int64          `json:"durationMs,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// SearchHandler serves pipeline runs over HTTP.
type SearchHandler struct {
	runner Runner
	debug  bool
	logger *slog.Logger
	now    func() time.Time
}

// NewSearchHandler creates a handler. With debug set, responses carry the
// run's pipeline log under _debug.
func NewSearchHandler(runner Runner, debug bool, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{runner: runner, debug: debug, logger: logger, now: time.Now}
}

// Search handles POST and GET /api/search. Optional query parameters narrow
// the results: eligibility=global, source (repeatable), days, sort.
func (h *SearchHandler) Search(c *gin.Context) {
	view, err := parseView(c, h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, SearchResponse{
			Results: []model.Listing{},
			Meta:    Meta{SourcesSucceeded: []string{}, SourcesFailed: []string{}, DedupMethod: model.DedupURLOnly},
			Error:   &APIError{Code: CodeBadRequest, Message: err.Error()},
		})
		return
	}

	outcome, events, err := h.runner.Run(c.Request.Context())
	status, resp := buildResponse(outcome, err)

	if err != nil {
		_ = c.Error(err)
		h.logger.Error("search run failed", "run_id", outcome.RunID, "error", err)
	}
	if resp.Success {
		resp.Results = filter.Apply(resp.Results, view.filter)
		filter.Sort(resp.Results, view.sort)
		resp.Meta.TotalResults = len(resp.Results)
	}
	if h.debug {
		resp.Debug = toDebugEvents(events)
	}

	c.JSON(status, resp)
}

// buildResponse maps a run onto an HTTP status and envelope.
func buildResponse(o model.PipelineOutcome, runErr error) (int, SearchResponse) {
	resp := SearchResponse{
		Results: []model.Listing{},
		Meta: Meta{
			RunID:             o.RunID,
			SourcesSearched:   o.SourcesSearched,
			SourcesSucceeded:  nonNil(o.Succeeded),
			SourcesFailed:     nonNil(o.Failed),
			DiscoveryIncluded: o.DiscoveryIncluded,
			DuplicatesRemoved: o.DuplicatesRemoved,
			DedupMethod:       o.DedupMethod,
		},
	}
	if resp.Meta.DedupMethod == "" {
		resp.Meta.DedupMethod = model.DedupURLOnly
	}

	switch {
	case runErr != nil:
		resp.Meta = Meta{RunID: o.RunID, SourcesSucceeded: []string{}, SourcesFailed: []string{}, DedupMethod: model.DedupURLOnly}
		resp.Error = &APIError{Code: CodeInternal, Message: "An unexpected error occurred."}
		return http.StatusInternalServerError, resp
	case o.Status == model.StatusQuotaExhausted:
		resp.Meta.DiscoveryIncluded = false
		resp.Error = &APIError{Code: CodeQuotaExhausted, Message: "Search limit reached for this month."}
		return http.StatusPaymentRequired, resp
	case o.Status == model.StatusAllFailed:
		resp.Error = &APIError{Code: CodeAllSourcesFailed, Message: "Couldn't reach any job boards right now."}
		return http.StatusBadGateway, resp
	}

	resp.Success = true
	if o.Listings != nil {
		resp.Results = o.Listings
	}
	resp.Meta.TotalResults = len(resp.Results)
	return http.StatusOK, resp
}

type resultView struct {
	filter *filter.ListingFilter
	sort   filter.SortOrder
}

func parseView(c *gin.Context, now time.Time) (resultView, error) {
	var opts filter.Options

	switch e := strings.ToLower(c.DefaultQuery("eligibility", "all")); e {
	case "all":
	case string(model.EligibilityGlobal):
		opts.GlobalOnly = true
	default:
		return resultView{}, errors.New("eligibility must be global or all")
	}

	for _, s := range c.QueryArray("source") {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				opts.Sources = append(opts.Sources, part)
			}
		}
	}

	if d := c.Query("days"); d != "" {
		days, err := strconv.Atoi(d)
		if err != nil || days < 1 {
			return resultView{}, errors.New("days must be a positive integer")
		}
		opts.MaxAgeDays = days
	}

	order, err := filter.ParseSortOrder(c.Query("sort"))
	if err != nil {
		return resultView{}, err
	}

	return resultView{filter: filter.NewListingFilter(opts, now), sort: order}, nil
}

func toDebugEvents(events []pipelinelog.Event) []DebugEvent {
	out := make([]DebugEvent, 0, len(events))
	for _, e := range events {
		out = append(out, DebugEvent{
			Stage:           e.Stage,
			Source:          e.Source,
			Query:           e.Query,
			RawCount:        e.RawCount,
			NormalizedCount: e.NormalizedCount,
			DroppedCount:    e.DroppedCount,
			DropReasons:     e.DropReasons,
			Error:           e.Error,
			DurationMs:      e.Duration.Milliseconds(),
			Timestamp:       e.At,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Health handles GET /healthz.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
