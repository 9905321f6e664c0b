package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/uxradar/internal/filter"
	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/pipeline"
	"github.com/amishk599/uxradar/internal/tui"
)

// viewFlags narrow and order the listings a command shows.
type viewFlags struct {
	globalOnly bool
	sources    []string
	days       int
	titles     []string
	sort       string
}

var (
	view        viewFlags
	jsonOutput  bool
	interactive bool
	noSpinner   bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run one search and print the results",
	Long:  "Queries every enabled source plus discovery, deduplicates, classifies eligibility, and prints the listings newest first.",
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	addViewFlags(searchCmd)
	for _, c := range []*cobra.Command{rootCmd, searchCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "print the full outcome as JSON")
		c.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the results in a split-pane viewer")
		c.Flags().BoolVar(&noSpinner, "no-spinner", false, "do not show a progress spinner")
	}
}

func addViewFlags(c *cobra.Command) {
	c.Flags().BoolVar(&view.globalOnly, "global", false, "only show listings open worldwide")
	c.Flags().StringSliceVar(&view.sources, "source", nil, "only show listings from these sources (repeatable, comma-separated)")
	c.Flags().IntVar(&view.days, "days", 0, "only show listings posted in the last N days (0 = all)")
	c.Flags().StringSliceVar(&view.titles, "title", nil, "only show listings whose title contains one of these keywords")
	c.Flags().StringVar(&view.sort, "sort", "date", "sort order: date or company")
}

func (v viewFlags) build(now time.Time) (*filter.ListingFilter, filter.SortOrder, error) {
	order, err := filter.ParseSortOrder(v.sort)
	if err != nil {
		return nil, "", err
	}
	if v.days < 0 {
		return nil, "", fmt.Errorf("--days must not be negative")
	}
	f := filter.NewListingFilter(filter.Options{
		GlobalOnly:    v.globalOnly,
		Sources:       v.sources,
		MaxAgeDays:    v.days,
		TitleKeywords: v.titles,
	}, now)
	return f, order, nil
}

// jsonOutcome is the --json document.
type jsonOutcome struct {
	RunID             string            `json:"runId"`
	Status            model.Status      `json:"status"`
	Results           []model.Listing   `json:"results"`
	TotalResults      int               `json:"totalResults"`
	SourcesSearched   int               `json:"sourcesSearched"`
	SourcesSucceeded  []string          `json:"sourcesSucceeded"`
	SourcesFailed     []string          `json:"sourcesFailed"`
	DiscoveryIncluded bool              `json:"discoveryIncluded"`
	DuplicatesRemoved int               `json:"duplicatesRemoved"`
	DedupMethod       model.DedupMethod `json:"dedupMethod"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	logger := setupQuietLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	now := time.Now()
	listingFilter, order, err := view.build(now)
	if err != nil {
		return err
	}

	runner, err := buildRunner(cfg, nil, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	outcome, err := runOnce(ctx, runner, !jsonOutput && !noSpinner && !debug)
	if err != nil {
		return err
	}

	all := outcome.Listings
	shown := filter.Apply(all, listingFilter)
	filter.Sort(shown, order)

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		if err := writeJSON(out, outcome, shown); err != nil {
			return err
		}
	case interactive:
		if err := tui.RunBrowser(all, shown, now); err != nil {
			return err
		}
	default:
		fmt.Fprintln(out, tui.RenderTable(shown, now))
		fmt.Fprint(out, tui.RenderLinks(shown))
		fmt.Fprintln(out, tui.RenderSummary(outcome))
	}

	switch outcome.Status {
	case model.StatusQuotaExhausted:
		return model.ErrQuotaExhausted
	case model.StatusAllFailed:
		return model.ErrSourceUnavailable
	}
	return nil
}

func runOnce(ctx context.Context, runner *pipeline.Runner, spinner bool) (model.PipelineOutcome, error) {
	run := func(ctx context.Context) (model.PipelineOutcome, error) {
		outcome, _, err := runner.Run(ctx)
		return outcome, err
	}
	if !spinner {
		return run(ctx)
	}
	outcome, err := tui.RunLoader(ctx, "Searching job boards", run)
	if errors.Is(err, tui.ErrCancelled) {
		return outcome, fmt.Errorf("search %w", err)
	}
	return outcome, err
}

func writeJSON(w io.Writer, o model.PipelineOutcome, shown []model.Listing) error {
	doc := jsonOutcome{
		RunID:             o.RunID,
		Status:            o.Status,
		Results:           shown,
		TotalResults:      len(shown),
		SourcesSearched:   o.SourcesSearched,
		SourcesSucceeded:  o.Succeeded,
		SourcesFailed:     o.Failed,
		DiscoveryIncluded: o.DiscoveryIncluded,
		DuplicatesRemoved: o.DuplicatesRemoved,
		DedupMethod:       o.DedupMethod,
	}
	if doc.SourcesSucceeded == nil {
		doc.SourcesSucceeded = []string{}
	}
	if doc.SourcesFailed == nil {
		doc.SourcesFailed = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}
