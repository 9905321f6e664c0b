package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/normalize"
)

const maxTitleWidth = 48

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().Padding(0, 1)

	tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	globalStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	restrictedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	unknownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// EligibilityBadge is the short scope label shown next to a listing.
func EligibilityBadge(l model.Listing) string {
	switch l.Eligibility {
	case model.EligibilityGlobal:
		return globalStyle.Render("worldwide")
	case model.EligibilityRestricted:
		if len(l.AllowedRegions) > 0 {
			return restrictedStyle.Render(strings.Join(l.AllowedRegions, ","))
		}
		return restrictedStyle.Render("restricted")
	default:
		return unknownStyle.Render("unclear")
	}
}

// RenderTable lays listings out as a bordered table.
func RenderTable(listings []model.Listing, now time.Time) string {
	if len(listings) == 0 {
		return unknownStyle.Render("  (no listings)")
	}

	rows := make([][]string, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, []string{
			normalize.FormatRelativeDate(l.DatePosted, now),
			truncate(l.Title, maxTitleWidth),
			l.Company,
			l.SourceName,
			EligibilityBadge(l),
			l.Salary,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		}).
		Headers("POSTED", "TITLE", "COMPANY", "SOURCE", "SCOPE", "SALARY").
		Rows(rows...)

	return t.String()
}

// RenderLinks lists each listing's URL under a running number, matching the
// table's row order.
func RenderLinks(listings []model.Listing) string {
	var b strings.Builder
	for i, l := range listings {
		fmt.Fprintf(&b, "%3d. %s\n", i+1, l.URL)
	}
	return b.String()
}

// RenderSummary describes how a run went in one or two lines.
func RenderSummary(o model.PipelineOutcome) string {
	succeeded := len(o.Succeeded)
	if o.DiscoveryIncluded {
		succeeded++
	}
	parts := []string{
		fmt.Sprintf("%d listings", len(o.Listings)),
		fmt.Sprintf("%d/%d sources", succeeded, o.SourcesSearched),
	}
	if o.DuplicatesRemoved > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicates removed (%s)", o.DuplicatesRemoved, o.DedupMethod))
	}
	line := summaryStyle.Render(strings.Join(parts, " · "))

	switch {
	case o.Status == model.StatusQuotaExhausted:
		line += "\n" + warnStyle.Render("search quota exhausted; try again next month")
	case o.Status == model.StatusAllFailed:
		line += "\n" + warnStyle.Render("no job boards could be reached")
	case len(o.Failed) > 0:
		line += "\n" + warnStyle.Render("failed: "+strings.Join(o.Failed, ", "))
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
