package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/uxradar/internal/model"
	"github.com/amishk599/uxradar/internal/query"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured sources and the queries sent for each",
	Long:  "Reads the config and prints every curated source, the discovery query, and whether each is searched.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-20s %-10s %-9s %s\n", "Source", "Tier", "Status", "Query")
	fmt.Fprintln(out, strings.Repeat("─", 72))

	enabled := 0
	for _, s := range cfg.Sources {
		src := s.Model()
		status := "disabled"
		if s.Enabled {
			status = "enabled"
			enabled++
		}
		fmt.Fprintf(out, "%-20s %-10s %-9s %s\n", src.Name, src.Tier, status, query.ForSource(src))
	}

	status := "disabled"
	if cfg.Discovery {
		status = "enabled"
		enabled++
	}
	fmt.Fprintf(out, "%-20s %-10s %-9s %s\n", model.DiscoverySourceName, model.TierDiscovery, status, query.Discovery())

	fmt.Fprintf(out, "\nTotal: %d queries per search (%d curated sources configured)\n", enabled, len(cfg.Sources))
	return nil
}
