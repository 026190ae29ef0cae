package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/search"
)

var popularCount int

func init() {
	popularCmd.Flags().IntVarP(&popularCount, "count", "n", 0, "Number of papers (default: popular_count from config)")
	rootCmd.AddCommand(popularCmd)
}

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the popular papers shortcut list",
	Long: `List the first entries of the search index, the shortcut list shown by the
explorer before anything is searched. Titles are shortened for display.`,
	Args: cobra.NoArgs,
	RunE: runPopular,
}

func runPopular(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	snap := mustLoadSnapshot(cmd.Context(), root, cfg)

	n := popularCount
	if n <= 0 {
		n = cfg.PopularCount
	}
	entries := search.Popular(snap.Entries, n)

	if humanOutput {
		printEntries(entries, search.PopularTitleMaxLen)
		return nil
	}

	out := make([]paper.SearchEntry, len(entries))
	for i, e := range entries {
		out[i] = paper.SearchEntry{ID: e.ID, Title: search.ShortTitle(e.DisplayTitle(), search.PopularTitleMaxLen)}
	}
	return outputJSON(out)
}
