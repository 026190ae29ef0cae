package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/search"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", search.DefaultLimit, "Maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search paper titles",
	Long: `Search paper titles in the search index.

A paper matches when its title contains the term, ignoring case. Results keep
the order of the search index.

Examples:
  citegraph search attention
  citegraph search "neural nets" --limit 3 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

// SearchResult is the response for the search command.
type SearchResult struct {
	Query   string              `json:"query"`
	Results []paper.SearchEntry `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	snap := mustLoadSnapshot(cmd.Context(), root, cfg)

	term := strings.Join(args, " ")
	results := search.Filter(term, searchLimit, snap.Entries)

	if humanOutput {
		if len(results) == 0 {
			fmt.Printf("No papers match %q\n", term)
			return nil
		}
		printEntries(results, SearchTitleMaxLen)
		return nil
	}
	return outputJSON(SearchResult{Query: term, Results: results})
}

// printEntries prints one search entry per line, ids right-aligned.
func printEntries(entries []paper.SearchEntry, maxLen int) {
	width := 0
	for _, e := range entries {
		width = max(width, len(e.ID.String()))
	}
	for _, e := range entries {
		fmt.Printf("%s  %s\n",
			styleSubtle.Sprintf("%*d", width, e.ID),
			truncateString(e.DisplayTitle(), maxLen))
	}
}
