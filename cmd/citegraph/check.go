package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/paper"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Load the citation data and report inconsistencies",
	Long: `Load all three documents and report inconsistencies between them.

Issues are informational: papers missing from the title index are shown with
the fallback label, so the explorer still works. A document that fails to
fetch or parse exits with code 3.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status string          `json:"status"`
	Stats  datastore.Stats `json:"stats"`
	Issues []CheckIssue    `json:"issues"`
}

// CheckIssue represents a single issue found during check.
type CheckIssue struct {
	Type     string   `json:"type"`
	ID       paper.ID `json:"id"`
	TargetID paper.ID `json:"target_id,omitempty"`
}

// Issue types
const (
	IssueUntitledPaper      = "untitled_paper"
	IssueNeighborNoTitle    = "neighbor_without_title"
	IssueDuplicateNeighbor  = "duplicate_neighbor"
	IssueSearchEntryNoTitle = "search_entry_without_title"
)

func runCheck(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	snap := mustLoadSnapshot(cmd.Context(), root, cfg)
	result := checkSnapshot(snap)

	if humanOutput {
		stats := result.Stats
		fmt.Printf("%d papers, %d with neighbors, %d links, %d search entries\n",
			stats.Papers, stats.AdjacencyKeys, stats.Links, stats.SearchEntries)
		if len(result.Issues) == 0 {
			styleBrand.Println("No issues found")
			return nil
		}
		styleWarn.Printf("%d issues:\n", len(result.Issues))
		for _, issue := range result.Issues {
			if issue.TargetID != 0 {
				fmt.Printf("  %s: %d -> %d\n", issue.Type, issue.ID, issue.TargetID)
			} else {
				fmt.Printf("  %s: %d\n", issue.Type, issue.ID)
			}
		}
		return nil
	}
	return outputJSON(result)
}

// checkSnapshot compares the three lookup structures against each other.
// Issues are ordered by type, then id.
func checkSnapshot(snap *datastore.Snapshot) CheckResult {
	issues := []CheckIssue{}

	for id, title := range snap.Titles {
		if title == "" {
			issues = append(issues, CheckIssue{Type: IssueUntitledPaper, ID: id})
		}
	}

	for id, neighbors := range snap.Adjacency {
		seen := make(map[paper.ID]bool, len(neighbors))
		for _, n := range neighbors {
			if seen[n] {
				issues = append(issues, CheckIssue{Type: IssueDuplicateNeighbor, ID: id, TargetID: n})
				continue
			}
			seen[n] = true
			if _, ok := snap.Titles[n]; !ok {
				issues = append(issues, CheckIssue{Type: IssueNeighborNoTitle, ID: id, TargetID: n})
			}
		}
	}

	for _, entry := range snap.Entries {
		if _, ok := snap.Titles[entry.ID]; !ok {
			issues = append(issues, CheckIssue{Type: IssueSearchEntryNoTitle, ID: entry.ID})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.TargetID < b.TargetID
	})

	status := "ok"
	if len(issues) > 0 {
		status = "issues"
	}
	return CheckResult{Status: status, Stats: snap.Stats(), Issues: issues}
}
