package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/viz"
)

var graphCytoscape bool

func init() {
	graphCmd.Flags().BoolVar(&graphCytoscape, "cytoscape", false, "Output Cytoscape.js elements instead of nodes and links")
	rootCmd.AddCommand(graphCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph <paper-id>",
	Short: "Show the ego graph of a paper",
	Long: `Show the ego graph of a paper: the paper itself as the center node and one
neighbor node per entry of its citation list.

Papers without a title are labelled with fallback_title. A paper with no known
citations yields a graph with only the center node.

Examples:
  citegraph graph 1
  citegraph graph 1 --human
  citegraph graph 1 --cytoscape`,
	Args: cobra.ExactArgs(1),
	RunE: runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	id, err := paper.ParseID(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	snap := mustLoadSnapshot(cmd.Context(), root, cfg)

	g := viz.Build(id, snap.Titles, snap.Adjacency, cfg.GraphOptions())

	if humanOutput {
		printGraphTree(g)
		return nil
	}
	if graphCytoscape {
		return outputJSON(g.ToCytoscape())
	}
	return outputJSON(g)
}

// printGraphTree prints the center node followed by its neighbors as a tree.
func printGraphTree(g *viz.Graph) {
	center, ok := g.Center()
	if !ok {
		return
	}
	fmt.Printf("%s %s\n",
		styleCenter.Sprint(truncateString(center.Label, GraphTitleMaxLen)),
		styleSubtle.Sprintf("(%d)", center.ID))

	neighbors := g.Nodes[1:]
	if len(neighbors) == 0 {
		styleSubtle.Println("└── no known citations")
		return
	}
	for i, n := range neighbors {
		branch := "├──"
		if i == len(neighbors)-1 {
			branch = "└──"
		}
		fmt.Printf("%s %s %s\n", branch,
			truncateString(n.Label, GraphTitleMaxLen),
			styleSubtle.Sprintf("(%d)", n.ID))
	}
}
