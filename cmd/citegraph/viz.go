package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/viz"
)

var vizOutput string
var vizLayout string

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "", "Output file path (default: stdout)")
	vizCmd.Flags().StringVar(&vizLayout, "layout", viz.DefaultHTMLOptions().Layout, "Layout algorithm: force, circle, grid, or concentric")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz <paper-id>",
	Short: "Generate an ego graph visualization",
	Long: `Generate a standalone HTML page showing the ego graph of a paper.

The selected paper is drawn as a large blue node in the middle, its citation
neighbors as smaller nodes linked to it. Hovering a node shows its title.

Examples:
  # Generate HTML to stdout
  citegraph viz 1 > graph.html

  # Generate to file with a circular layout
  citegraph viz 1 --layout circle --output graph.html`,
	Args: cobra.ExactArgs(1),
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	id, err := paper.ParseID(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := viz.ValidateLayout(vizLayout); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)
	snap := mustLoadSnapshot(cmd.Context(), root, cfg)

	graph := viz.Build(id, snap.Titles, snap.Adjacency, cfg.GraphOptions())

	opts := viz.DefaultHTMLOptions()
	opts.Layout = vizLayout
	if center, ok := graph.Center(); ok {
		opts.Title = center.Label
	}
	html, err := viz.GenerateHTML(graph, opts)
	if err != nil {
		return fmt.Errorf("generating HTML: %w", err)
	}

	if vizOutput == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	if humanOutput {
		fmt.Printf("Visualization written to %s\n", vizOutput)
		return nil
	}
	return outputJSON(map[string]string{"output": vizOutput})
}
