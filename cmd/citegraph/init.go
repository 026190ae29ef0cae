package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
)

var (
	initPapers      string
	initEdges       string
	initSearchIndex string
)

func init() {
	initCmd.Flags().StringVar(&initPapers, "papers", config.DefaultPapersFile, "Title index document (path, URL or s3://)")
	initCmd.Flags().StringVar(&initEdges, "edges", config.DefaultEdgesFile, "Citation edges document")
	initCmd.Flags().StringVar(&initSearchIndex, "search-index", config.DefaultSearchIndexFile, "Search index document")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a citegraph workspace",
	Long: `Initialize a citegraph workspace in the current directory.

Creates:
  .citegraph/
  ├── config.json     # Document locations and display settings
  └── cache/          # Snapshot cache written by 'citegraph rebuild'`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	root := getStartingDirectory()

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "directory already contains a citegraph workspace")
	}

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	cfg := config.Default()
	cfg.PapersURL = initPapers
	cfg.EdgesURL = initEdges
	cfg.SearchIndexURL = initSearchIndex
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized citegraph workspace in %s\n", root)
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}
	return nil
}
