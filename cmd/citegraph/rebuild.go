package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/storage"
)

var rebuildStatus bool

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildStatus, "status", false, "Show what the cache holds without rebuilding it")
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the snapshot cache from the source documents",
	Long: `Fetch all three documents and write them into the SQLite snapshot cache
(.citegraph/cache/graph.db).

Other commands read the cache instead of the documents when given --from-cache,
which avoids refetching large remote documents.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status   string              `json:"status"`
	Path     string              `json:"path"`
	Stats    datastore.Stats     `json:"stats"`
	Source   datastore.Locations `json:"source"`
	CachedAt time.Time           `json:"cached_at"`
}

// CacheStatus is the response for rebuild --status.
type CacheStatus struct {
	Path     string              `json:"path"`
	Papers   int                 `json:"papers"`
	Source   datastore.Locations `json:"source"`
	CachedAt time.Time           `json:"cached_at"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	if fromCache {
		exitWithError(ExitError, "rebuild reads the source documents; drop --from-cache")
	}

	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	if rebuildStatus {
		return showCacheStatus(cmd, root)
	}

	snap := mustLoadSnapshot(cmd.Context(), root, cfg)

	db := mustOpenDatabase(root)
	defer db.Close()

	meta := storage.Meta{
		Source:   cfg.Locations(root),
		CachedAt: time.Now().UTC(),
	}
	stats, err := db.RebuildFromSnapshot(cmd.Context(), snap, meta)
	if err != nil {
		exitWithError(ExitError, "writing snapshot cache: %v", err)
	}

	if humanOutput {
		fmt.Printf("Cached %d papers, %d links, %d search entries in %s\n",
			stats.Papers, stats.Links, stats.SearchEntries, config.DBPath(root))
		return nil
	}
	return outputJSON(RebuildResult{
		Status:   "rebuilt",
		Path:     config.DBPath(root),
		Stats:    stats,
		Source:   meta.Source,
		CachedAt: meta.CachedAt,
	})
}

func showCacheStatus(cmd *cobra.Command, root string) error {
	db := mustOpenDatabase(root)
	defer db.Close()

	meta, err := db.Meta(cmd.Context())
	if errors.Is(err, storage.ErrEmptyCache) {
		exitWithError(ExitDataError, "%v", err)
	}
	if err != nil {
		exitWithError(ExitError, "reading cache metadata: %v", err)
	}
	count, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting cached papers: %v", err)
	}

	status := CacheStatus{
		Path:     config.DBPath(root),
		Papers:   count,
		Source:   meta.Source,
		CachedAt: meta.CachedAt,
	}
	if humanOutput {
		fmt.Printf("%d papers cached %s\n", status.Papers, styleSubtle.Sprint(status.CachedAt.Format(time.RFC3339)))
		fmt.Printf("  titles:       %s\n", status.Source.Titles)
		fmt.Printf("  adjacency:    %s\n", status.Source.Adjacency)
		fmt.Printf("  search index: %s\n", status.Source.SearchIndex)
		return nil
	}
	return outputJSON(status)
}
