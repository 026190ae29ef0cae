package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/server"
	"github.com/matsen/citegraph/internal/source"
)

var (
	serveAddr    string
	serveWatch   bool
	serveLayout  string
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: listen_addr from config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "Reload when local documents change")
	serveCmd.Flags().StringVar(&serveLayout, "layout", "", "Graph layout: force, circle, grid, or concentric")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allowed-origin", []string{"*"}, "CORS allowed origins for the API")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive explorer",
	Long: `Serve the interactive explorer and its JSON API.

The server starts immediately and loads the citation data in the background;
/ready reports "loading" until the data is available and "unavailable" if a
document could not be fetched or parsed.

Endpoints:
  /                        explorer page
  /ws                      explorer session (websocket)
  /api/v1/search?q=        search paper titles
  /api/v1/papers/popular   popular papers list
  /api/v1/graph/{id}       ego graph of a paper
  /health, /ready          liveness and readiness
  /metrics                 Prometheus metrics

With --watch, local documents (or the snapshot cache with --from-cache) are
reloaded when they change, and open sessions redraw from the new data.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	addr := serveAddr
	if addr == "" {
		addr = cfg.ListenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, err := newLoader(ctx, root, cfg)
	if err != nil {
		exitWithError(ExitConfigError, "configuring document source: %v", err)
	}

	store := datastore.NewStore()
	opts := server.DefaultOptions()
	opts.Graph = cfg.GraphOptions()
	opts.PopularCount = cfg.PopularCount
	opts.AllowedOrigins = serveOrigins
	if serveLayout != "" {
		opts.Layout = serveLayout
	}
	srv, err := server.New(store, opts)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var watcher *datastore.Watcher
	if serveWatch {
		files := watchedFiles(root, cfg)
		watcher, err = datastore.NewWatcher(store, loader, files, datastore.DefaultDebounce)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		logging.Info("watching for changes", "files", len(files))
	}

	// Load in the background so the explorer can report progress.
	go func() {
		if _, err := store.Load(ctx, loader); err != nil {
			logging.Error("citation data unavailable", "err", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx, addr)
	})
	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return nil
}

// watchedFiles returns the local files behind the configured data source.
func watchedFiles(root string, cfg *config.Config) []string {
	if fromCache {
		return []string{config.DBPath(root)}
	}
	locs := cfg.Locations(root)
	var files []string
	for _, loc := range []string{locs.Titles, locs.Adjacency, locs.SearchIndex} {
		if path, ok := source.LocalPath(loc); ok {
			files = append(files, path)
		} else {
			logging.Warn("not watching remote document", "location", loc)
		}
	}
	return files
}
