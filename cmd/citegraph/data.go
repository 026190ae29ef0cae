package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/matsen/citegraph/internal/config"
	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/source"
	"github.com/matsen/citegraph/internal/storage"
)

// newOpener builds the source router for cfg. An S3 client is only created
// when at least one document lives in a bucket.
func newOpener(ctx context.Context, cfg *config.Config, locs datastore.Locations) (*source.Router, error) {
	opts := []source.RouterOption{
		source.WithHTTPFetcher(source.NewHTTPFetcher(
			source.WithRate(cfg.FetchRate),
			source.WithUserAgent("citegraph/"+Version),
		)),
	}

	for _, loc := range []string{locs.Titles, locs.Adjacency, locs.SearchIndex} {
		if source.SchemeOf(loc) != source.SchemeS3 {
			continue
		}
		// Pick up AWS_* overrides from a .env file
		_ = godotenv.Load()
		client, err := source.NewS3Client(ctx, config.S3Settings())
		if err != nil {
			return nil, err
		}
		opts = append(opts, source.WithS3Fetcher(source.NewS3Fetcher(client)))
		break
	}

	return source.NewRouter(opts...), nil
}

// newLoader returns the loader selected by --from-cache.
func newLoader(ctx context.Context, root string, cfg *config.Config) (datastore.Loader, error) {
	if fromCache {
		return storage.NewCacheLoader(config.DBPath(root)), nil
	}
	locs := cfg.Locations(root)
	opener, err := newOpener(ctx, cfg, locs)
	if err != nil {
		return nil, err
	}
	return datastore.NewDocumentLoader(opener, locs), nil
}

// mustLoadSnapshot loads the citation data into a fresh store, exits on error.
func mustLoadSnapshot(ctx context.Context, root string, cfg *config.Config) *datastore.Snapshot {
	loader, err := newLoader(ctx, root, cfg)
	if err != nil {
		exitWithError(ExitConfigError, "configuring document source: %v", err)
	}
	snap, err := datastore.NewStore().Load(ctx, loader)
	if err != nil {
		exitWithLoadError(err)
	}
	return snap
}

// exitWithLoadError reports a failed load. Document failures exit with
// ExitDataError and list every failed document.
func exitWithLoadError(err error) {
	var loadErr *datastore.DataLoadError
	if !errors.As(err, &loadErr) {
		if errors.Is(err, storage.ErrEmptyCache) {
			exitWithError(ExitDataError, "%v", err)
		}
		exitWithError(ExitError, "loading citation data: %v", err)
	}

	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s citation data unavailable\n", styleWarn.Sprint("error:"))
		for _, f := range loadErr.Failures {
			fmt.Fprintf(os.Stderr, "  %s %s: %v\n", f.Document, styleSubtle.Sprint(f.Location), f.Err)
		}
		os.Exit(ExitDataError)
	}

	resp := ErrorResponse{Error: "citation data unavailable"}
	for _, f := range loadErr.Failures {
		resp.Failures = append(resp.Failures, FailureDetail{
			Document: string(f.Document),
			Location: f.Location,
			Error:    f.Err.Error(),
		})
	}
	outputJSON(resp)
	os.Exit(ExitDataError)
}
