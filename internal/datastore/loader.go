package datastore

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/matsen/citegraph/internal/logging"
	"github.com/matsen/citegraph/internal/paper"
)

// Document names one of the three required input documents.
type Document string

const (
	DocumentTitles      Document = "titles"
	DocumentAdjacency   Document = "adjacency"
	DocumentSearchIndex Document = "search index"
)

// Opener opens a document by location.
type Opener interface {
	Open(ctx context.Context, location string) (io.ReadCloser, error)
}

// Locations are the addresses of the three input documents.
type Locations struct {
	Titles      string `json:"papers_url"`
	Adjacency   string `json:"edges_url"`
	SearchIndex string `json:"search_index_url"`
}

// DocumentLoader fetches and decodes the three documents concurrently.
type DocumentLoader struct {
	opener    Opener
	locations Locations
}

// NewDocumentLoader creates a loader reading locations through opener.
func NewDocumentLoader(opener Opener, locations Locations) *DocumentLoader {
	return &DocumentLoader{opener: opener, locations: locations}
}

// Locations returns the configured document locations.
func (l *DocumentLoader) Locations() Locations {
	return l.locations
}

// Load fetches all three documents and waits for every fetch to finish.
// If any document fails, the result is a *DataLoadError listing each failure.
func (l *DocumentLoader) Load(ctx context.Context) (*Snapshot, error) {
	var (
		titles    paper.TitleIndex
		adjacency paper.AdjacencyIndex
		entries   []paper.SearchEntry
		failures  [3]*DocumentError
	)

	// Each fetch records its own failure and returns nil so that a failing
	// document does not cancel the others.
	var g errgroup.Group
	g.Go(func() error {
		failures[0] = l.fetch(ctx, DocumentTitles, l.locations.Titles, func(r io.Reader) (err error) {
			titles, err = DecodeTitles(r)
			return err
		})
		return nil
	})
	g.Go(func() error {
		failures[1] = l.fetch(ctx, DocumentAdjacency, l.locations.Adjacency, func(r io.Reader) (err error) {
			adjacency, err = DecodeAdjacency(r)
			return err
		})
		return nil
	})
	g.Go(func() error {
		failures[2] = l.fetch(ctx, DocumentSearchIndex, l.locations.SearchIndex, func(r io.Reader) (err error) {
			entries, err = DecodeSearchIndex(r)
			return err
		})
		return nil
	})
	_ = g.Wait()

	var loadErr DataLoadError
	for _, f := range failures {
		if f != nil {
			loadErr.Failures = append(loadErr.Failures, f)
		}
	}
	if len(loadErr.Failures) > 0 {
		return nil, &loadErr
	}

	return &Snapshot{
		Titles:    titles,
		Adjacency: adjacency,
		Entries:   entries,
	}, nil
}

func (l *DocumentLoader) fetch(ctx context.Context, doc Document, location string, decode func(io.Reader) error) *DocumentError {
	logging.Debug("fetching document", "document", doc, "location", location)

	rc, err := l.opener.Open(ctx, location)
	if err != nil {
		return &DocumentError{Document: doc, Location: location, Err: err}
	}
	defer rc.Close()

	if err := decode(rc); err != nil {
		return &DocumentError{Document: doc, Location: location, Err: err}
	}
	return nil
}
