package datastore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/matsen/citegraph/internal/paper"
)

// ErrTrailingData is returned when a document holds more than one JSON value.
var ErrTrailingData = errors.New("unexpected data after JSON document")

// decodeDocument decodes exactly one JSON value from r into v.
func decodeDocument(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingData
	}
	return nil
}

// titleRecord is the value type of the title document.
type titleRecord struct {
	Title string `json:"title"`
}

// DecodeTitles parses the title document: an object keyed by string-encoded
// paper IDs whose values are {"title": "..."}.
func DecodeTitles(r io.Reader) (paper.TitleIndex, error) {
	var raw map[string]*titleRecord
	if err := decodeDocument(r, &raw); err != nil {
		return nil, fmt.Errorf("decoding title index: %w", err)
	}

	titles := make(paper.TitleIndex, len(raw))
	for key, rec := range raw {
		id, err := paper.ParseID(key)
		if err != nil {
			return nil, fmt.Errorf("title index key: %w", err)
		}
		if rec == nil {
			titles[id] = ""
			continue
		}
		titles[id] = rec.Title
	}
	return titles, nil
}

// DecodeAdjacency parses the adjacency document: an object keyed by string-encoded
// paper IDs whose values are arrays of neighbor IDs, written as numbers or strings.
func DecodeAdjacency(r io.Reader) (paper.AdjacencyIndex, error) {
	var raw map[string][]paper.FlexibleID
	if err := decodeDocument(r, &raw); err != nil {
		return nil, fmt.Errorf("decoding adjacency: %w", err)
	}

	adjacency := make(paper.AdjacencyIndex, len(raw))
	for key, neighbors := range raw {
		id, err := paper.ParseID(key)
		if err != nil {
			return nil, fmt.Errorf("adjacency key: %w", err)
		}
		ids := make([]paper.ID, len(neighbors))
		for i, n := range neighbors {
			ids[i] = paper.ID(n)
		}
		adjacency[id] = ids
	}
	return adjacency, nil
}

// DecodeSearchIndex parses the search index: an array of {"int_id": n, "title": "..."}.
func DecodeSearchIndex(r io.Reader) ([]paper.SearchEntry, error) {
	var entries []paper.SearchEntry
	if err := decodeDocument(r, &entries); err != nil {
		return nil, fmt.Errorf("decoding search index: %w", err)
	}
	if entries == nil {
		entries = []paper.SearchEntry{}
	}
	return entries, nil
}
