// Package datastore loads the citation graph documents and publishes them as
// immutable snapshots.
//
// A Snapshot is built completely before it is published through Store, so readers
// either see no data or a whole generation of it, never a mix.
package datastore

import (
	"time"

	"github.com/matsen/citegraph/internal/paper"
)

// Snapshot holds one generation of the lookup tables. It must not be modified
// after it has been published.
type Snapshot struct {
	Generation uint64
	LoadedAt   time.Time

	Titles    paper.TitleIndex
	Adjacency paper.AdjacencyIndex
	Entries   []paper.SearchEntry
}

// Title returns the title for id and whether the title index has it.
func (s *Snapshot) Title(id paper.ID) (string, bool) {
	title, ok := s.Titles[id]
	return title, ok
}

// Neighbors returns the direct neighbors of id. A missing key yields nil.
func (s *Snapshot) Neighbors(id paper.ID) []paper.ID {
	return s.Adjacency[id]
}

// Stats summarizes the sizes of the lookup tables.
type Stats struct {
	Generation    uint64 `json:"generation"`
	Papers        int    `json:"papers"`
	AdjacencyKeys int    `json:"adjacency_keys"`
	Links         int    `json:"links"`
	SearchEntries int    `json:"search_entries"`
}

// Stats returns table sizes for reporting.
func (s *Snapshot) Stats() Stats {
	links := 0
	for _, ns := range s.Adjacency {
		links += len(ns)
	}
	return Stats{
		Generation:    s.Generation,
		Papers:        len(s.Titles),
		AdjacencyKeys: len(s.Adjacency),
		Links:         links,
		SearchEntries: len(s.Entries),
	}
}
