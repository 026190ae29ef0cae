// Package selection holds the search and selection state of one explorer session
// and derives the ego graph from it.
//
// State transitions are computed by Reduce, a pure function. Controller owns the
// current state for a session, queues events until data is available and keeps
// the graph in step with the selection.
package selection

import (
	"github.com/matsen/citegraph/internal/paper"
)

// State is the UI state of one session.
type State struct {
	SelectedID      *paper.ID           `json:"selected_id"`
	SearchTerm      string              `json:"search_term"`
	Results         []paper.SearchEntry `json:"results"`
	DropdownVisible bool                `json:"dropdown_visible"`
	HoveredID       *paper.ID           `json:"hovered_id"`
}

// Initial returns the state of a fresh session: nothing selected, no search.
func Initial() State {
	return State{Results: []paper.SearchEntry{}}
}

// Selected returns the selected paper ID, if any.
func (s State) Selected() (paper.ID, bool) {
	if s.SelectedID == nil {
		return 0, false
	}
	return *s.SelectedID, true
}

// Hovered returns the hovered paper ID, if any.
func (s State) Hovered() (paper.ID, bool) {
	if s.HoveredID == nil {
		return 0, false
	}
	return *s.HoveredID, true
}

func idPtr(id paper.ID) *paper.ID {
	return &id
}
