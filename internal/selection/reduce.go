package selection

import (
	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/search"
	"github.com/matsen/citegraph/internal/viz"
)

// Reduce returns the state that follows ev. It never modifies state.
// snap may be nil, in which case searches find nothing and hovers are ignored.
func Reduce(state State, ev Event, snap *datastore.Snapshot, opts viz.Options) State {
	switch e := ev.(type) {
	case Select:
		return selectPaper(e.ID)
	case PickFromList:
		return selectPaper(e.ID)
	case ItemActivated:
		return selectPaper(e.ID)

	case NodeClick:
		if !opts.AllowRecenterOnNodeClick {
			return state
		}
		return selectPaper(e.ID)

	case SubmitSearch:
		if len(state.Results) == 0 {
			return state
		}
		return selectPaper(state.Results[0].ID)

	case SearchInput:
		var entries []paper.SearchEntry
		if snap != nil {
			entries = snap.Entries
		}
		state.SearchTerm = e.Term
		state.Results = search.Filter(e.Term, search.DefaultLimit, entries)
		state.DropdownVisible = len(state.Results) > 0
		return state

	case Focus:
		state.DropdownVisible = len(state.Results) > 0
		return state

	case BlurAfterDelay, ClickOutside:
		state.DropdownVisible = false
		return state

	case NodeHover:
		if e.ID == nil {
			state.HoveredID = nil
			return state
		}
		if !inEgoGraph(state, *e.ID, snap) {
			return state
		}
		state.HoveredID = idPtr(*e.ID)
		return state
	}
	return state
}

func selectPaper(id paper.ID) State {
	return State{
		SelectedID: idPtr(id),
		Results:    []paper.SearchEntry{},
	}
}

// inEgoGraph reports whether id is a node of the graph for the current selection.
func inEgoGraph(state State, id paper.ID, snap *datastore.Snapshot) bool {
	center, ok := state.Selected()
	if !ok || snap == nil {
		return false
	}
	if id == center {
		return true
	}
	for _, n := range snap.Neighbors(center) {
		if n == id {
			return true
		}
	}
	return false
}
