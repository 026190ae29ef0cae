package selection

import (
	"reflect"
	"testing"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/paper"
	"github.com/matsen/citegraph/internal/viz"
)

func testSnapshot() *datastore.Snapshot {
	return &datastore.Snapshot{
		Generation: 1,
		Titles: paper.TitleIndex{
			1: "Attention Is All You Need",
			2: "BERT",
			3: "Chain of Thought",
			4: "Transformers for Image Recognition",
		},
		Adjacency: paper.AdjacencyIndex{
			1: {2, 4},
			2: {1},
		},
		Entries: []paper.SearchEntry{
			{ID: 1, Title: "Attention Is All You Need"},
			{ID: 2, Title: "BERT"},
			{ID: 3, Title: "Chain of Thought"},
			{ID: 4, Title: "Transformers for Image Recognition"},
		},
	}
}

func ids(entries []paper.SearchEntry) []paper.ID {
	out := make([]paper.ID, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestReduce_SearchInput(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		name        string
		term        string
		wantIDs     []paper.ID
		wantVisible bool
	}{
		{"substring match", "at", []paper.ID{1}, true},
		{"case insensitive", "ION", []paper.ID{1, 4}, true},
		{"no match", "zzz", []paper.ID{}, false},
		{"whitespace only", "   ", []paper.ID{}, false},
		{"empty", "", []paper.ID{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(Initial(), SearchInput{Term: tt.term}, snap, viz.DefaultOptions())
			if got.SearchTerm != tt.term {
				t.Errorf("SearchTerm = %q, want %q", got.SearchTerm, tt.term)
			}
			if !reflect.DeepEqual(ids(got.Results), tt.wantIDs) {
				t.Errorf("Results = %v, want %v", ids(got.Results), tt.wantIDs)
			}
			if got.DropdownVisible != tt.wantVisible {
				t.Errorf("DropdownVisible = %v, want %v", got.DropdownVisible, tt.wantVisible)
			}
		})
	}
}

func TestReduce_SearchInputWithoutSnapshot(t *testing.T) {
	got := Reduce(Initial(), SearchInput{Term: "at"}, nil, viz.DefaultOptions())
	if len(got.Results) != 0 || got.DropdownVisible {
		t.Errorf("state = %+v, want no results", got)
	}
}

func TestReduce_SelectionEvents(t *testing.T) {
	snap := testSnapshot()
	searching := Reduce(Initial(), SearchInput{Term: "at"}, snap, viz.DefaultOptions())
	searching.HoveredID = idPtr(9)

	for _, ev := range []Event{Select{ID: 2}, PickFromList{ID: 2}, ItemActivated{ID: 2}, NodeClick{ID: 2}} {
		t.Run(ev.Type(), func(t *testing.T) {
			got := Reduce(searching, ev, snap, viz.DefaultOptions())
			if id, ok := got.Selected(); !ok || id != 2 {
				t.Errorf("Selected() = %d, %v; want 2", id, ok)
			}
			if got.SearchTerm != "" {
				t.Errorf("SearchTerm = %q, want cleared", got.SearchTerm)
			}
			if len(got.Results) != 0 || got.Results == nil {
				t.Errorf("Results = %v, want empty slice", got.Results)
			}
			if got.DropdownVisible {
				t.Error("DropdownVisible = true after selection")
			}
			if got.HoveredID != nil {
				t.Error("HoveredID not cleared by selection")
			}
		})
	}
}

func TestReduce_NodeClickRespectsRecenterOption(t *testing.T) {
	snap := testSnapshot()
	viewing := Reduce(Initial(), Select{ID: 1}, snap, viz.DefaultOptions())

	opts := viz.Options{FallbackTitle: "Unknown", AllowRecenterOnNodeClick: false}
	got := Reduce(viewing, NodeClick{ID: 2}, snap, opts)
	if id, _ := got.Selected(); id != 1 {
		t.Errorf("Selected() = %d, want 1 when recentering is disabled", id)
	}
}

func TestReduce_SubmitSearch(t *testing.T) {
	snap := testSnapshot()

	searching := Reduce(Initial(), SearchInput{Term: "ion"}, snap, viz.DefaultOptions())
	got := Reduce(searching, SubmitSearch{}, snap, viz.DefaultOptions())
	if id, ok := got.Selected(); !ok || id != 1 {
		t.Errorf("Selected() = %d, %v; want first result 1", id, ok)
	}

	noMatch := Reduce(Initial(), SearchInput{Term: "zzz"}, snap, viz.DefaultOptions())
	if got := Reduce(noMatch, SubmitSearch{}, snap, viz.DefaultOptions()); !reflect.DeepEqual(got, noMatch) {
		t.Errorf("SubmitSearch with no results changed state: %+v", got)
	}
}

func TestReduce_DropdownVisibility(t *testing.T) {
	snap := testSnapshot()
	opts := viz.DefaultOptions()
	searching := Reduce(Initial(), SearchInput{Term: "at"}, snap, opts)

	tests := []struct {
		name        string
		from        State
		event       Event
		wantVisible bool
	}{
		{"click outside hides", searching, ClickOutside{}, false},
		{"blur hides", searching, BlurAfterDelay{}, false},
		{"focus reopens with results", Reduce(searching, ClickOutside{}, snap, opts), Focus{}, true},
		{"focus stays closed without results", Initial(), Focus{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(tt.from, tt.event, snap, opts)
			if got.DropdownVisible != tt.wantVisible {
				t.Errorf("DropdownVisible = %v, want %v", got.DropdownVisible, tt.wantVisible)
			}
			if got.SearchTerm != tt.from.SearchTerm {
				t.Errorf("SearchTerm changed to %q", got.SearchTerm)
			}
		})
	}
}

func TestReduce_NodeHover(t *testing.T) {
	snap := testSnapshot()
	opts := viz.DefaultOptions()
	viewing := Reduce(Initial(), Select{ID: 1}, snap, opts)

	hovered := Reduce(viewing, NodeHover{ID: idPtr(4)}, snap, opts)
	if id, ok := hovered.Hovered(); !ok || id != 4 {
		t.Errorf("Hovered() = %d, %v; want 4", id, ok)
	}

	center := Reduce(viewing, NodeHover{ID: idPtr(1)}, snap, opts)
	if id, ok := center.Hovered(); !ok || id != 1 {
		t.Errorf("Hovered() = %d, %v; want center 1", id, ok)
	}

	outside := Reduce(viewing, NodeHover{ID: idPtr(3)}, snap, opts)
	if outside.HoveredID != nil {
		t.Errorf("hover of node outside the graph was accepted: %d", *outside.HoveredID)
	}

	cleared := Reduce(hovered, NodeHover{}, snap, opts)
	if cleared.HoveredID != nil {
		t.Error("NodeHover(nil) did not clear hover")
	}

	if got := Reduce(Initial(), NodeHover{ID: idPtr(1)}, snap, opts); got.HoveredID != nil {
		t.Error("hover accepted with nothing selected")
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	snap := testSnapshot()
	opts := viz.DefaultOptions()
	before := Reduce(Initial(), SearchInput{Term: "at"}, snap, opts)
	results := before.Results

	Reduce(before, SearchInput{Term: "ion"}, snap, opts)
	Reduce(before, Select{ID: 2}, snap, opts)

	if before.SearchTerm != "at" || !reflect.DeepEqual(before.Results, results) || !before.DropdownVisible {
		t.Errorf("input state modified: %+v", before)
	}
}
