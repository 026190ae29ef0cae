package viz

import (
	"reflect"
	"strings"
	"testing"

	"github.com/matsen/citegraph/internal/paper"
)

func sampleIndexes() (paper.TitleIndex, paper.AdjacencyIndex) {
	titles := paper.TitleIndex{
		1: "Deep Learning",
		2: "Neural Nets",
		3: "Backpropagation",
		4: "",
	}
	adjacency := paper.AdjacencyIndex{
		1: {2},
		2: {1, 3, 9},
		3: {},
		4: {1},
	}
	return titles, adjacency
}

func TestBuild_WorkedExample(t *testing.T) {
	titles := paper.TitleIndex{1: "Deep Learning", 2: "Neural Nets"}
	adjacency := paper.AdjacencyIndex{1: {2}}

	got := Build(1, titles, adjacency, DefaultOptions())
	want := &Graph{
		Nodes: []Node{
			{ID: 1, Label: "Deep Learning", Role: RoleCenter, Size: 10},
			{ID: 2, Label: "Neural Nets", Role: RoleNeighbor, Size: 5},
		},
		Links: []Link{{Source: 1, Target: 2}},
	}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build(1) = %+v, want %+v", got, want)
	}
}

func TestBuild_CenterMissingFromAdjacency(t *testing.T) {
	titles, adjacency := sampleIndexes()
	opts := Options{FallbackTitle: "Selected Paper"}

	got := Build(5, titles, adjacency, opts)

	if len(got.Nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(got.Nodes))
	}
	if len(got.Links) != 0 {
		t.Errorf("got %d links, want 0", len(got.Links))
	}
	if got.Links == nil {
		t.Error("Links should be an empty slice, not nil")
	}
	n := got.Nodes[0]
	if n.ID != 5 || n.Label != "Selected Paper" || n.Role != RoleCenter || n.Size != CenterSize {
		t.Errorf("center node = %+v", n)
	}
}

func TestBuild_NodeAndLinkCounts(t *testing.T) {
	titles, adjacency := sampleIndexes()

	for id, neighbors := range adjacency {
		t.Run(id.String(), func(t *testing.T) {
			g := Build(id, titles, adjacency, DefaultOptions())
			if len(g.Nodes) != 1+len(neighbors) {
				t.Errorf("got %d nodes, want %d", len(g.Nodes), 1+len(neighbors))
			}
			if len(g.Links) != len(neighbors) {
				t.Errorf("got %d links, want %d", len(g.Links), len(neighbors))
			}

			centers := 0
			for _, n := range g.Nodes {
				if n.Role == RoleCenter {
					centers++
				}
			}
			if centers != 1 {
				t.Errorf("got %d center nodes, want 1", centers)
			}

			for i, l := range g.Links {
				if l.Source != id {
					t.Errorf("link[%d].Source = %d, want center %d", i, l.Source, id)
				}
				if l.Target != neighbors[i] {
					t.Errorf("link[%d].Target = %d, want %d", i, l.Target, neighbors[i])
				}
			}
		})
	}
}

func TestBuild_FallbackLabels(t *testing.T) {
	titles, adjacency := sampleIndexes()

	tests := []struct {
		name     string
		center   paper.ID
		fallback string
		want     map[paper.ID]string
	}{
		{
			name:     "neighbor missing from title index",
			center:   2,
			fallback: "Unknown",
			want:     map[paper.ID]string{2: "Neural Nets", 1: "Deep Learning", 3: "Backpropagation", 9: "Unknown"},
		},
		{
			name:     "empty title uses fallback",
			center:   4,
			fallback: "Cited Paper",
			want:     map[paper.ID]string{4: "Cited Paper", 1: "Deep Learning"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.center, titles, adjacency, Options{FallbackTitle: tt.fallback})
			for _, n := range g.Nodes {
				if want, ok := tt.want[n.ID]; ok && n.Label != want {
					t.Errorf("node %d label = %q, want %q", n.ID, n.Label, want)
				}
			}
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	titles, adjacency := sampleIndexes()

	first := Build(2, titles, adjacency, DefaultOptions())
	second := Build(2, titles, adjacency, DefaultOptions())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Build() not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestBuild_DoesNotMutateIndexes(t *testing.T) {
	titles, adjacency := sampleIndexes()

	g := Build(2, titles, adjacency, DefaultOptions())
	g.Links[0].Target = 99
	g.Nodes[1].ID = 99

	if adjacency[2][0] != 1 {
		t.Errorf("adjacency modified through graph: %v", adjacency[2])
	}
}

func TestBuild_NilIndexes(t *testing.T) {
	g := Build(7, nil, nil, DefaultOptions())
	if len(g.Nodes) != 1 || g.Nodes[0].Label != DefaultFallbackTitle {
		t.Errorf("Build() with nil indexes = %+v", g)
	}
}

func TestGraph_Accessors(t *testing.T) {
	titles, adjacency := sampleIndexes()
	g := Build(1, titles, adjacency, DefaultOptions())

	center, ok := g.Center()
	if !ok || center.ID != 1 {
		t.Errorf("Center() = %+v, %v", center, ok)
	}
	if _, ok := g.Node(2); !ok {
		t.Error("Node(2) not found")
	}
	if _, ok := g.Node(3); ok {
		t.Error("Node(3) should not be in the graph")
	}
	if g.IsEmpty() {
		t.Error("IsEmpty() = true for built graph")
	}

	empty := Empty()
	if !empty.IsEmpty() {
		t.Error("Empty().IsEmpty() = false")
	}
	if _, ok := empty.Center(); ok {
		t.Error("Empty() graph has a center")
	}

	var nilGraph *Graph
	if !nilGraph.IsEmpty() {
		t.Error("nil graph should be empty")
	}
}

func TestToCytoscape(t *testing.T) {
	adjacency := paper.AdjacencyIndex{1: {2, 2, 1}}
	g := Build(1, paper.TitleIndex{1: "A", 2: "B"}, adjacency, DefaultOptions())

	elements := g.ToCytoscape()
	if len(elements.Nodes) != 2 {
		t.Errorf("got %d cytoscape nodes, want 2 (duplicates collapsed)", len(elements.Nodes))
	}
	if len(elements.Edges) != 3 {
		t.Errorf("got %d cytoscape edges, want 3", len(elements.Edges))
	}

	ids := make(map[string]bool)
	for _, e := range elements.Edges {
		if ids[e.Data.ID] {
			t.Errorf("duplicate edge id %q", e.Data.ID)
		}
		ids[e.Data.ID] = true
		if e.Data.Source != "1" {
			t.Errorf("edge source = %q, want %q", e.Data.Source, "1")
		}
	}
	if elements.Nodes[0].Data.Role != RoleCenter || elements.Nodes[0].Data.PaperID != 1 {
		t.Errorf("first node = %+v", elements.Nodes[0].Data)
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	g := Build(1, paper.TitleIndex{1: "Deep Learning"}, paper.AdjacencyIndex{1: {2}}, DefaultOptions())

	got, err := g.ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON() error = %v", err)
	}
	for _, want := range []string{`"id":"1"`, `"role":"center"`, `"label":"Deep Learning"`, `"source":"1"`, `"target":"2"`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON missing %s: %s", want, got)
		}
	}
}
