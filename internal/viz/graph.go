package viz

import "github.com/matsen/citegraph/internal/paper"

// DefaultFallbackTitle labels papers missing from the title index.
const DefaultFallbackTitle = "Unknown"

// Options is the single policy shared by every place that builds an ego graph.
type Options struct {
	// FallbackTitle labels nodes whose ID is absent from the title index.
	FallbackTitle string `json:"fallback_title"`

	// AllowRecenterOnNodeClick makes a click on a rendered node select that paper.
	AllowRecenterOnNodeClick bool `json:"recenter_on_click"`
}

// DefaultOptions returns the canonical graph policy.
func DefaultOptions() Options {
	return Options{
		FallbackTitle:            DefaultFallbackTitle,
		AllowRecenterOnNodeClick: true,
	}
}

// Build derives the ego graph for centerID from the title and adjacency indexes.
//
// A center with no adjacency entry yields a single-node graph, and IDs missing from
// the title index get opts.FallbackTitle. Neither case is an error. The graph has one
// node per neighbor entry and one link per neighbor entry, in adjacency order.
func Build(centerID paper.ID, titles paper.TitleIndex, adjacency paper.AdjacencyIndex, opts Options) *Graph {
	neighbors := adjacency[centerID]

	g := &Graph{
		Nodes: make([]Node, 0, len(neighbors)+1),
		Links: make([]Link, 0, len(neighbors)),
	}

	g.Nodes = append(g.Nodes, Node{
		ID:    centerID,
		Label: labelFor(centerID, titles, opts),
		Role:  RoleCenter,
		Size:  CenterSize,
	})

	for _, nid := range neighbors {
		g.Nodes = append(g.Nodes, Node{
			ID:    nid,
			Label: labelFor(nid, titles, opts),
			Role:  RoleNeighbor,
			Size:  NeighborSize,
		})
		g.Links = append(g.Links, Link{Source: centerID, Target: nid})
	}

	return g
}

// labelFor resolves a node label, absorbing title index misses.
func labelFor(id paper.ID, titles paper.TitleIndex, opts Options) string {
	if title, ok := titles[id]; ok && title != "" {
		return title
	}
	return opts.FallbackTitle
}
