package viz

import (
	"encoding/json"
	"fmt"
)

// CytoscapeElements represents the Cytoscape.js data format.
type CytoscapeElements struct {
	Nodes []CytoscapeNode `json:"nodes"`
	Edges []CytoscapeEdge `json:"edges"`
}

// CytoscapeNode represents a node in Cytoscape.js format.
type CytoscapeNode struct {
	Data CytoscapeNodeData `json:"data"`
}

// CytoscapeNodeData contains the node data fields. Cytoscape.js requires string IDs.
type CytoscapeNodeData struct {
	ID      string `json:"id"`
	PaperID int64  `json:"paperId"`
	Label   string `json:"label"`
	Role    Role   `json:"role"`
	Size    int    `json:"size"`
}

// CytoscapeEdge represents an edge in Cytoscape.js format.
type CytoscapeEdge struct {
	Data CytoscapeEdgeData `json:"data"`
}

// CytoscapeEdgeData contains the edge data fields.
type CytoscapeEdgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// ToCytoscape converts the graph to Cytoscape.js elements.
//
// Cytoscape.js rejects duplicate node IDs, so a neighbor listed twice in the
// adjacency index (or the center listed as its own neighbor) is emitted once.
// Every link is kept.
func (g *Graph) ToCytoscape() CytoscapeElements {
	elements := CytoscapeElements{
		Nodes: make([]CytoscapeNode, 0, len(g.Nodes)),
		Edges: make([]CytoscapeEdge, 0, len(g.Links)),
	}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		id := n.ID.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		elements.Nodes = append(elements.Nodes, CytoscapeNode{Data: CytoscapeNodeData{
			ID:      id,
			PaperID: int64(n.ID),
			Label:   n.Label,
			Role:    n.Role,
			Size:    n.Size,
		}})
	}

	for i, l := range g.Links {
		elements.Edges = append(elements.Edges, CytoscapeEdge{Data: CytoscapeEdgeData{
			ID:     edgeID(l, i),
			Source: l.Source.String(),
			Target: l.Target.String(),
		}})
	}

	return elements
}

// ToCytoscapeJSON converts the graph to Cytoscape.js JSON format.
func (g *Graph) ToCytoscapeJSON() (string, error) {
	jsonBytes, err := json.Marshal(g.ToCytoscape())
	if err != nil {
		return "", fmt.Errorf("marshaling Cytoscape elements to JSON: %w", err)
	}
	return string(jsonBytes), nil
}

// edgeID generates a unique edge ID for the current graph.
// IDs are based on slice position and are not stable across different graph builds.
func edgeID(l Link, index int) string {
	return fmt.Sprintf("%d-%d-%d", l.Source, l.Target, index)
}
