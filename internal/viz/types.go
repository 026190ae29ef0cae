// Package viz builds and renders the ego-graph view of a paper's citation neighborhood.
package viz

import "github.com/matsen/citegraph/internal/paper"

// Role distinguishes the center paper from its neighbors.
type Role string

// Node roles.
const (
	RoleCenter   Role = "center"
	RoleNeighbor Role = "neighbor"
)

// Node sizes handed to the renderer.
const (
	CenterSize   = 10
	NeighborSize = 5
)

// Graph is the view-model handed to the renderer: one center paper and its direct neighbors.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`
}

// Node represents a paper in the ego graph.
type Node struct {
	ID    paper.ID `json:"id"`
	Label string   `json:"label"`
	Role  Role     `json:"role"`
	Size  int      `json:"size"`
}

// Link connects the center paper to one neighbor.
//
// Source is always the center and Target the neighbor. The direction is a
// presentation convention: it does not say which paper cites which.
type Link struct {
	Source paper.ID `json:"source"`
	Target paper.ID `json:"target"`
}

// Empty returns a graph with no nodes or links.
func Empty() *Graph {
	return &Graph{Nodes: []Node{}, Links: []Link{}}
}

// IsEmpty returns true if the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.Nodes) == 0
}

// Center returns the center node, if any.
func (g *Graph) Center() (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.Role == RoleCenter {
			return n, true
		}
	}
	return Node{}, false
}

// Node returns the node with the given ID, if it is part of the graph.
func (g *Graph) Node(id paper.ID) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}
