package graph

import "github.com/LawrenceVelilla/UCourseMap-sub000/pkg/ast"

// NodeType is the type of a graph node.
type NodeType string

const (
	NodeCourse NodeType = NodeType(ast.KindCourse)
	NodeAnd    NodeType = NodeType(ast.KindAnd)
	NodeOr     NodeType = NodeType(ast.KindOr)
	NodeText   NodeType = NodeType(ast.KindText)
)

// Graph is the serialization format for requirement graphs.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a graph vertex. IDs are stable strings usable as rendering keys.
type Node struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     NodeType `json:"nodeType"`
	IsTarget bool     `json:"isTarget,omitempty"`
	Depth    int      `json:"depth"`
	// Resolved is false for course nodes missing from the catalog.
	// Only closure graphs set it.
	Resolved *bool `json:"resolved,omitempty"`
}

// Edge points from a requirement to the node that requires it.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Depth  int    `json:"depth"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// IsOperator reports whether n is an AND or OR node.
func (n *Node) IsOperator() bool {
	return n.Type == NodeAnd || n.Type == NodeOr
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// Target returns the target node, or nil.
func (g *Graph) Target() *Node {
	for i := range g.Nodes {
		if g.Nodes[i].IsTarget {
			return &g.Nodes[i]
		}
	}
	return nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// CountByType returns the number of nodes of each type.
func (g *Graph) CountByType() map[NodeType]int {
	out := make(map[NodeType]int)
	for _, n := range g.Nodes {
		out[n.Type]++
	}
	return out
}
