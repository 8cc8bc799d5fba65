package graph

import "github.com/LawrenceVelilla/UCourseMap-sub000/pkg/closure"

// FromClosure converts a closure result into a graph. The root is the
// target. Course labels are codes; text labels are the requirement text.
func FromClosure(res *closure.Result) *Graph {
	g := &Graph{
		Nodes: make([]Node, 0, len(res.Nodes)),
		Edges: make([]Edge, 0, len(res.Edges)),
	}
	for _, n := range res.Nodes {
		node := Node{ID: n.ID, Label: n.ID, Type: NodeCourse, Depth: n.Depth, IsTarget: n.ID == res.Root}
		if n.Type == closure.NodeText {
			node.Type, node.Label = NodeText, n.Label
		} else {
			resolved := n.Resolved
			node.Resolved = &resolved
		}
		g.Nodes = append(g.Nodes, node)
	}
	// Closure edges run from a course to its requirement; graph edges run
	// the other way.
	for _, e := range res.Edges {
		g.Edges = append(g.Edges, Edge{Source: e.Target, Target: e.Source, Depth: e.Depth})
	}
	return g
}
