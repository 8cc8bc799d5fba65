package graph

import (
	"strconv"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/ast"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// IDAllocator hands out operator node ids ("and-1", "or-2", ...) for one
// graph build. The zero value is ready to use.
type IDAllocator struct {
	next int
}

// Next returns a fresh id for an operator node of the given type.
func (a *IDAllocator) Next(t NodeType) string {
	a.next++
	return string(t) + "-" + strconv.Itoa(a.next)
}

// Target identifies the course a graph is built for.
type Target struct {
	ID    string
	Label string
}

// FromAST renders root as a graph rooted at target.
//
// The target is always emitted as a course node at depth 0, even when root
// is nil. The top of the AST hangs off the target at depth 1 and each
// AND/OR layer adds one.
func FromAST(root ast.Node, target Target) *Graph {
	return FromASTWith(root, target, &IDAllocator{})
}

// FromASTWith is FromAST with a caller-supplied allocator, for callers that
// merge several builds into one id space.
func FromASTWith(root ast.Node, target Target, ids *IDAllocator) *Graph {
	id := requirement.NormalizeCode(target.ID)
	label := target.Label
	if label == "" {
		label = id
	}

	b := &builder{
		g:    &Graph{Nodes: []Node{{ID: id, Label: label, Type: NodeCourse, IsTarget: true}}, Edges: []Edge{}},
		seen:  map[string]bool{id: true},
		edges: map[[2]string]bool{},
		ids:   ids,
	}
	if root != nil {
		b.walk(root, id, 1)
	}
	return b.g
}

type builder struct {
	g     *Graph
	seen  map[string]bool
	edges map[[2]string]bool
	ids   *IDAllocator
}

func (b *builder) walk(n ast.Node, parent string, depth int) {
	switch n := n.(type) {
	case *ast.Course:
		b.leaf(Node{ID: n.ID, Label: n.ID, Type: NodeCourse, Depth: depth}, parent)
	case *ast.Text:
		b.leaf(Node{ID: n.ID, Label: n.Text, Type: NodeText, Depth: depth}, parent)
	case *ast.And, *ast.Or:
		t := NodeType(n.Kind())
		id := b.ids.Next(t)
		b.g.Nodes = append(b.g.Nodes, Node{ID: id, Label: string(t), Type: t, Depth: depth})
		b.g.Edges = append(b.g.Edges, Edge{Source: id, Target: parent, Depth: depth})
		for _, c := range ast.Children(n) {
			b.walk(c, id, depth+1)
		}
	}
}

// leaf emits a leaf node once per id and one edge per distinct parent.
// Repeating a course under the same operator ("CMPUT 174", "cmput174")
// yields a single edge.
func (b *builder) leaf(n Node, parent string) {
	if !b.seen[n.ID] {
		b.seen[n.ID] = true
		b.g.Nodes = append(b.g.Nodes, n)
	}
	key := [2]string{n.ID, parent}
	if b.edges[key] {
		return
	}
	b.edges[key] = true
	b.g.Edges = append(b.g.Edges, Edge{Source: n.ID, Target: parent, Depth: n.Depth})
}
