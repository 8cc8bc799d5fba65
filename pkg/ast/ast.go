// Package ast turns requirement trees into a logic AST suitable for graph
// rendering.
//
// [FromCondition] builds the shallow AST of a single condition tree.
// [Expander] builds the transitive AST: every course leaf is replaced by
// And[<that course's own prerequisite AST>, <the course>], recursively, with
// a path-local cycle guard.
//
// Nodes are immutable once built. An expanded AST may share subtrees between
// branches when memoization is enabled.
package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the node type tag. The values double as graph node types.
type Kind string

const (
	KindCourse Kind = "course"
	KindText   Kind = "text_requirement"
	KindAnd    Kind = "and"
	KindOr     Kind = "or"
)

// Node is an AST node: [*Course], [*Text], [*And] or [*Or].
type Node interface {
	Kind() Kind
	node()
}

// Course is a leaf referencing a catalog course by normalized code.
type Course struct {
	ID string
}

// Text is a leaf for a requirement that is not a catalog course.
// ID is the normalized text key ("text:consent-of-department").
type Text struct {
	ID   string
	Text string
}

// And requires all children.
type And struct {
	Children []Node
}

// Or requires at least one child.
type Or struct {
	Children []Node
}

func (*Course) Kind() Kind { return KindCourse }
func (*Text) Kind() Kind   { return KindText }
func (*And) Kind() Kind    { return KindAnd }
func (*Or) Kind() Kind     { return KindOr }

func (*Course) node() {}
func (*Text) node()   {}
func (*And) node()    {}
func (*Or) node()     {}

// Children returns the children of an operator node, or nil for leaves.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *And:
		return n.Children
	case *Or:
		return n.Children
	}
	return nil
}

// newOp builds an operator node of the given kind.
func newOp(k Kind, children []Node) Node {
	if k == KindAnd {
		return &And{Children: children}
	}
	return &Or{Children: children}
}

// String renders n compactly, e.g. "and(or(CMPUT 175, CMPUT 274), MATH 125)".
// Text leaves render as their key.
func String(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil:
		b.WriteString("nil")
	case *Course:
		b.WriteString(n.ID)
	case *Text:
		b.WriteString(n.ID)
	case *And, *Or:
		b.WriteString(string(n.Kind()))
		b.WriteByte('(')
		for i, c := range Children(n) {
			if i > 0 {
				b.WriteString(", ")
			}
			writeNode(b, c)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "%T", n)
	}
}

// Size returns the number of nodes in the tree rooted at n.
func Size(n Node) int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range Children(n) {
		total += Size(c)
	}
	return total
}

type jsonNode struct {
	Type     Kind        `json:"type"`
	ID       string      `json:"id,omitempty"`
	Text     string      `json:"text,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

func toJSON(n Node) *jsonNode {
	switch n := n.(type) {
	case *Course:
		return &jsonNode{Type: KindCourse, ID: n.ID}
	case *Text:
		return &jsonNode{Type: KindText, ID: n.ID, Text: n.Text}
	case *And, *Or:
		j := &jsonNode{Type: n.Kind()}
		for _, c := range Children(n) {
			j.Children = append(j.Children, toJSON(c))
		}
		return j
	}
	return nil
}

// MarshalJSON encodes n for inspection. The encoding is not meant for
// persistence.
func MarshalJSON(n Node) ([]byte, error) {
	return json.Marshal(toJSON(n))
}
