package ast

import (
	"maps"

	"github.com/charmbracelet/log"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Lookup resolves a normalized course code to its prerequisite condition.
// ok is false when the course is unknown.
type Lookup interface {
	Prerequisites(code string) (c requirement.Condition, ok bool)
}

// CourseMap is a pre-fetched Lookup keyed by normalized course code.
type CourseMap map[string]*catalog.Course

// Prerequisites implements [Lookup].
func (m CourseMap) Prerequisites(code string) (requirement.Condition, bool) {
	c, ok := m[code]
	if !ok || c == nil {
		return nil, false
	}
	return c.Prerequisites(), true
}

// Expander builds transitive ASTs.
//
// The cycle guard is path-local: a course is not expanded again while it is
// being expanded further up the same branch, but sibling branches expand it
// independently.
//
// With Memoize set, a course's expansion is cached when it did not stop at
// any course on the path above it, together with every course it touched.
// The cached expansion is reused only when the current path shares no course
// with that set, which makes the output identical to the unmemoized one.
//
// An Expander is not safe for concurrent use.
type Expander struct {
	Lookup  Lookup
	Options Options
	Memoize bool
	Logger  *log.Logger

	memo map[string]memoEntry
}

type memoEntry struct {
	node    Node
	touched map[string]struct{}
}

// trace records what an expansion depended on.
type trace struct {
	touched map[string]struct{} // course leaves encountered
	hits    map[string]struct{} // path members the expansion stopped at
}

func (t *trace) merge(o *trace) {
	if t == nil || o == nil {
		return
	}
	for k := range o.touched {
		t.touched[k] = struct{}{}
	}
	for k := range o.hits {
		t.hits[k] = struct{}{}
	}
}

// NewExpander returns an expander over lookup.
func NewExpander(lookup Lookup, opts Options) *Expander {
	return &Expander{Lookup: lookup, Options: opts}
}

// Expand returns the transitive AST of root, or nil if nothing is renderable.
func (e *Expander) Expand(root requirement.Condition) Node {
	return e.expand(root, map[string]bool{})
}

// ExpandCourse returns the transitive AST of a course's prerequisites. The
// course itself counts as being on the path, so a prerequisite that refers
// back to it stays a plain leaf. It returns nil for an unknown course or one
// without prerequisites.
func (e *Expander) ExpandCourse(code string) Node {
	code = requirement.NormalizeCode(code)
	cond, ok := e.Lookup.Prerequisites(code)
	if !ok {
		return nil
	}
	return e.expand(cond, map[string]bool{code: true})
}

func (e *Expander) expand(root requirement.Condition, visited map[string]bool) Node {
	e.Options = e.Options.withDefaults()
	if e.Logger == nil {
		e.Logger = log.Default()
	}
	if e.Memoize {
		e.memo = make(map[string]memoEntry)
	}
	n, _ := e.expandCondition(root, visited)
	e.memo = nil
	return n
}

func (e *Expander) expandCondition(c requirement.Condition, visited map[string]bool) (Node, *trace) {
	shallow := fromCondition(c, e.Options)
	if shallow == nil {
		return nil, e.newTrace()
	}
	return e.expandNode(shallow, visited)
}

func (e *Expander) expandNode(n Node, visited map[string]bool) (Node, *trace) {
	switch n := n.(type) {
	case *Course:
		return e.expandCourse(n, visited)
	case *Text:
		return n, e.newTrace()
	case *And, *Or:
		t := e.newTrace()
		children := make([]Node, 0, len(Children(n)))
		for _, c := range Children(n) {
			sub, st := e.expandNode(c, visited)
			t.merge(st)
			if sub != nil {
				children = append(children, sub)
			}
		}
		if len(children) == 0 {
			return nil, t
		}
		return newOp(n.Kind(), children), t
	}
	return nil, e.newTrace()
}

func (e *Expander) expandCourse(leaf *Course, visited map[string]bool) (Node, *trace) {
	id := leaf.ID
	if visited[id] {
		e.Logger.Debug("prerequisite cycle", "course", id)
		t := e.newTrace()
		if t != nil {
			t.touched[id] = struct{}{}
			t.hits[id] = struct{}{}
		}
		return leaf, t
	}

	if entry, ok := e.memo[id]; ok && disjoint(entry.touched, visited) {
		t := e.newTrace()
		for k := range entry.touched {
			t.touched[k] = struct{}{}
		}
		return entry.node, t
	}

	cond, ok := e.Lookup.Prerequisites(id)
	if !ok {
		e.Logger.Debug("unresolved prerequisite", "course", id)
		t := e.newTrace()
		if t != nil {
			t.touched[id] = struct{}{}
		}
		return leaf, t
	}

	visited[id] = true
	sub, t := e.expandCondition(cond, visited)
	delete(visited, id)

	var out Node = leaf
	if sub != nil {
		out = &And{Children: []Node{sub, leaf}}
	}

	if t != nil {
		t.touched[id] = struct{}{}
		delete(t.hits, id)
		if len(t.hits) == 0 {
			e.memo[id] = memoEntry{node: out, touched: maps.Clone(t.touched)}
		}
	}
	return out, t
}

// newTrace returns nil when memoization is off, so the unmemoized path does
// no bookkeeping.
func (e *Expander) newTrace() *trace {
	if !e.Memoize {
		return nil
	}
	return &trace{touched: map[string]struct{}{}, hits: map[string]struct{}{}}
}

func disjoint(touched map[string]struct{}, visited map[string]bool) bool {
	for k := range touched {
		if visited[k] {
			return false
		}
	}
	return true
}
