// Package closure computes the transitive prerequisite closure of a course
// over the catalog's flattened requirement lists.
//
// The closure is logic-blind: it ignores AND/OR structure and answers "which
// courses and requirements sit behind this course, and how far away is
// each". The traversal is breadth-first. All courses discovered at one depth
// are fetched in a single batch lookup before the next depth is expanded, so
// the number of catalog round trips is bounded by the depth cap.
//
// # Invariants
//
//   - Every node carries the minimum depth at which it is reachable.
//   - Every course is expanded at most once, which also bounds cycles. A
//     course reached again keeps its edge but is not expanded again, so
//     A → B → A yields A → B and B → A and stops there.
//   - Edges are deduplicated and tagged with the minimum depth of their
//     target.
//   - Courses missing from the catalog are kept as unresolved nodes and not
//     expanded; missing references never fail the resolution.
package closure

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
)

// DefaultMaxDepth is the default traversal depth.
const DefaultMaxDepth = 4

// NodeType distinguishes catalog courses from free-text requirements.
type NodeType string

const (
	NodeCourse NodeType = "course"
	NodeText   NodeType = "text_requirement"
)

// Node is a closure vertex.
type Node struct {
	ID    string   `json:"id"`
	Type  NodeType `json:"type"`
	Depth int      `json:"depth"`
	// Label is the course title for courses and the original text for text
	// nodes. Empty for unresolved courses.
	Label string `json:"label,omitempty"`
	// Resolved reports whether a course was found in the catalog.
	// Always false for text nodes.
	Resolved bool            `json:"resolved"`
	Course   *catalog.Course `json:"-"`
}

// Edge points from a course to one of its requirements. Depth is the
// minimum depth of the target.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Depth  int    `json:"depth"`
}

// Result is the outcome of a resolution. Nodes are ordered by depth, then
// id; the root comes first.
type Result struct {
	Root     string `json:"root"`
	MaxDepth int    `json:"maxDepth"`
	Coreqs   bool   `json:"coreqs,omitempty"`
	Nodes    []Node `json:"nodes"`
	Edges    []Edge `json:"edges"`
}

// Node returns the node with the given id, or nil.
func (r *Result) Node(id string) *Node {
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			return &r.Nodes[i]
		}
	}
	return nil
}

// Courses returns the ids of course nodes other than the root, in node order.
func (r *Result) Courses() []string {
	var out []string
	for _, n := range r.Nodes {
		if n.Type == NodeCourse && n.ID != r.Root {
			out = append(out, n.ID)
		}
	}
	return out
}

// Marshal encodes r as indented JSON.
func (r *Result) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Options configures a Resolver.
type Options struct {
	// MaxDepth caps the traversal. Nodes at MaxDepth are included but not
	// expanded. DefaultMaxDepth when zero or negative.
	MaxDepth int
	// HighSchool lists non-catalog codes (e.g. "MATH 30-1") that are
	// skipped entirely. Matching is exact after trimming and upper-casing.
	HighSchool []string
	// CodePattern decides whether a flattened entry names a course.
	// requirement.DefaultCodePattern when nil.
	CodePattern *regexp.Regexp
	// Coreqs walks flattened corequisites instead of prerequisites.
	Coreqs bool
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	return o
}

func (o Options) highSchoolSet() map[string]bool {
	set := make(map[string]bool, len(o.HighSchool))
	for _, s := range o.HighSchool {
		set[strings.ToUpper(strings.TrimSpace(s))] = true
	}
	return set
}
