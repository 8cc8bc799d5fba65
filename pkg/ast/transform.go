package ast

import (
	"regexp"
	"strings"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Options configures the transformation of conditions.
type Options struct {
	// DefaultOperator wraps multi-child groups whose source data states no
	// operator. KindOr when empty.
	DefaultOperator Kind
	// CodePattern decides whether a course-list entry is a course code or
	// free text. requirement.DefaultCodePattern when nil.
	CodePattern *regexp.Regexp
}

func (o Options) withDefaults() Options {
	if o.DefaultOperator != KindAnd {
		o.DefaultOperator = KindOr
	}
	if o.CodePattern == nil {
		o.CodePattern = requirement.DefaultCodePattern
	}
	return o
}

// FromCondition converts one condition tree into its shallow AST. It
// returns nil when the condition contributes nothing renderable.
//
// Descriptive conditions and wildcards become a single text leaf. Course
// list entries become course leaves when code-shaped and text leaves
// otherwise. A single child is returned unwrapped unless the group stated
// AND or OR explicitly.
func FromCondition(c requirement.Condition, opts Options) Node {
	return fromCondition(c, opts.withDefaults())
}

func fromCondition(c requirement.Condition, opts Options) Node {
	switch c := c.(type) {
	case *requirement.Standalone:
		if c == nil {
			return nil
		}
		return leaf(c.Course, opts)
	case *requirement.Text:
		if c == nil {
			return nil
		}
		return textLeaf(c.Description)
	case *requirement.Wildcard:
		if c == nil {
			return nil
		}
		if c.Description != "" {
			return textLeaf(c.Description)
		}
		return textLeaf(c.Pattern)
	case *requirement.Group:
		if c == nil {
			return nil
		}
		return fromGroup(c, opts)
	}
	return nil
}

func fromGroup(g *requirement.Group, opts Options) Node {
	if g.IsEmpty() {
		if strings.TrimSpace(g.Description) != "" {
			return textLeaf(g.Description)
		}
		return nil
	}

	children := make([]Node, 0, len(g.Courses)+len(g.Conditions))
	for _, s := range g.Courses {
		if n := leaf(s, opts); n != nil {
			children = append(children, n)
		}
	}
	for _, sub := range g.Conditions {
		if n := fromCondition(sub, opts); n != nil {
			children = append(children, n)
		}
	}

	switch {
	case len(children) == 0:
		return nil
	case g.Op == requirement.OpAnd:
		return &And{Children: children}
	case g.Op == requirement.OpOr:
		return &Or{Children: children}
	case len(children) == 1:
		return children[0]
	default:
		return newOp(opts.DefaultOperator, children)
	}
}

// leaf classifies a course-list entry.
func leaf(s string, opts Options) Node {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if opts.CodePattern.MatchString(s) {
		return &Course{ID: requirement.NormalizeCode(s)}
	}
	return textLeaf(s)
}

func textLeaf(s string) Node {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &Text{ID: requirement.TextKey(s), Text: s}
}
