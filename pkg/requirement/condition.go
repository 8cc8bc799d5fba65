package requirement

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed is returned by strict decoding for a node that has no
	// courses, no nested conditions and no descriptive text.
	ErrMalformed = errors.New("condition has no courses, conditions or description")

	// ErrUnknownOperator is returned when the wire operator is not one of
	// AND, OR, STANDALONE or WILDCARD.
	ErrUnknownOperator = errors.New("unknown operator")
)

// Operator is the logical connective of a condition node.
type Operator string

const (
	OpNone       Operator = ""           // operator not stated in the source data
	OpAnd        Operator = "AND"        // all children must hold
	OpOr         Operator = "OR"         // at least one child must hold
	OpStandalone Operator = "STANDALONE" // exactly one course
	OpWildcard   Operator = "WILDCARD"   // any course matching a pattern
)

// ParseOperator parses a wire operator, case-insensitively.
// An empty string yields [OpNone].
func ParseOperator(s string) (Operator, error) {
	switch op := Operator(strings.ToUpper(strings.TrimSpace(s))); op {
	case OpNone, OpAnd, OpOr, OpStandalone, OpWildcard:
		return op, nil
	default:
		return OpNone, fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
}

// Condition is a node of a requirement tree. The implementations are
// [*Standalone], [*Group], [*Wildcard] and [*Text]; the set is closed.
type Condition interface {
	// Operator returns the node's connective as it appears on the wire.
	Operator() Operator
	condition()
}

// Standalone requires exactly one course.
type Standalone struct {
	Course string
}

// Group combines course codes and nested conditions under one operator.
// Op is [OpAnd], [OpOr] or [OpNone]. A group with neither courses nor
// conditions is malformed; it only arises from lenient decoding.
type Group struct {
	Op          Operator
	Courses     []string
	Conditions  []Condition
	Description string // optional annotation, not evaluated
}

// Wildcard matches any course whose code matches Pattern, e.g. "CMPUT 3xx".
type Wildcard struct {
	Pattern     string
	Description string
}

// Text is a descriptive, non-course requirement such as "Consent of department".
type Text struct {
	Description string
}

func (*Standalone) Operator() Operator { return OpStandalone }
func (g *Group) Operator() Operator    { return g.Op }
func (*Wildcard) Operator() Operator   { return OpWildcard }
func (*Text) Operator() Operator       { return OpNone }

func (*Standalone) condition() {}
func (*Group) condition()      {}
func (*Wildcard) condition()   {}
func (*Text) condition()       {}

// And builds an AND group over course codes.
func And(courses ...string) *Group { return &Group{Op: OpAnd, Courses: courses} }

// Or builds an OR group over course codes.
func Or(courses ...string) *Group { return &Group{Op: OpOr, Courses: courses} }

// AllOf builds an AND group over nested conditions.
func AllOf(conds ...Condition) *Group { return &Group{Op: OpAnd, Conditions: conds} }

// AnyOf builds an OR group over nested conditions.
func AnyOf(conds ...Condition) *Group { return &Group{Op: OpOr, Conditions: conds} }

// Course builds a [*Standalone] condition.
func Course(code string) *Standalone { return &Standalone{Course: code} }

// IsEmpty reports whether the group has neither courses nor conditions.
func (g *Group) IsEmpty() bool {
	return len(g.Courses) == 0 && len(g.Conditions) == 0
}

// CourseCodes returns the normalized, de-duplicated course codes reachable
// from c's leaves in tree order. Entries in course lists that are not
// code-shaped (under [DefaultCodePattern]) are skipped, as are wildcards and
// descriptive text.
func CourseCodes(c Condition) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !IsCourseCode(s, nil) {
			return
		}
		n := NormalizeCode(s)
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	var walk func(Condition)
	walk = func(c Condition) {
		switch c := c.(type) {
		case *Standalone:
			if c != nil {
				add(c.Course)
			}
		case *Group:
			if c == nil {
				return
			}
			for _, s := range c.Courses {
				add(s)
			}
			for _, sub := range c.Conditions {
				walk(sub)
			}
		}
	}
	walk(c)
	return out
}

// Format renders c as a human-readable expression such as
// "(CMPUT 175 or CMPUT 274) and MATH 125".
func Format(c Condition) string {
	return format(c, false)
}

func format(c Condition, nested bool) string {
	switch c := c.(type) {
	case nil:
		return "none"
	case *Standalone:
		return NormalizeCode(c.Course)
	case *Wildcard:
		if c.Description != "" {
			return c.Description
		}
		return "any " + c.Pattern
	case *Text:
		return c.Description
	case *Group:
		parts := make([]string, 0, len(c.Courses)+len(c.Conditions))
		for _, s := range c.Courses {
			if IsCourseCode(s, nil) {
				s = NormalizeCode(s)
			}
			parts = append(parts, s)
		}
		for _, sub := range c.Conditions {
			parts = append(parts, format(sub, true))
		}
		if len(parts) == 0 {
			return "none"
		}
		sep := " and "
		if c.Op == OpOr {
			sep = " or "
		}
		s := strings.Join(parts, sep)
		if nested && len(parts) > 1 {
			s = "(" + s + ")"
		}
		return s
	}
	return ""
}
