package requirement

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Wire is the loosely typed storage shape of a condition node. It is what
// catalog datastores persist and what the extraction step produces.
type Wire struct {
	Operator    string   `json:"operator,omitempty" bson:"operator,omitempty"`
	Courses     []string `json:"courses,omitempty" bson:"courses,omitempty"`
	Conditions  []*Wire  `json:"conditions,omitempty" bson:"conditions,omitempty"`
	Pattern     string   `json:"pattern,omitempty" bson:"pattern,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
}

// DecodeOptions controls how wire nodes become conditions.
type DecodeOptions struct {
	// Strict rejects malformed nodes with [ErrMalformed] instead of keeping
	// them as empty groups.
	Strict bool
}

// Unmarshal decodes a JSON condition leniently. The JSON literal null (or
// empty input) decodes to a nil Condition.
func Unmarshal(data []byte) (Condition, error) {
	return Decode(data, DecodeOptions{})
}

// Decode decodes a JSON condition with the given options.
func Decode(data []byte, opts DecodeOptions) (Condition, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	var w Wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode condition: %w", err)
	}
	return FromWire(&w, opts)
}

// Marshal encodes c in wire format. A nil condition encodes as null.
func Marshal(c Condition) ([]byte, error) {
	w := ToWire(c)
	if w == nil {
		return []byte("null"), nil
	}
	return json.Marshal(w)
}

// FromWire converts a wire node into a typed condition.
//
// Decoding rules, in order:
//   - WILDCARD with a pattern → [*Wildcard]; without one → [*Text]
//   - no courses and no conditions, but a description or pattern → [*Text]
//   - nothing at all → empty [*Group] (or [ErrMalformed] when strict)
//   - STANDALONE with exactly one course → [*Standalone]
//   - anything else → [*Group]; a multi-course STANDALONE becomes AND
//
// Nil entries in a conditions list are skipped. Blank course strings are dropped.
func FromWire(w *Wire, opts DecodeOptions) (Condition, error) {
	return fromWire(w, opts, "$")
}

func fromWire(w *Wire, opts DecodeOptions, path string) (Condition, error) {
	if w == nil {
		return nil, nil
	}
	op, err := ParseOperator(w.Operator)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	desc := strings.TrimSpace(w.Description)
	pattern := strings.TrimSpace(w.Pattern)

	if op == OpWildcard {
		if pattern == "" {
			return &Text{Description: firstNonEmpty(desc, "Any course")}, nil
		}
		return &Wildcard{Pattern: pattern, Description: desc}, nil
	}

	courses := make([]string, 0, len(w.Courses))
	for _, c := range w.Courses {
		if c = strings.TrimSpace(c); c != "" {
			courses = append(courses, c)
		}
	}
	conds := make([]Condition, 0, len(w.Conditions))
	for i, sub := range w.Conditions {
		c, err := fromWire(sub, opts, fmt.Sprintf("%s.conditions[%d]", path, i))
		if err != nil {
			return nil, err
		}
		if c != nil {
			conds = append(conds, c)
		}
	}

	if len(courses) == 0 && len(conds) == 0 {
		if text := firstNonEmpty(desc, pattern); text != "" {
			return &Text{Description: text}, nil
		}
		if opts.Strict {
			return nil, fmt.Errorf("%s: %w", path, ErrMalformed)
		}
		return &Group{Op: groupOp(op)}, nil
	}

	if op == OpStandalone && len(courses) == 1 && len(conds) == 0 {
		return &Standalone{Course: courses[0]}, nil
	}

	g := &Group{Op: groupOp(op), Description: desc}
	if len(courses) > 0 {
		g.Courses = courses
	}
	if len(conds) > 0 {
		g.Conditions = conds
	}
	return g, nil
}

func groupOp(op Operator) Operator {
	switch op {
	case OpAnd, OpOr:
		return op
	case OpStandalone:
		return OpAnd
	default:
		return OpNone
	}
}

// ToWire converts a typed condition back into its wire shape.
func ToWire(c Condition) *Wire {
	switch c := c.(type) {
	case *Standalone:
		if c == nil {
			return nil
		}
		return &Wire{Operator: string(OpStandalone), Courses: []string{c.Course}}
	case *Wildcard:
		if c == nil {
			return nil
		}
		return &Wire{Operator: string(OpWildcard), Pattern: c.Pattern, Description: c.Description}
	case *Text:
		if c == nil {
			return nil
		}
		return &Wire{Description: c.Description}
	case *Group:
		if c == nil {
			return nil
		}
		w := &Wire{Operator: string(c.Op), Description: c.Description}
		if len(c.Courses) > 0 {
			w.Courses = append([]string(nil), c.Courses...)
		}
		for _, sub := range c.Conditions {
			if sw := ToWire(sub); sw != nil {
				w.Conditions = append(w.Conditions, sw)
			}
		}
		return w
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
