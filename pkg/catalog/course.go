package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Course is one catalog entry.
type Course struct {
	Department   string       `json:"department"`
	Code         string       `json:"courseCode"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description,omitempty"`
	Units        *Units       `json:"units,omitempty"`
	Requirements Requirements `json:"requirements"`

	// FlattenedPrerequisites lists every course code and free-text entry
	// referenced by the prerequisite tree. The closure resolver walks these.
	FlattenedPrerequisites []string `json:"flattenedPrerequisites,omitempty"`
	FlattenedCorequisites  []string `json:"flattenedCorequisites,omitempty"`
}

// Units describes the credit weight of a course.
type Units struct {
	Credits  float64 `json:"credits"`
	FeeIndex float64 `json:"feeIndex,omitempty"`
	Term     string  `json:"term,omitempty"`
}

// Requirements groups the condition trees of a course. Any of them may be nil.
// Notes is usually free text and then decodes to a [*requirement.Text].
type Requirements struct {
	Prerequisites requirement.Condition
	Corequisites  requirement.Condition
	Notes         requirement.Condition
}

// ID returns the normalized course code ("CMPUT 174"). When Code holds only
// the number, Department is prepended.
func (c *Course) ID() string {
	if c == nil {
		return ""
	}
	code := requirement.NormalizeCode(c.Code)
	if c.Department != "" && !requirement.IsCourseCode(code, nil) {
		code = requirement.NormalizeCode(c.Department + " " + c.Code)
	}
	return code
}

// Prerequisites returns the prerequisite tree, or nil.
func (c *Course) Prerequisites() requirement.Condition {
	if c == nil {
		return nil
	}
	return c.Requirements.Prerequisites
}

// Flattened returns the flattened corequisites when coreqs is set,
// and the flattened prerequisites otherwise.
func (c *Course) Flattened(coreqs bool) []string {
	if c == nil {
		return nil
	}
	if coreqs {
		return c.FlattenedCorequisites
	}
	return c.FlattenedPrerequisites
}

type requirementsJSON struct {
	Prerequisites *requirement.Wire `json:"prerequisites,omitempty"`
	Corequisites  *requirement.Wire `json:"corequisites,omitempty"`
	Notes         json.RawMessage   `json:"notes,omitempty"`
}

// MarshalJSON encodes the trees in their wire format. Text notes are
// written back as a plain string.
func (r Requirements) MarshalJSON() ([]byte, error) {
	raw := requirementsJSON{
		Prerequisites: requirement.ToWire(r.Prerequisites),
		Corequisites:  requirement.ToWire(r.Corequisites),
	}
	switch n := r.Notes.(type) {
	case nil:
	case *requirement.Text:
		if n != nil && n.Description != "" {
			data, err := json.Marshal(n.Description)
			if err != nil {
				return nil, err
			}
			raw.Notes = data
		}
	default:
		data, err := requirement.Marshal(n)
		if err != nil {
			return nil, err
		}
		raw.Notes = data
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes the trees leniently: a malformed node becomes an
// empty group rather than failing the whole record.
func (r *Requirements) UnmarshalJSON(data []byte) error {
	var raw requirementsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	return r.fromJSON(raw, requirement.DecodeOptions{})
}

func (r *Requirements) fromJSON(raw requirementsJSON, opts requirement.DecodeOptions) error {
	notes, err := decodeNotes(raw.Notes, opts)
	if err != nil {
		return err
	}
	return r.fromWire(raw.Prerequisites, raw.Corequisites, notes, opts)
}

func (r *Requirements) fromWire(pre, co *requirement.Wire, notes requirement.Condition, opts requirement.DecodeOptions) error {
	p, err := requirement.FromWire(pre, opts)
	if err != nil {
		return fmt.Errorf("prerequisites: %w", err)
	}
	c, err := requirement.FromWire(co, opts)
	if err != nil {
		return fmt.Errorf("corequisites: %w", err)
	}
	*r = Requirements{Prerequisites: p, Corequisites: c, Notes: notes}
	return nil
}

// decodeNotes accepts either a JSON string or a condition node.
func decodeNotes(data json.RawMessage, opts requirement.DecodeOptions) (requirement.Condition, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return nil, fmt.Errorf("notes: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return &requirement.Text{Description: text}, nil
	}
	notes, err := requirement.Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("notes: %w", err)
	}
	return notes, nil
}

// DecodeRequirements decodes the JSON requirements object stored by a
// datastore. Empty input yields empty requirements.
func DecodeRequirements(data []byte, opts requirement.DecodeOptions) (Requirements, error) {
	var r Requirements
	if len(data) == 0 || string(data) == "null" {
		return r, nil
	}
	var raw requirementsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return r, err
	}
	err := r.fromJSON(raw, opts)
	return r, err
}

// RequirementsFromWire builds requirements from already decoded wire trees.
func RequirementsFromWire(pre, co, notes *requirement.Wire) (Requirements, error) {
	var r Requirements
	n, err := requirement.FromWire(notes, requirement.DecodeOptions{})
	if err != nil {
		return r, fmt.Errorf("notes: %w", err)
	}
	err = r.fromWire(pre, co, n, requirement.DecodeOptions{})
	return r, err
}
