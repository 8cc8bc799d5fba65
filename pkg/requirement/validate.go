package requirement

import (
	"fmt"
	"strings"
)

// Issue is a single structural problem found by [Validate].
type Issue struct {
	Path    string // JSON-path-like location, e.g. "$.conditions[1]"
	Message string
}

func (i Issue) String() string { return i.Path + ": " + i.Message }

// ValidationError collects every issue found in one condition tree.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		msgs[i] = is.String()
	}
	return fmt.Sprintf("%d condition issue(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}

// Validate checks the structural invariants of a condition tree: no empty
// groups, no blank course codes, and wildcard patterns that compile.
// It returns nil or a *ValidationError. Resolution never calls Validate;
// it exists for catalog ingestion and the validate command.
func Validate(c Condition) error {
	var issues []Issue
	var walk func(c Condition, path string)
	walk = func(c Condition, path string) {
		switch c := c.(type) {
		case *Standalone:
			if strings.TrimSpace(c.Course) == "" {
				issues = append(issues, Issue{path, "standalone condition has no course"})
			}
		case *Wildcard:
			if _, err := CompilePattern(c.Pattern); err != nil {
				issues = append(issues, Issue{path, err.Error()})
			}
		case *Text:
			if strings.TrimSpace(c.Description) == "" {
				issues = append(issues, Issue{path, "text requirement is blank"})
			}
		case *Group:
			if c.IsEmpty() {
				issues = append(issues, Issue{path, ErrMalformed.Error()})
			}
			for i, s := range c.Courses {
				if strings.TrimSpace(s) == "" {
					issues = append(issues, Issue{fmt.Sprintf("%s.courses[%d]", path, i), "blank course"})
				}
			}
			for i, sub := range c.Conditions {
				walk(sub, fmt.Sprintf("%s.conditions[%d]", path, i))
			}
		}
	}
	walk(c, "$")
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}
