package pipeline

import (
	"context"
	"sort"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// CheckResult reports whether a student may take a course.
type CheckResult struct {
	Course    string   `json:"course"`
	Satisfied bool     `json:"satisfied"`
	Unmet     []string `json:"unmet,omitempty"`

	// Corequisites are reported separately; they may be taken concurrently.
	CoreqsSatisfied bool     `json:"coreqsSatisfied"`
	UnmetCoreqs     []string `json:"unmetCoreqs,omitempty"`
}

// Check evaluates the requirements of code against the completed courses.
// Absent requirements are satisfied.
func (r *Runner) Check(ctx context.Context, code string, completed []string) (*CheckResult, error) {
	if err := errors.ValidateCourseCode(code); err != nil {
		return nil, err
	}
	id := requirement.NormalizeCode(code)
	course, err := r.course(ctx, id)
	if err != nil {
		return nil, err
	}

	done := requirement.NewCourseSet(completed...)
	pre := course.Requirements.Prerequisites
	co := course.Requirements.Corequisites

	res := &CheckResult{
		Course:          id,
		Satisfied:       requirement.IsSatisfied(pre, done),
		CoreqsSatisfied: requirement.IsSatisfied(co, done),
		Unmet:           formatAll(requirement.Unmet(pre, done)),
		UnmetCoreqs:     formatAll(requirement.Unmet(co, done)),
	}
	r.Logger.Debug("checked requirements", "course", id, "satisfied", res.Satisfied, "completed", len(done))
	return res, nil
}

func formatAll(conds []requirement.Condition) []string {
	if len(conds) == 0 {
		return nil
	}
	out := make([]string, len(conds))
	for i, c := range conds {
		out[i] = requirement.Format(c)
	}
	return out
}

// CourseIssue lists everything wrong with one catalog record.
type CourseIssue struct {
	Course string `json:"course"`

	// Structural problems in the requirement trees.
	Conditions []string `json:"conditions,omitempty"`

	// Disagreement between the flattened list and the tree.
	MissingFromList []string `json:"missingFromList,omitempty"`
	MissingFromTree []string `json:"missingFromTree,omitempty"`

	// Codes referenced by the tree that are not in the catalog.
	Dangling []string `json:"dangling,omitempty"`
}

// Report is the outcome of ValidateCatalog.
type Report struct {
	Courses int           `json:"courses"`
	Issues  []CourseIssue `json:"issues"`
}

// OK reports whether no issues were found.
func (r *Report) OK() bool { return len(r.Issues) == 0 }

// ValidateCatalog checks every course for malformed requirement trees,
// flattened-list divergence and references to courses outside the set.
// Nothing here affects resolution; divergent data still resolves.
func ValidateCatalog(courses []*catalog.Course) *Report {
	known := requirement.NewCourseSet()
	for _, c := range courses {
		known.Add(c.ID())
	}

	rep := &Report{Courses: len(courses), Issues: []CourseIssue{}}
	for _, c := range courses {
		issue := CourseIssue{Course: c.ID()}

		for _, cond := range []requirement.Condition{c.Requirements.Prerequisites, c.Requirements.Corequisites} {
			if cond == nil {
				continue
			}
			if verr, ok := requirement.Validate(cond).(*requirement.ValidationError); ok {
				for _, is := range verr.Issues {
					issue.Conditions = append(issue.Conditions, is.String())
				}
			}
		}

		d := catalog.CheckFlattened(c)
		issue.MissingFromList = d.MissingFromList
		issue.MissingFromTree = d.MissingFromTree

		for _, code := range requirement.CourseCodes(c.Prerequisites()) {
			if !known.Has(code) {
				issue.Dangling = append(issue.Dangling, code)
			}
		}
		sort.Strings(issue.Dangling)

		if len(issue.Conditions)+len(issue.MissingFromList)+len(issue.MissingFromTree)+len(issue.Dangling) > 0 {
			rep.Issues = append(rep.Issues, issue)
		}
	}
	return rep
}
