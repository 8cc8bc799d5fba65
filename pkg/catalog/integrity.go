package catalog

import (
	"sort"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Divergence describes where a course's flattened prerequisite list and its
// prerequisite tree disagree. Only code-shaped entries are compared; free-text
// entries in the flattened list are expected to have no tree counterpart.
type Divergence struct {
	Course string
	// MissingFromList holds codes present in the tree but not in the list.
	MissingFromList []string
	// MissingFromTree holds code-shaped list entries absent from the tree.
	MissingFromTree []string
}

// OK reports whether no divergence was found.
func (d Divergence) OK() bool {
	return len(d.MissingFromList) == 0 && len(d.MissingFromTree) == 0
}

// CheckFlattened compares c.FlattenedPrerequisites with the leaves of the
// prerequisite tree. Catalog data is allowed to diverge; resolution never
// calls this.
func CheckFlattened(c *Course) Divergence {
	d := Divergence{Course: c.ID()}
	tree := requirement.NewCourseSet(requirement.CourseCodes(c.Prerequisites())...)

	list := requirement.NewCourseSet()
	for _, entry := range c.FlattenedPrerequisites {
		if requirement.IsCourseCode(entry, nil) {
			list.Add(entry)
		}
	}

	for code := range tree {
		if !list.Has(code) {
			d.MissingFromList = append(d.MissingFromList, code)
		}
	}
	for code := range list {
		if !tree.Has(code) {
			d.MissingFromTree = append(d.MissingFromTree, code)
		}
	}
	sort.Strings(d.MissingFromList)
	sort.Strings(d.MissingFromTree)
	return d
}
