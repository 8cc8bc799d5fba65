package requirement

// IsSatisfied reports whether the completed courses meet condition c.
//
// Rules:
//   - nil: satisfied (no requirement)
//   - [*Standalone]: the course is completed
//   - [*Group]: the course list holds (OR: any course, otherwise all) and the
//     nested conditions hold (OR: any, otherwise all). When a group has both,
//     an OR group needs either part and any other group needs both.
//   - empty [*Group]: satisfied; malformed data is not held against the student
//   - [*Wildcard]: some completed course matches the pattern; a pattern that
//     does not compile is treated as satisfied
//   - [*Text]: satisfied; descriptive requirements cannot be checked here
//
// IsSatisfied never panics on well-typed input and has no side effects.
func IsSatisfied(c Condition, completed CourseSet) bool {
	switch c := c.(type) {
	case nil:
		return true
	case *Standalone:
		return c == nil || completed.Has(c.Course)
	case *Group:
		return c == nil || groupSatisfied(c, completed)
	case *Wildcard:
		return c == nil || wildcardSatisfied(c, completed)
	case *Text:
		return true
	}
	return true
}

func groupSatisfied(g *Group, completed CourseSet) bool {
	var parts []bool
	if len(g.Courses) > 0 {
		parts = append(parts, coursesSatisfied(g.Op, g.Courses, completed))
	}
	if len(g.Conditions) > 0 {
		parts = append(parts, conditionsSatisfied(g.Op, g.Conditions, completed))
	}
	if len(parts) == 0 {
		return true
	}
	return combine(g.Op, parts)
}

func coursesSatisfied(op Operator, courses []string, completed CourseSet) bool {
	results := make([]bool, len(courses))
	for i, code := range courses {
		results[i] = completed.Has(code)
	}
	return combine(op, results)
}

func conditionsSatisfied(op Operator, conds []Condition, completed CourseSet) bool {
	if op == OpOr {
		for _, sub := range conds {
			if IsSatisfied(sub, completed) {
				return true
			}
		}
		return false
	}
	for _, sub := range conds {
		if !IsSatisfied(sub, completed) {
			return false
		}
	}
	return true
}

func combine(op Operator, results []bool) bool {
	if op == OpOr {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}
	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

func wildcardSatisfied(w *Wildcard, completed CourseSet) bool {
	re, err := CompilePattern(w.Pattern)
	if err != nil {
		return true
	}
	for code := range completed {
		if re.MatchString(code) {
			return true
		}
	}
	return false
}

// Unmet returns the immediate parts of c that the completed set does not
// satisfy. For an AND (or operator-less) group these are the individual
// unmet courses and sub-conditions; for anything else it is c itself when
// unsatisfied. A satisfied condition yields nil.
func Unmet(c Condition, completed CourseSet) []Condition {
	if IsSatisfied(c, completed) {
		return nil
	}
	g, ok := c.(*Group)
	if !ok || g.Op == OpOr {
		return []Condition{c}
	}
	var out []Condition
	for _, code := range g.Courses {
		if !completed.Has(code) {
			out = append(out, &Standalone{Course: code})
		}
	}
	for _, sub := range g.Conditions {
		if !IsSatisfied(sub, completed) {
			out = append(out, sub)
		}
	}
	return out
}
