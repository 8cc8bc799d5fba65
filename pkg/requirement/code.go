package requirement

import (
	"regexp"
	"strings"
)

// DefaultCodePattern matches the shape of a course code: letters, optional
// whitespace, digits, optional trailing letters ("CMPUT 174", "math125A").
var DefaultCodePattern = regexp.MustCompile(`^[A-Za-z]+\s*\d+[A-Za-z]*$`)

var (
	codeParts  = regexp.MustCompile(`^([A-Z]+(?: [A-Z]+)*) ?(\d+[A-Z]*)$`)
	spaceRun   = regexp.MustCompile(`\s+`)
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
)

// NormalizeCode canonicalizes a course code to upper case with a single space
// between department and number: "cmput174", " Cmput  174 " and "CMPUT 174"
// all become "CMPUT 174". Strings that are not code-shaped are upper-cased
// with whitespace collapsed.
func NormalizeCode(code string) string {
	s := strings.ToUpper(spaceRun.ReplaceAllString(strings.TrimSpace(code), " "))
	if m := codeParts.FindStringSubmatch(s); m != nil {
		return m[1] + " " + m[2]
	}
	return s
}

// IsCourseCode reports whether s has the shape of a course code under
// pattern. A nil pattern means [DefaultCodePattern].
func IsCourseCode(s string, pattern *regexp.Regexp) bool {
	if pattern == nil {
		pattern = DefaultCodePattern
	}
	return pattern.MatchString(strings.TrimSpace(s))
}

// TextKey returns the normalized key for a free-text requirement.
// Texts differing only in case, punctuation or spacing share a key.
func TextKey(text string) string {
	slug := strings.Trim(nonSlugRun.ReplaceAllString(strings.ToLower(text), "-"), "-")
	if slug == "" {
		slug = "empty"
	}
	return "text:" + slug
}

// CourseSet is a set of normalized course codes.
// The zero value is not usable; use [NewCourseSet].
type CourseSet map[string]struct{}

// NewCourseSet builds a set from codes, normalizing each one.
func NewCourseSet(codes ...string) CourseSet {
	s := make(CourseSet, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add inserts code after normalization. Empty codes are ignored.
func (s CourseSet) Add(code string) {
	if n := NormalizeCode(code); n != "" {
		s[n] = struct{}{}
	}
}

// Has reports whether the normalized code is in the set.
func (s CourseSet) Has(code string) bool {
	_, ok := s[NormalizeCode(code)]
	return ok
}

// Codes returns the members in unspecified order.
func (s CourseSet) Codes() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}
