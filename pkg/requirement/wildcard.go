package requirement

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// familyPattern recognizes code-family shorthand: a department followed by a
// number in which x/X stands for any digit ("CMPUT 3xx", "MATH 1XX").
var familyPattern = regexp.MustCompile(`^([A-Z]+(?: [A-Z]+)*) ?([0-9X]*X[0-9X]*)([A-Z]*)$`)

var patternCache sync.Map // string -> *regexp.Regexp

// CompilePattern compiles a wildcard pattern into a regular expression that
// matches normalized course codes.
//
// Family shorthand ("CMPUT 3xx") is translated digit by digit; any other
// pattern is treated as a case-insensitive regular expression anchored to the
// whole code. Compiled patterns are cached process-wide; the cache holds only
// immutable values and is safe for concurrent use.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	p := strings.TrimSpace(pattern)
	if p == "" {
		return nil, fmt.Errorf("empty wildcard pattern")
	}

	norm := strings.ToUpper(spaceRun.ReplaceAllString(p, " "))
	if m := familyPattern.FindStringSubmatch(norm); m != nil {
		var b strings.Builder
		b.WriteString("^")
		b.WriteString(regexp.QuoteMeta(m[1]))
		b.WriteString(" ")
		for _, r := range m[2] {
			if r == 'X' {
				b.WriteString("[0-9]")
			} else {
				b.WriteRune(r)
			}
		}
		b.WriteString(regexp.QuoteMeta(m[3]))
		b.WriteString("$")
		return regexp.Compile(b.String())
	}

	re, err := regexp.Compile("(?i)^(?:" + p + ")$")
	if err != nil {
		return nil, fmt.Errorf("compile wildcard %q: %w", pattern, err)
	}
	return re, nil
}

// Matches reports whether the course code falls in the wildcard's family.
// An invalid pattern matches nothing.
func (w *Wildcard) Matches(code string) bool {
	re, err := CompilePattern(w.Pattern)
	if err != nil {
		return false
	}
	return re.MatchString(NormalizeCode(code))
}
