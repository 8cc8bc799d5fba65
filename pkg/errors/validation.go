package errors

import (
	"strings"
	"unicode"
)

// maxCourseCodeLength bounds user-supplied course codes. Real codes are short
// ("CMPUT 174", "MATH 125A"); anything longer is almost certainly not a code.
const maxCourseCodeLength = 32

// ValidateCourseCode rejects input that cannot be a course code before it
// reaches a catalog query.
//
// The validation rules are intentionally conservative:
//   - No empty codes
//   - No control characters
//   - Only letters, digits, spaces and a single hyphen-free code shape
//   - Maximum length of 32 characters
//
// Shape checks ("letters, digits, optional suffix") belong to the catalog's
// course-code matcher, which is configurable; this function only screens
// unsafe input.
func ValidateCourseCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return New(ErrCodeInvalidCourseCode, "course code cannot be empty")
	}
	if len(code) > maxCourseCodeLength {
		return New(ErrCodeInvalidCourseCode, "course code too long (max %d characters)", maxCourseCodeLength)
	}
	for _, r := range code {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidCourseCode, "course code contains invalid control characters")
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return New(ErrCodeInvalidCourseCode, "course code contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateDepth checks a caller-supplied traversal depth.
func ValidateDepth(depth, max int) error {
	if depth < 0 {
		return New(ErrCodeInvalidInput, "depth cannot be negative: %d", depth)
	}
	if max > 0 && depth > max {
		return New(ErrCodeInvalidInput, "depth %d exceeds maximum %d", depth, max)
	}
	return nil
}
