// Package catalog provides course records and the lookup interface the
// resolvers consume.
//
// A [Catalog] answers single and batch lookups by course code. Codes are
// normalized with [requirement.NormalizeCode] before lookup, so "cmput174"
// and "CMPUT 174" name the same course. A missing course is not an error:
// Course returns (nil, nil) and Courses omits the code from its result.
//
// Implementations:
//
//   - [Memory]: an in-process catalog, typically loaded from a JSON file
//   - [Cached]: a read-through cache in front of another Catalog
//   - postgres.Catalog and mongo.Catalog in the subpackages
package catalog

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing datastore cannot be reached.
var ErrUnavailable = errors.New("catalog unavailable")

// Catalog looks up courses by code.
type Catalog interface {
	// Course returns the course with the given code, or nil if the catalog
	// has no such course.
	Course(ctx context.Context, code string) (*Course, error)

	// Courses returns the courses found among codes, keyed by normalized
	// code. Codes that are not in the catalog are absent from the map.
	Courses(ctx context.Context, codes []string) (map[string]*Course, error)
}
