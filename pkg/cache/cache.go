// Package cache provides the storage behind read-through caching of catalog
// lookups and resolution results.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled, tests)
//   - [FileCache]: one JSON file per entry, for CLI usage
//   - [MemoryCache]: in-process LRU, for a single API instance
//   - [RedisCache]: shared cache for multi-instance deployments
//
// # Populate Contract
//
// Every backend must tolerate concurrent Set calls for the same key. Callers
// only ever store values that are equivalent for a given key (a course
// record, or a result computed from the same inputs), so whichever write
// lands last leaves an equivalent value behind. No caller holds a lock while
// waiting on a backend.
//
// # Keys
//
// A [Keyer] derives keys from request parameters. [DefaultKeyer] hashes
// option structs so that results computed with different depths or filters
// never collide; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Default TTLs per value type.
const (
	TTLCourse  = 24 * time.Hour // catalog records change once per term at most
	TTLClosure = 6 * time.Hour
	TTLGraph   = 6 * time.Hour
)

// Keyer derives cache keys.
type Keyer interface {
	// CourseKey is the key of a single catalog record.
	CourseKey(code string) string
	// ClosureKey is the key of a closure resolution result.
	ClosureKey(code string, opts ClosureKeyOpts) string
	// GraphKey is the key of a rendered requirement graph.
	GraphKey(code string, opts GraphKeyOpts) string
}

// ClosureKeyOpts holds every option that changes a closure result.
type ClosureKeyOpts struct {
	MaxDepth   int      `json:"max_depth"`
	Coreqs     bool     `json:"coreqs,omitempty"`
	HighSchool []string `json:"high_school,omitempty"` // sorted
	// CodePattern is the source of the course-code pattern, empty for the
	// default.
	CodePattern string `json:"code_pattern,omitempty"`
}

// GraphKeyOpts holds every option that changes a rendered graph.
type GraphKeyOpts struct {
	Mode            string `json:"mode"`
	MaxDepth        int    `json:"max_depth,omitempty"`
	DefaultOperator string `json:"default_operator,omitempty"`
	CodePattern     string `json:"code_pattern,omitempty"`

	// Closure graphs only.
	Coreqs     bool     `json:"coreqs,omitempty"`
	HighSchool []string `json:"high_school,omitempty"` // sorted
}

// DefaultKeyer produces keys of the form "kind:<identifier>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// CourseKey returns "course:<code>". Codes are expected to be normalized.
func (DefaultKeyer) CourseKey(code string) string {
	return "course:" + code
}

// ClosureKey returns "closure:<hash(code, opts)>".
func (DefaultKeyer) ClosureKey(code string, opts ClosureKeyOpts) string {
	return hashKey("closure", code, opts)
}

// GraphKey returns "graph:<hash(code, opts)>".
func (DefaultKeyer) GraphKey(code string, opts GraphKeyOpts) string {
	return hashKey("graph", code, opts)
}
