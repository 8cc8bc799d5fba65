package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several catalogs (e.g. one per institution or per
// academic year) share one Redis instance.
//
// Example usage:
//
//	// Keys for the 2025-2026 calendar
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "calendar:2025:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CourseKey generates a prefixed key for a catalog record.
func (k *ScopedKeyer) CourseKey(code string) string {
	return k.prefix + k.inner.CourseKey(code)
}

// ClosureKey generates a prefixed key for a closure result.
func (k *ScopedKeyer) ClosureKey(code string, opts ClosureKeyOpts) string {
	return k.prefix + k.inner.ClosureKey(code, opts)
}

// GraphKey generates a prefixed key for a rendered graph.
func (k *ScopedKeyer) GraphKey(code string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(code, opts)
}
