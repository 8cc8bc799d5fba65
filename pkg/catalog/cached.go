package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/cache"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/observability"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// DefaultConcurrency bounds the fan-out of batch lookups in [Cached].
const DefaultConcurrency = 8

// Cached is a read-through cache in front of another Catalog, keyed by
// normalized course code.
//
// Concurrent misses for the same code within one process share a single
// backend call. Across processes, racing writers store equivalent values,
// so whichever write lands last is correct. Absent courses are cached too.
type Cached struct {
	backend     Catalog
	cache       cache.Cache
	keyer       cache.Keyer
	ttl         time.Duration
	concurrency int
	logger      *log.Logger
	group       singleflight.Group
}

// CachedOption configures a Cached catalog.
type CachedOption func(*Cached)

// WithTTL sets the entry lifetime. Defaults to [cache.TTLCourse].
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) { c.ttl = ttl }
}

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) CachedOption {
	return func(c *Cached) {
		if k != nil {
			c.keyer = k
		}
	}
}

// WithConcurrency bounds how many backend lookups a batch runs at once.
func WithConcurrency(n int) CachedOption {
	return func(c *Cached) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCached wraps backend with store. A nil store disables caching.
func NewCached(backend Catalog, store cache.Cache, opts ...CachedOption) *Cached {
	if store == nil {
		store = cache.NewNullCache()
	}
	c := &Cached{
		backend:     backend,
		cache:       store,
		keyer:       cache.NewDefaultKeyer(),
		ttl:         cache.TTLCourse,
		concurrency: DefaultConcurrency,
		logger:      log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var nullCourse = []byte("null")

// Course implements [Catalog].
func (c *Cached) Course(ctx context.Context, code string) (*Course, error) {
	id := requirement.NormalizeCode(code)
	key := c.keyer.CourseKey(id)

	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		if course, ok := decodeCached(data); ok {
			observability.Cache().OnCacheHit(ctx, "course")
			return course, nil
		}
		c.logger.Debug("discarding undecodable cache entry", "key", key)
	}
	observability.Cache().OnCacheMiss(ctx, "course")

	// The shared lookup outlives any single caller: one waiter giving up
	// must not fail the others on the same key.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		course, err := c.backend.Course(flightCtx, id)
		if err != nil {
			return nil, err
		}
		c.store(flightCtx, key, course)
		return course, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Course), nil
	}
}

// Courses implements [Catalog] by fanning out single lookups, so that every
// code goes through the cache.
func (c *Cached) Courses(ctx context.Context, codes []string) (map[string]*Course, error) {
	ids := dedupe(codes)
	found := make([]*Course, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			course, err := c.Course(gctx, id)
			if err != nil {
				return err
			}
			found[i] = course
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Course, len(ids))
	for i, id := range ids {
		if found[i] != nil {
			out[id] = found[i]
		}
	}
	return out, nil
}

// Invalidate drops the cached entry for code.
func (c *Cached) Invalidate(ctx context.Context, code string) error {
	return c.cache.Delete(ctx, c.keyer.CourseKey(requirement.NormalizeCode(code)))
}

func (c *Cached) store(ctx context.Context, key string, course *Course) {
	data := nullCourse
	if course != nil {
		var err error
		if data, err = json.Marshal(course); err != nil {
			c.logger.Warn("encode course for cache", "key", key, "error", err)
			return
		}
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "course", len(data))
}

func decodeCached(data []byte) (*Course, bool) {
	if bytes.Equal(data, nullCourse) {
		return nil, true
	}
	var course Course
	if err := json.Unmarshal(data, &course); err != nil {
		return nil, false
	}
	return &course, true
}

// dedupe normalizes codes and drops blanks and repeats, keeping order.
func dedupe(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		id := requirement.NormalizeCode(code)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

var _ Catalog = (*Cached)(nil)
