package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/ast"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/cache"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/closure"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/graph"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/observability"
)

// Runner encapsulates request execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the catalog, cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Catalog catalog.Catalog
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner over cat.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(cat catalog.Catalog, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Catalog: cat, Cache: c, Keyer: keyer, Logger: logger}
}

// Course returns the catalog record for code.
func (r *Runner) Course(ctx context.Context, code string) (*catalog.Course, error) {
	if err := errors.ValidateCourseCode(code); err != nil {
		return nil, err
	}
	return r.course(ctx, code)
}

func (r *Runner) course(ctx context.Context, code string) (*catalog.Course, error) {
	c, err := r.Catalog.Course(ctx, code)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "lookup %s", code)
	}
	if c == nil {
		return nil, errors.New(errors.ErrCodeCourseNotFound, "course %s not in catalog", code)
	}
	return c, nil
}

type invalidator interface {
	Invalidate(ctx context.Context, code string) error
}

// refresh drops the cached catalog record of code so a refreshed request
// sees the backend's current data.
func (r *Runner) refresh(ctx context.Context, code string) {
	inv, ok := r.Catalog.(invalidator)
	if !ok {
		return
	}
	if err := inv.Invalidate(ctx, code); err != nil {
		r.Logger.Warn("invalidate cached course", "course", code, "error", err)
	}
}

// ClosureWithCacheInfo resolves the closure of opts.Code and reports whether
// the result came from the cache.
func (r *Runner) ClosureWithCacheInfo(ctx context.Context, opts Options) (*closure.Result, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.ClosureKey(opts.Code, opts.ClosureKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var res closure.Result
			if err := json.Unmarshal(data, &res); err == nil {
				observability.Cache().OnCacheHit(ctx, "closure")
				return &res, true, nil
			}
			// Undecodable entries fall through to a fresh resolution.
		}
		observability.Cache().OnCacheMiss(ctx, "closure")
	} else {
		r.refresh(ctx, opts.Code)
	}

	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, ModeClosure, opts.Code)
	start := time.Now()

	res, err := closure.NewResolver(r.Catalog, opts.ClosureOptions(), r.Logger).Resolve(ctx, opts.Code)

	n := 0
	if res != nil {
		n = len(res.Nodes)
	}
	hooks.OnResolveComplete(ctx, ModeClosure, opts.Code, n, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	r.Logger.Debug("resolved closure", "course", opts.Code, "nodes", len(res.Nodes), "edges", len(res.Edges))

	if data, err := res.Marshal(); err == nil {
		r.store(ctx, "closure", key, data, cache.TTLClosure)
	}
	return res, false, nil
}

// Closure is ClosureWithCacheInfo without the cache hit info.
func (r *Runner) Closure(ctx context.Context, opts Options) (*closure.Result, error) {
	res, _, err := r.ClosureWithCacheInfo(ctx, opts)
	return res, err
}

// AST builds the requirement tree of opts.Code. In ModeShallow the tree is
// the course's own prerequisites; otherwise every reachable course is
// expanded in place. The returned node is nil when the course has no
// renderable prerequisites.
func (r *Runner) AST(ctx context.Context, opts Options) (ast.Node, *catalog.Course, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, err
	}

	if opts.Refresh {
		r.refresh(ctx, opts.Code)
	}

	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, opts.Mode, opts.Code)
	start := time.Now()

	root, course, err := r.buildAST(ctx, opts)

	hooks.OnResolveComplete(ctx, opts.Mode, opts.Code, ast.Size(root), time.Since(start), err)
	return root, course, err
}

func (r *Runner) buildAST(ctx context.Context, opts Options) (ast.Node, *catalog.Course, error) {
	course, err := r.course(ctx, opts.Code)
	if err != nil {
		return nil, nil, err
	}
	if opts.Mode == ModeShallow {
		return ast.FromCondition(course.Prerequisites(), opts.ASTOptions()), course, nil
	}

	courses, err := ast.Prefetch(ctx, r.Catalog, []string{opts.Code}, ast.DefaultPrefetchLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "prefetch %s", opts.Code)
	}
	r.Logger.Debug("prefetched courses", "course", opts.Code, "count", len(courses))

	e := ast.NewExpander(courses, opts.ASTOptions())
	e.Memoize = opts.Memoize
	e.Logger = r.Logger
	return e.ExpandCourse(opts.Code), course, nil
}

// GraphWithCacheInfo builds the graph for opts and reports whether it came
// from the cache.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.GraphKey(opts.Code, opts.GraphKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if g, err := graph.Read(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	var g *graph.Graph
	switch opts.Mode {
	case ModeClosure:
		res, err := r.Closure(ctx, opts)
		if err != nil {
			return nil, false, err
		}
		g = graph.FromClosure(res)
	default:
		root, course, err := r.AST(ctx, opts)
		if err != nil {
			return nil, false, err
		}
		g = graph.FromAST(root, graph.Target{ID: opts.Code, Label: course.Title})
	}

	r.Logger.Debug("built graph", "course", opts.Code, "mode", opts.Mode,
		"nodes", g.NodeCount(), "edges", g.EdgeCount())

	if data, err := graph.Marshal(g); err == nil {
		r.store(ctx, "graph", key, data, cache.TTLGraph)
	}
	return g, false, nil
}

// Graph is GraphWithCacheInfo without the cache hit info.
func (r *Runner) Graph(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.GraphWithCacheInfo(ctx, opts)
	return g, err
}

// Render encodes g in the given format.
func (r *Runner) Render(ctx context.Context, g *graph.Graph, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}
	switch format {
	case FormatDOT:
		return []byte(graph.ToDOT(g, graph.DOTOptions{ColorByDepth: true})), nil
	case FormatSVG:
		svg, err := graph.RenderSVG(ctx, graph.ToDOT(g, graph.DOTOptions{ColorByDepth: true}))
		if err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
		return svg, nil
	default:
		return graph.Marshal(g)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) store(ctx context.Context, kind, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "kind", kind, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, kind, len(data))
}
