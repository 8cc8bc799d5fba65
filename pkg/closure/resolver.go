package closure

import (
	"context"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// Resolver computes closures against a catalog. It holds no per-request
// state and is safe for concurrent use.
type Resolver struct {
	Catalog catalog.Catalog
	Options Options
	Logger  *log.Logger
}

// NewResolver creates a resolver. A nil logger means log.Default().
func NewResolver(cat catalog.Catalog, opts Options, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{Catalog: cat, Options: opts, Logger: logger}
}

// state is the bookkeeping of one resolution.
type state struct {
	nodes   map[string]*Node
	edgeSet map[[2]string]bool
	edges   [][2]string
}

// Resolve computes the closure of root.
//
// It fails only when the root course is not in the catalog, when the
// catalog itself fails, or when ctx is done between depth levels.
func (r *Resolver) Resolve(ctx context.Context, root string) (*Result, error) {
	opts := r.Options.withDefaults()
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	pattern := opts.CodePattern
	if pattern == nil {
		pattern = requirement.DefaultCodePattern
	}
	highSchool := opts.highSchoolSet()

	rootID := requirement.NormalizeCode(root)
	rootCourse, err := r.Catalog.Course(ctx, rootID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "lookup %s", rootID)
	}
	if rootCourse == nil {
		return nil, errors.New(errors.ErrCodeCourseNotFound, "course %s not in catalog", rootID)
	}

	s := &state{
		nodes:   map[string]*Node{rootID: {ID: rootID, Type: NodeCourse, Label: rootCourse.Title, Resolved: true, Course: rootCourse}},
		edgeSet: map[[2]string]bool{},
	}

	frontier := []string{rootID}
	for depth := 0; depth < opts.MaxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sort.Strings(frontier)

		var discovered []string
		for _, src := range frontier {
			for _, entry := range s.nodes[src].Course.Flattened(opts.Coreqs) {
				entry = strings.TrimSpace(entry)
				if entry == "" || highSchool[strings.ToUpper(entry)] {
					continue
				}

				var target string
				if requirement.IsCourseCode(entry, pattern) {
					target = requirement.NormalizeCode(entry)
					if highSchool[target] {
						continue
					}
					if _, ok := s.nodes[target]; !ok {
						s.nodes[target] = &Node{ID: target, Type: NodeCourse, Depth: depth + 1}
						discovered = append(discovered, target)
					} else if s.nodes[target].Depth <= depth {
						logger.Debug("prerequisite revisited", "from", src, "to", target)
					}
				} else {
					target = requirement.TextKey(entry)
					if _, ok := s.nodes[target]; !ok {
						s.nodes[target] = &Node{ID: target, Type: NodeText, Label: entry, Depth: depth + 1}
					}
				}
				s.link(src, target)
			}
		}

		if len(discovered) == 0 {
			break
		}
		found, err := r.Catalog.Courses(ctx, discovered)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeCatalogUnavailable, err, "lookup %d courses at depth %d", len(discovered), depth+1)
		}
		frontier = frontier[:0]
		for _, id := range discovered {
			c := found[id]
			if c == nil {
				logger.Debug("unresolved prerequisite", "course", id, "depth", depth+1)
				continue
			}
			n := s.nodes[id]
			n.Course, n.Label, n.Resolved = c, c.Title, true
			frontier = append(frontier, id)
		}
	}

	return s.result(rootID, opts), nil
}

// link records the edge src → target once. Revisited targets keep the
// edge; they are only never expanded again.
func (s *state) link(src, target string) {
	key := [2]string{src, target}
	if s.edgeSet[key] {
		return
	}
	s.edgeSet[key] = true
	s.edges = append(s.edges, key)
}

func (s *state) result(root string, opts Options) *Result {
	res := &Result{
		Root:     root,
		MaxDepth: opts.MaxDepth,
		Coreqs:   opts.Coreqs,
		Nodes:    make([]Node, 0, len(s.nodes)),
		Edges:    make([]Edge, 0, len(s.edges)),
	}
	for _, n := range s.nodes {
		res.Nodes = append(res.Nodes, *n)
	}
	sort.Slice(res.Nodes, func(i, j int) bool {
		a, b := res.Nodes[i], res.Nodes[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return a.ID < b.ID
	})
	for _, e := range s.edges {
		res.Edges = append(res.Edges, Edge{Source: e[0], Target: e[1], Depth: s.nodes[e[1]].Depth})
	}
	return res
}
