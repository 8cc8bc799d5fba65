package ast

import (
	"context"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// DefaultPrefetchLimit bounds how many distinct codes Prefetch requests.
const DefaultPrefetchLimit = 2000

// Prefetch loads the courses reachable from codes through prerequisite
// trees, one batch lookup per level. Courses past limit are not fetched and
// therefore stay unexpanded leaves. A non-positive limit means
// [DefaultPrefetchLimit].
func Prefetch(ctx context.Context, cat catalog.Catalog, codes []string, limit int) (CourseMap, error) {
	if limit <= 0 {
		limit = DefaultPrefetchLimit
	}
	out := make(CourseMap)
	seen := make(map[string]bool)

	var frontier []string
	push := func(code string) {
		id := requirement.NormalizeCode(code)
		if id == "" || seen[id] || len(seen) >= limit {
			return
		}
		seen[id] = true
		frontier = append(frontier, id)
	}
	for _, c := range codes {
		push(c)
	}

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := cat.Courses(ctx, frontier)
		if err != nil {
			return nil, err
		}
		level := frontier
		frontier = nil
		for _, id := range level {
			course, ok := found[id]
			if !ok {
				continue
			}
			out[id] = course
			for _, ref := range requirement.CourseCodes(course.Prerequisites()) {
				push(ref)
			}
		}
	}
	return out, nil
}
