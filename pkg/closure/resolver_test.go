package closure

import (
	"context"
	"errors"
	"maps"
	"testing"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	cerrors "github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
)

func course(code string, flattened ...string) *catalog.Course {
	return &catalog.Course{Code: code, Title: code + " title", FlattenedPrerequisites: flattened}
}

// batchCounter counts batch lookups.
type batchCounter struct {
	*catalog.Memory
	batches int
	fail    error
}

func (b *batchCounter) Courses(ctx context.Context, codes []string) (map[string]*catalog.Course, error) {
	b.batches++
	if b.fail != nil {
		return nil, b.fail
	}
	return b.Memory.Courses(ctx, codes)
}

func resolve(t *testing.T, cat catalog.Catalog, root string, opts Options) *Result {
	t.Helper()
	res, err := NewResolver(cat, opts, nil).Resolve(context.Background(), root)
	if err != nil {
		t.Fatalf("Resolve(%s): %v", root, err)
	}
	return res
}

func edgeSet(res *Result) map[string]int {
	out := make(map[string]int)
	for _, e := range res.Edges {
		out[e.Source+"->"+e.Target] = e.Depth
	}
	return out
}

func TestResolveNoPrerequisites(t *testing.T) {
	res := resolve(t, catalog.NewMemory(course("CMPUT 174")), "cmput174", Options{})
	if len(res.Nodes) != 1 || len(res.Edges) != 0 {
		t.Fatalf("got %d nodes, %d edges; want 1, 0", len(res.Nodes), len(res.Edges))
	}
	if res.Nodes[0].ID != "CMPUT 174" || res.Nodes[0].Depth != 0 || !res.Nodes[0].Resolved {
		t.Errorf("root node = %+v", res.Nodes[0])
	}
	if res.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", res.MaxDepth, DefaultMaxDepth)
	}
}

func TestResolveCycle(t *testing.T) {
	cat := catalog.NewMemory(course("A 100", "B 100"), course("B 100", "A 100"))
	res := resolve(t, cat, "A 100", Options{})

	if len(res.Nodes) != 2 {
		t.Fatalf("nodes = %+v, want A and B once each", res.Nodes)
	}
	want := map[string]int{"A 100->B 100": 1, "B 100->A 100": 0}
	if got := edgeSet(res); !maps.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestResolveSelfReference(t *testing.T) {
	res := resolve(t, catalog.NewMemory(course("A 100", "A 100")), "A 100", Options{})
	if len(res.Nodes) != 1 {
		t.Errorf("nodes = %+v, want A 100 only", res.Nodes)
	}
	want := map[string]int{"A 100->A 100": 0}
	if got := edgeSet(res); !maps.Equal(got, want) {
		t.Errorf("edges = %v, want %v", got, want)
	}
}

func TestResolveKeepsEveryEdge(t *testing.T) {
	tests := []struct {
		name string
		cat  *catalog.Memory
		root string
		want map[string]int
	}{
		{
			name: "three node cycle",
			cat:  catalog.NewMemory(course("A 1", "B 1"), course("B 1", "C 1"), course("C 1", "A 1")),
			root: "A 1",
			want: map[string]int{"A 1->B 1": 1, "B 1->C 1": 2, "C 1->A 1": 0},
		},
		{
			name: "sibling cycle",
			cat:  catalog.NewMemory(course("R 1", "B 1", "C 1"), course("B 1", "C 1"), course("C 1", "B 1")),
			root: "R 1",
			want: map[string]int{"R 1->B 1": 1, "R 1->C 1": 1, "B 1->C 1": 1, "C 1->B 1": 1},
		},
		{
			name: "diamond with back edge",
			cat: catalog.NewMemory(
				course("A 1", "B 1", "C 1"),
				course("B 1", "D 1"),
				course("C 1", "D 1"),
				course("D 1", "A 1"),
			),
			root: "A 1",
			want: map[string]int{"A 1->B 1": 1, "A 1->C 1": 1, "B 1->D 1": 2, "C 1->D 1": 2, "D 1->A 1": 0},
		},
		{
			name: "duplicate entries",
			cat:  catalog.NewMemory(course("A 1", "B 1", "b1", "B 1"), course("B 1")),
			root: "A 1",
			want: map[string]int{"A 1->B 1": 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := resolve(t, tt.cat, tt.root, Options{})
			if got := edgeSet(res); !maps.Equal(got, tt.want) {
				t.Errorf("edges = %v, want %v", got, tt.want)
			}
			if len(res.Edges) != len(tt.want) {
				t.Errorf("edge list has %d entries, want %d without duplicates", len(res.Edges), len(tt.want))
			}
		})
	}
}

func TestResolveMinimumDepth(t *testing.T) {
	cat := catalog.NewMemory(
		course("A 1", "B 1", "C 1"),
		course("B 1"),
		course("C 1", "D 1"),
		course("D 1", "B 1"),
	)
	res := resolve(t, cat, "A 1", Options{})

	if n := res.Node("B 1"); n == nil || n.Depth != 1 {
		t.Fatalf("B 1 = %+v, want depth 1", n)
	}
	if n := res.Node("D 1"); n == nil || n.Depth != 2 {
		t.Errorf("D 1 = %+v, want depth 2", n)
	}
	edges := edgeSet(res)
	if d, ok := edges["D 1->B 1"]; !ok || d != 1 {
		t.Errorf("D 1->B 1 depth = %d (present %v), want 1", d, ok)
	}
	if len(res.Nodes) != 4 {
		t.Errorf("nodes = %d, want 4", len(res.Nodes))
	}
}

func TestResolveDepthCap(t *testing.T) {
	cat := catalog.NewMemory(
		course("A 1", "B 1"),
		course("B 1", "C 1"),
		course("C 1", "D 1"),
		course("D 1", "E 1"),
	)
	res := resolve(t, cat, "A 1", Options{MaxDepth: 2})
	if len(res.Nodes) != 3 {
		t.Fatalf("nodes = %+v, want A, B, C", res.Nodes)
	}
	if n := res.Node("C 1"); n == nil || !n.Resolved {
		t.Errorf("C 1 at the cap should be present and resolved: %+v", n)
	}
	if res.Node("D 1") != nil {
		t.Error("D 1 lies beyond the cap")
	}
}

func TestResolveUnresolvedAndText(t *testing.T) {
	cat := catalog.NewMemory(course("A 1", "ZZZ 999", "Consent of the Department", "consent of the department.", "MATH 30-1", "Math 31"))
	res := resolve(t, cat, "A 1", Options{HighSchool: []string{"math 30-1", "MATH 31"}})

	missing := res.Node("ZZZ 999")
	if missing == nil || missing.Resolved || missing.Type != NodeCourse {
		t.Errorf("unresolved node = %+v", missing)
	}
	text := res.Node("text:consent-of-the-department")
	if text == nil || text.Type != NodeText || text.Depth != 1 {
		t.Errorf("text node = %+v", text)
	}
	if len(res.Nodes) != 3 {
		t.Errorf("nodes = %+v, want root, ZZZ 999 and one text node", res.Nodes)
	}
	if len(res.Edges) != 2 {
		t.Errorf("edges = %+v, want 2", res.Edges)
	}
	if got := res.Courses(); len(got) != 1 || got[0] != "ZZZ 999" {
		t.Errorf("Courses() = %v", got)
	}
}

func TestResolveBatchesPerDepth(t *testing.T) {
	cat := &batchCounter{Memory: catalog.NewMemory(
		course("A 1", "B 1", "C 1", "D 1"),
		course("B 1", "E 1"),
		course("C 1", "E 1", "F 1"),
		course("D 1", "F 1"),
		course("E 1"),
		course("F 1"),
	)}
	res := resolve(t, cat, "A 1", Options{})
	if len(res.Nodes) != 6 {
		t.Errorf("nodes = %d, want 6", len(res.Nodes))
	}
	if cat.batches != 2 {
		t.Errorf("batch lookups = %d, want 2 (one per discovered level)", cat.batches)
	}
}

func TestResolveCoreqs(t *testing.T) {
	c := course("CMPUT 201", "CMPUT 175")
	c.FlattenedCorequisites = []string{"CMPUT 229"}
	res := resolve(t, catalog.NewMemory(c, course("CMPUT 229"), course("CMPUT 175")), "CMPUT 201", Options{Coreqs: true})
	if res.Node("CMPUT 229") == nil || res.Node("CMPUT 175") != nil {
		t.Errorf("coreq closure nodes = %+v", res.Nodes)
	}
}

func TestResolveErrors(t *testing.T) {
	_, err := NewResolver(catalog.NewMemory(), Options{}, nil).Resolve(context.Background(), "NOPE 1")
	if !cerrors.Is(err, cerrors.ErrCodeCourseNotFound) {
		t.Errorf("missing root error = %v, want COURSE_NOT_FOUND", err)
	}

	boom := errors.New("connection reset")
	failing := &batchCounter{Memory: catalog.NewMemory(course("A 1", "B 1")), fail: boom}
	_, err = NewResolver(failing, Options{}, nil).Resolve(context.Background(), "A 1")
	if !cerrors.Is(err, cerrors.ErrCodeCatalogUnavailable) || !errors.Is(err, boom) {
		t.Errorf("catalog failure error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewResolver(catalog.NewMemory(course("A 1", "B 1")), Options{}, nil).Resolve(ctx, "A 1")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled error = %v, want context.Canceled", err)
	}
}

func TestResultOrdering(t *testing.T) {
	cat := catalog.NewMemory(course("A 1", "C 1", "B 1"), course("B 1"), course("C 1"))
	res := resolve(t, cat, "A 1", Options{})
	ids := []string{res.Nodes[0].ID, res.Nodes[1].ID, res.Nodes[2].ID}
	if ids[0] != "A 1" || ids[1] != "B 1" || ids[2] != "C 1" {
		t.Errorf("node order = %v", ids)
	}
	if res.Nodes[1].Label != "B 1 title" {
		t.Errorf("label = %q", res.Nodes[1].Label)
	}
}
