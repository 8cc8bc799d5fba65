package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/catalog"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

const testCatalogJSON = `{"courses": [
  {"department": "CMPUT", "courseCode": "CMPUT 301", "title": "Introduction to Software Engineering",
   "requirements": {"prerequisites": {"operator": "AND", "courses": ["CMPUT 201", "CMPUT 204"]}},
   "flattenedPrerequisites": ["CMPUT 201", "CMPUT 204"]},
  {"department": "CMPUT", "courseCode": "CMPUT 201", "title": "Practical Programming Methodology",
   "requirements": {"prerequisites": {"operator": "STANDALONE", "courses": ["CMPUT 175"]}},
   "flattenedPrerequisites": ["CMPUT 175"]},
  {"department": "CMPUT", "courseCode": "CMPUT 204", "title": "Algorithms I",
   "requirements": {"prerequisites": {"operator": "OR", "courses": ["CMPUT 175", "CMPUT 275"]}},
   "flattenedPrerequisites": ["CMPUT 175", "CMPUT 275"]},
  {"department": "CMPUT", "courseCode": "CMPUT 175", "title": "Introduction to the Foundations of Computation II"},
  {"department": "CMPUT", "courseCode": "CMPUT 275", "title": "Introduction to Tangible Computing II"}
]}`

func newTestServer(t *testing.T, cat catalog.Catalog) *Server {
	t.Helper()
	if cat == nil {
		mem, err := catalog.Load(strings.NewReader(testCatalogJSON))
		require.NoError(t, err)
		cat = mem
	}
	logger := log.New(&strings.Builder{})
	runner := pipeline.NewRunner(cat, nil, nil, logger)
	return NewServer(runner, Config{}, logger)
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealthz(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err, "server should assign a uuid")

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader), "caller id should be echoed")

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Header().Get(RequestIDHeader))
}

func TestGetCourse(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/api/courses/CMPUT%20301", "/api/courses/cmput301", "/api/courses/CMPUT-301"} {
		rec := do(t, s, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		var c catalog.Course
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
		assert.Equal(t, "CMPUT 301", c.ID(), path)
		assert.Equal(t, "CMPUT 201 and CMPUT 204", requirement.Format(c.Requirements.Prerequisites))
	}
}

func TestGetCourseErrors(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/courses/PHYS%20999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, errors.ErrCodeCourseNotFound, body.Error.Code)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)

	rec = do(t, s, http.MethodGet, "/api/courses/DROP%3BTABLE", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidCourseCode, decodeError(t, rec).Error.Code)
}

func TestClosure(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/closure?depth=1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res struct {
		Root     string `json:"root"`
		MaxDepth int    `json:"maxDepth"`
		Nodes    []struct {
			ID string `json:"id"`
		} `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "CMPUT 301", res.Root)
	assert.Equal(t, 1, res.MaxDepth)
	assert.Len(t, res.Nodes, 3)

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/closure?depth=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/closure?coreqs=perhaps", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAST(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/ast?mode=shallow", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res astResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "and(CMPUT 201, CMPUT 204)", res.Expression)
	assert.Equal(t, pipeline.ModeShallow, res.Mode)

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/ast", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.Expression, "CMPUT 175")

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/ast?mode=closure", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraph(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/graph", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Contains(t, rec.Body.String(), `"nodeType"`)

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/graph?mode=closure&format=dot", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Body.String(), "digraph"))

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/graph?format=png", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.ErrCodeInvalidFormat, decodeError(t, rec).Error.Code)

	rec = do(t, s, http.MethodGet, "/api/courses/CMPUT%20301/graph?mode=sideways", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheck(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodPost, "/api/courses/CMPUT%20301/check", `{"completed": ["CMPUT 201"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res pipeline.CheckResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Satisfied)
	assert.Equal(t, []string{"CMPUT 204"}, res.Unmet)

	rec = do(t, s, http.MethodPost, "/api/courses/CMPUT%20301/check", `{"completed": ["cmput201", "CMPUT 204"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Satisfied)

	rec = do(t, s, http.MethodPost, "/api/courses/CMPUT%20301/check", `{"done": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type failingCatalog struct{}

func (failingCatalog) Course(context.Context, string) (*catalog.Course, error) {
	return nil, catalog.ErrUnavailable
}

func (failingCatalog) Courses(context.Context, []string) (map[string]*catalog.Course, error) {
	return nil, catalog.ErrUnavailable
}

func TestCatalogUnavailable(t *testing.T) {
	rec := do(t, newTestServer(t, failingCatalog{}), http.MethodGet, "/api/courses/CMPUT%20301/graph", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.ErrCodeCatalogUnavailable, decodeError(t, rec).Error.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{errors.New(errors.ErrCodeCourseNotFound, "x"), http.StatusNotFound},
		{errors.New(errors.ErrCodeCatalogUnavailable, "x"), http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), "%v", tt.err)
	}
}
