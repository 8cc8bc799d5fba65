package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/ast"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/buildinfo"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/requirement"
)

// maxCheckBody bounds POST /check bodies.
const maxCheckBody = 64 << 10

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	code, err := courseParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.runner.Course(r.Context(), code)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleClosure(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Mode = pipeline.ModeClosure

	res, hit, err := s.runner.ClosureWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	writeJSON(w, http.StatusOK, res)
}

type astResponse struct {
	Course     string          `json:"course"`
	Mode       string          `json:"mode"`
	Expression string          `json:"expression"`
	Size       int             `json:"size"`
	AST        json.RawMessage `json:"ast"`
}

func (s *Server) handleAST(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Mode == pipeline.ModeClosure {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "ast mode must be full or shallow"))
		return
	}

	root, _, err := s.runner.AST(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := ast.MarshalJSON(root)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode ast"))
		return
	}
	writeJSON(w, http.StatusOK, astResponse{
		Course:     opts.Code,
		Mode:       opts.Mode,
		Expression: ast.String(root),
		Size:       ast.Size(root),
		AST:        data,
	})
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	g, hit, err := s.runner.GraphWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.runner.Render(r.Context(), g, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type checkRequest struct {
	Completed []string `json:"completed"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	code, err := courseParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req checkRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCheckBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body"))
		return
	}

	res, err := s.runner.Check(r.Context(), code, req.Completed)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// courseParam returns the unescaped {code} path parameter. Hyphens and
// underscores stand in for the space ("CMPUT-301").
func courseParam(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "code")
	code, err := url.PathUnescape(raw)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidCourseCode, err, "invalid course code %q", raw)
	}
	code = strings.NewReplacer("-", " ", "_", " ").Replace(code)
	if err := errors.ValidateCourseCode(code); err != nil {
		return "", err
	}
	return requirement.NormalizeCode(code), nil
}

// options merges query parameters into the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults
	opts.HighSchool = append([]string(nil), s.cfg.Defaults.HighSchool...)

	code, err := courseParam(r)
	if err != nil {
		return opts, err
	}
	opts.Code = code

	q := r.URL.Query()
	if v := q.Get("mode"); v != "" {
		opts.Mode = v
	}
	if v := q.Get("operator"); v != "" {
		opts.DefaultOperator = v
	}
	if v := q.Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "depth must be an integer, got %q", v)
		}
		opts.MaxDepth = n
	}
	for _, name := range []string{"coreqs", "refresh"} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
		}
		if name == "coreqs" {
			opts.Coreqs = b
		} else {
			opts.Refresh = b
		}
	}
	opts.Logger = s.logger
	return opts, opts.ValidateAndSetDefaults()
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}
