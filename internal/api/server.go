// Package api exposes the prerequisite engine over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /version
//	GET  /api/courses/{code}
//	GET  /api/courses/{code}/closure?depth=&coreqs=&refresh=
//	GET  /api/courses/{code}/ast?mode=full|shallow&operator=
//	GET  /api/courses/{code}/graph?mode=full|shallow|closure&format=json|dot|svg
//	POST /api/courses/{code}/check   {"completed": ["CMPUT 174", ...]}
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with the error code from pkg/errors.
package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/errors"
	"github.com/LawrenceVelilla/UCourseMap-sub000/pkg/pipeline"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// DefaultRequestTimeout bounds a request when Config leaves it unset.
const DefaultRequestTimeout = 30 * time.Second

// Config holds server settings.
type Config struct {
	// Defaults seeds every request's pipeline options; query parameters
	// override individual fields.
	Defaults       pipeline.Options
	RequestTimeout time.Duration
}

// Server routes HTTP requests to a pipeline runner.
type Server struct {
	router chi.Router
	runner *pipeline.Runner
	cfg    Config
	logger *log.Logger
}

// NewServer builds a server over runner. A nil logger means log.Default().
func NewServer(runner *pipeline.Runner, cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{
		router: chi.NewRouter(),
		runner: runner,
		cfg:    cfg,
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(requestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Get("/version", s.handleVersion)

	s.router.Route("/api/courses/{code}", func(r chi.Router) {
		r.Get("/", s.handleCourse)
		r.Get("/closure", s.handleClosure)
		r.Get("/ast", s.handleAST)
		r.Get("/graph", s.handleGraph)
		r.Post("/check", s.handleCheck)
	})
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID reuses a caller-supplied X-Request-ID or assigns a fresh uuid.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// RequestIDFrom returns the request id stored by the server, or "".
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", RequestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"requestId,omitempty"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestIDFrom(r.Context()), "status", status, "error", err)
	} else {
		s.logger.Warn("request failed", "id", RequestIDFrom(r.Context()), "status", status, "error", err)
	}

	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	switch {
	case code != "":
	case stderrors.Is(err, context.DeadlineExceeded):
		code, msg = errors.ErrCodeCatalogUnavailable, "request timed out"
	default:
		code, msg = errors.ErrCodeInternal, "internal error"
	}
	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: msg},
		RequestID: RequestIDFrom(r.Context()),
	})
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCourseCode,
		errors.ErrCodeInvalidCondition, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeCourseNotFound:
		return http.StatusNotFound
	case errors.ErrCodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
