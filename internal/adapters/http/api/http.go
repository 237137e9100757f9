// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/okian/attrition/internal/domain/views"
	"github.com/okian/attrition/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Views derives the dashboard views; department "" selects everything.
	Views(ctx context.Context, department string) (views.Views, error)
	// Departments lists the selectable departments sorted ascending.
	Departments(ctx context.Context) ([]string, error)
	// DatasetID identifies the loaded snapshot, or "" when nothing is loaded.
	DatasetID() string
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	departmentsHandler *DepartmentsHandler
	viewsHandler       *ViewsHandler
	exportHandler      *ExportHandler

	rateLimit int
	logger    logger.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit caps /api/* requests per client IP per minute. Zero disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute >= 0 {
			s.rateLimit = perMinute
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}

	s.healthHandler = NewHealthHandler(statsProvider)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.departmentsHandler = NewDepartmentsHandler(deps)
	s.viewsHandler = NewViewsHandler(deps)
	s.exportHandler = NewExportHandler(deps, s.logger)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	limit := s.limiter()

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(HandleMetrics, "metrics"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/departments", MetricsMiddleware(limit(s.departmentsHandler.HandleDepartments), "departments"))
	mux.HandleFunc("/api/views", MetricsMiddleware(limit(s.viewsHandler.HandleViews), "views"))
	mux.HandleFunc("/api/views/export.csv", MetricsMiddleware(limit(s.exportHandler.HandleExport), "export"))
}

// limiter returns one shared per-IP limiter for all /api routes.
func (s *Server) limiter() func(http.HandlerFunc) http.HandlerFunc {
	if s.rateLimit == 0 {
		return func(h http.HandlerFunc) http.HandlerFunc { return h }
	}
	mw := httprate.Limit(s.rateLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Code:    "rate_limited",
				Message: http.StatusText(http.StatusTooManyRequests),
			})
		}),
	)
	return func(h http.HandlerFunc) http.HandlerFunc {
		return mw(h).ServeHTTP
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure picks status and code from err.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}
