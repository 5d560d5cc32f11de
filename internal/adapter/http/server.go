package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/footfall-etl/internal/pipeline"
)

// PipelineService is the view of the pipeline the API needs.
type PipelineService interface {
	sharedobs.ReadinessChecker
	Latest() *pipeline.Snapshot
	Run(ctx context.Context) (*pipeline.Snapshot, error)
}

// Server exposes health, readiness, metrics, and the footfall API.
type Server struct {
	httpServer *http.Server
	pipeline   PipelineService
	loc        *time.Location
	logger     *slog.Logger
}

// NewServer creates an HTTP server. Dates in query parameters are interpreted
// in loc, which should match the feed's time zone.
func NewServer(addr string, p PipelineService, loc *time.Location, logger *slog.Logger) *Server {
	if loc == nil {
		loc = time.UTC
	}
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      60 * time.Second, // refresh runs the whole pipeline
			IdleTimeout:       60 * time.Second,
		},
		pipeline: p,
		loc:      loc,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(p))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/hours", s.withSnapshot(s.handleHours))
	mux.HandleFunc("GET /api/v1/days", s.withSnapshot(s.handleDays))
	mux.HandleFunc("GET /api/v1/summary", s.withSnapshot(s.handleSummary))
	mux.HandleFunc("GET /api/v1/benchmark", s.withSnapshot(s.handleBenchmark))
	mux.HandleFunc("GET /api/v1/export.xlsx", s.withSnapshot(s.handleExport))
	mux.HandleFunc("POST /api/v1/refresh", s.handleRefresh)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type snapshotHandler func(w http.ResponseWriter, r *http.Request, snap *pipeline.Snapshot)

// withSnapshot answers 503 until the first snapshot exists.
func (s *Server) withSnapshot(h snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := s.pipeline.Latest()
		if snap == nil {
			writeError(w, http.StatusServiceUnavailable, "no snapshot available yet")
			return
		}
		h(w, r, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
