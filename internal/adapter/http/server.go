package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/hazard-advisory/internal/domain"
	"github.com/couchcryptid/hazard-advisory/internal/engine"
)

// Advisor is the engine surface served over HTTP.
type Advisor interface {
	sharedobs.ReadinessChecker

	SupplyAdvisory(distanceMiles float64, category int) []string
	HazardProximity(ctx context.Context, origin domain.Coordinate) domain.AdvisoryResult[domain.HazardRecord]
	NearestFacilities(ctx context.Context, origin domain.Coordinate, keyword string) domain.AdvisoryResult[domain.FacilityRecord]
	Overview(ctx context.Context, origin domain.Coordinate, keyword string) engine.Overview
	ResolvePlace(ctx context.Context, query string) (domain.Coordinate, error)
	LastHazards() (domain.Snapshot[domain.HazardRecord], bool)
}

// Server exposes the advisory API alongside health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	advisor    Advisor
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /v1 advisory routes plus
// /healthz, /readyz, and /metrics.
func NewServer(addr string, advisor Advisor, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			// Overview may wait on two feeds plus reverse geocoding.
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		advisor: advisor,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(advisor))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/supplies", s.handleSupplies)
	mux.HandleFunc("GET /v1/hazards", s.handleHazards)
	mux.HandleFunc("GET /v1/facilities", s.handleFacilities)
	mux.HandleFunc("GET /v1/overview", s.handleOverview)

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
