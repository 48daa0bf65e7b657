package apiserver

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/analytics"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/logging"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/models"
)

// TracingProvider is the subset of the tracing component the server needs.
type TracingProvider interface {
	GetTracer(name string) trace.Tracer
	IsEnabled() bool
}

// Options configures the API server.
type Options struct {
	Port                  int
	MaxConcurrentRequests int
	Cache                 AnalysisCacheConfig
	Analytics             analytics.Options
	TracingProvider       TracingProvider
	// Registry receives the server metrics. A private registry is created
	// when nil.
	Registry *prometheus.Registry
}

// Server serves the hypergraph and analytics endpoints over HTTP.
type Server struct {
	port     int
	server   *http.Server
	router   *http.ServeMux
	logger   *logging.Logger
	metrics  *Metrics
	registry *prometheus.Registry
	cache    *AnalysisCache // nil when caching is disabled
	sem      chan struct{}

	engine     atomic.Pointer[analytics.Engine]
	state      atomic.Pointer[dataset]
	generation atomic.Uint64

	tracingProvider TracingProvider
}

// New creates an API server. A dataset must be installed with SetDataset
// before analysis endpoints return data; until then they answer 503.
func New(opts Options) (*Server, error) {
	if opts.Port < 1 || opts.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", opts.Port)
	}
	if opts.MaxConcurrentRequests < 1 {
		opts.MaxConcurrentRequests = 16
	}

	s := &Server{
		port:            opts.Port,
		router:          http.NewServeMux(),
		logger:          logging.GetLogger("api"),
		registry:        opts.Registry,
		sem:             make(chan struct{}, opts.MaxConcurrentRequests),
		tracingProvider: opts.TracingProvider,
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = NewMetrics(s.registry)
	s.engine.Store(analytics.NewEngine(opts.Analytics))

	if opts.Cache.Enabled {
		cache, err := NewAnalysisCache(opts.Cache, s.logger)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}

	s.registerHandlers()
	s.configureHTTPServer(opts.Port)
	return s, nil
}

// configureHTTPServer creates the HTTP server with CORS middleware and
// timeouts sized for full-report computations over large datasets.
func (s *Server) configureHTTPServer(port int) {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.corsMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// SetDataset installs a new dataset, invalidating every cached analysis.
func (s *Server) SetDataset(changes []models.ChangeRecord, incidents []models.IncidentRecord) {
	gen := s.generation.Add(1)
	ds := newDataset(changes, incidents, gen)
	s.state.Store(ds)

	if s.cache != nil {
		s.cache.Clear()
	}

	s.metrics.GraphNodes.Set(float64(ds.graph.Stats.NodeCount))
	s.metrics.GraphEdges.Set(float64(ds.graph.Stats.EdgeCount))
	s.metrics.ChangeRecords.Set(float64(len(changes)))
	s.metrics.IncidentRecords.Set(float64(len(incidents)))

	s.logger.InfoWithFields("dataset installed",
		logging.Field("generation", gen),
		logging.Field("nodes", ds.graph.Stats.NodeCount),
		logging.Field("edges", ds.graph.Stats.EdgeCount),
		logging.Field("incidents", len(incidents)),
	)
}

// UpdateAnalytics swaps the engine options, for example after a config
// hot-reload. Cached analyses are flushed since they depend on the
// thresholds.
func (s *Server) UpdateAnalytics(opts analytics.Options) {
	s.engine.Store(analytics.NewEngine(opts))
	s.generation.Add(1)
	if s.cache != nil {
		s.cache.Clear()
	}
	s.logger.Info("analytics options updated")
}

// Start implements the lifecycle.Component interface.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting API server on port %d", s.port)

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error: %v", err)
		}
	}()

	return nil
}

// Stop implements the lifecycle.Component interface.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping API server")

	done := make(chan error, 1)
	go func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done <- s.server.Shutdown(shutdownCtx)
	}()

	select {
	case err := <-done:
		if err != nil {
			s.logger.Error("HTTP server shutdown error: %v", err)
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Warn("API server shutdown timeout")
		return ctx.Err()
	}
}

// Name implements the lifecycle.Component interface.
func (s *Server) Name() string {
	return "API Server"
}

// GetPort returns the port the server listens on.
func (s *Server) GetPort() int {
	return s.port
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.router)
}

// currentDataset returns the active dataset, or nil before the first load.
func (s *Server) currentDataset() *dataset {
	return s.state.Load()
}

// getTracer returns a tracer for the given name.
func (s *Server) getTracer(name string) trace.Tracer {
	if s.tracingProvider != nil && s.tracingProvider.IsEnabled() {
		return s.tracingProvider.GetTracer(name)
	}
	return otel.GetTracerProvider().Tracer(name)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = WriteSuccess(w, map[string]interface{}{"status": "healthy"})
}

// handleReady reports readiness: the server is ready once a dataset is
// installed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ready := s.currentDataset() != nil

	w.Header().Set("Content-Type", "application/json")
	if ready {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = WriteJSON(w, map[string]interface{}{"ready": ready})
}
