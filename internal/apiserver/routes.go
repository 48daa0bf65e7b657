package apiserver

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/analytics"
	"github.com/ibrahimsafah/sn-itil-bsm-discovery/internal/hypergraph"
)

// registerHandlers registers all HTTP handlers.
func (s *Server) registerHandlers() {
	s.registerHealthEndpoints()
	s.registerGraphEndpoints()
	s.registerAnalysisEndpoints()
	s.registerOpsEndpoints()
}

// registerHealthEndpoints registers health and readiness check endpoints.
func (s *Server) registerHealthEndpoints() {
	s.router.HandleFunc("/api/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)
}

// registerGraphEndpoints registers the hypergraph snapshot endpoint.
func (s *Server) registerGraphEndpoints() {
	s.router.HandleFunc("/api/graph",
		s.instrument("graph", s.withMethod(http.MethodGet, s.handleGraph)))
}

// registerAnalysisEndpoints registers one GET endpoint per analytics
// module plus the combined report.
func (s *Server) registerAnalysisEndpoints() {
	register := func(path, name string, handler http.HandlerFunc) {
		s.router.HandleFunc(path,
			s.instrument(name, s.withMethod(http.MethodGet, s.limitConcurrency(handler))))
	}

	register("/api/analysis/centrality", "centrality", s.handleCentrality)
	register("/api/analysis/cascades", "cascades", s.handleCascades)
	register("/api/analysis/cooccurrence", "cooccurrence", s.handleCooccurrence)
	register("/api/analysis/anomalies", "anomalies", s.handleAnomalies)
	register("/api/analysis/communities", "communities", s.handleCommunities)
	register("/api/analysis/links", "links", s.handleLinks)
	register("/api/analysis/incidents", "incidents", s.handleIncidents)
	register("/api/analysis/impact", "impact", s.handleImpact)
	register("/api/analysis/report", "report", s.handleReport)
}

// registerOpsEndpoints registers the metrics and cache introspection
// endpoints.
func (s *Server) registerOpsEndpoints() {
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.router.HandleFunc("/api/cache/stats",
		s.withMethod(http.MethodGet, s.handleCacheStats))
}

// handleGraph serves the active hypergraph snapshot. With ?transposed=true
// the node/edge-swapped view is served instead.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	ds := s.currentDataset()
	if ds == nil {
		WriteError(w, http.StatusServiceUnavailable, "NO_DATASET", "no dataset loaded")
		return
	}

	g := ds.graph
	if r.URL.Query().Get("transposed") == "true" {
		g = hypergraph.Transpose(g)
	}
	_ = WriteSuccess(w, g.Snapshot())
}

// analysisFunc computes one module result over a dataset.
type analysisFunc func(e *analytics.Engine, ds *dataset) interface{}

// serveAnalysis runs one analytics module with caching. The cache key
// includes the dataset generation, so stale entries can never be served
// after a reload.
func (s *Server) serveAnalysis(w http.ResponseWriter, r *http.Request, endpoint string, fn analysisFunc, params ...string) {
	ds := s.currentDataset()
	if ds == nil {
		WriteError(w, http.StatusServiceUnavailable, "NO_DATASET", "no dataset loaded")
		return
	}

	key := MakeAnalysisKey(endpoint, ds.generation, params...)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.CacheHitsTotal.Inc()
			_ = WriteSuccess(w, cached)
			return
		}
		s.metrics.CacheMissesTotal.Inc()
	}

	tracer := s.getTracer("bsmd.api.analysis")
	_, span := tracer.Start(r.Context(), "analysis."+endpoint)
	span.SetAttributes(attribute.Int("graph.nodes", ds.graph.Stats.NodeCount))
	result := fn(s.engine.Load(), ds)
	span.End()

	if s.cache != nil {
		s.cache.Put(key, result)
	}
	_ = WriteSuccess(w, result)
}

func (s *Server) handleCentrality(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "centrality", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.Centrality(ds.graph)
	})
}

func (s *Server) handleCascades(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "cascades", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.Temporal(ds.changes)
	})
}

func (s *Server) handleCooccurrence(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "cooccurrence", func(e *analytics.Engine, ds *dataset) interface{} {
		return map[string]interface{}{
			"weighted": e.WeightedCooccurrence(ds.graph),
			"topPairs": hypergraph.Cooccurrence(ds.graph, hypergraph.TypeCI, e.Options().CooccurTopN),
		}
	})
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "anomalies", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.Anomalies(ds.graph)
	})
}

func (s *Server) handleCommunities(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "communities", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.Communities(ds.graph)
	})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "links", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.PredictLinks(ds.graph)
	})
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	s.serveAnalysis(w, r, "incidents", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.Incidents(ds.incidents)
	})
}

// handleImpact predicts change impact for the CI named by the ci query
// parameter. Both bare sys_ids and prefixed UIDs are accepted.
func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	ci := r.URL.Query().Get("ci")
	if ci == "" {
		WriteError(w, http.StatusBadRequest, "MISSING_PARAMETER", "query parameter ci is required")
		return
	}
	if !strings.HasPrefix(ci, "ci:") {
		ci = hypergraph.CIUID(ci)
	}

	s.serveAnalysis(w, r, "impact", func(e *analytics.Engine, ds *dataset) interface{} {
		return e.PredictImpact(ds.graph, ds.changes, ci)
	}, ci)
}

// handleReport runs every module and serves the combined report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ds := s.currentDataset()
	if ds == nil {
		WriteError(w, http.StatusServiceUnavailable, "NO_DATASET", "no dataset loaded")
		return
	}

	key := MakeAnalysisKey("report", ds.generation)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			s.metrics.CacheHitsTotal.Inc()
			_ = WriteSuccess(w, cached)
			return
		}
		s.metrics.CacheMissesTotal.Inc()
	}

	tracer := s.getTracer("bsmd.api.analysis")
	ctx, span := tracer.Start(r.Context(), "analysis.report")
	report, err := s.engine.Load().RunAll(ctx, ds.graph, ds.changes, ds.incidents)
	span.End()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "ANALYSIS_FAILED", err.Error())
		return
	}

	if s.cache != nil {
		s.cache.Put(key, report)
	}
	_ = WriteSuccess(w, report)
}

// handleCacheStats serves analysis cache statistics.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.cache == nil {
		_ = WriteSuccess(w, map[string]interface{}{"enabled": false})
		return
	}
	_ = WriteSuccess(w, s.cache.Stats())
}
