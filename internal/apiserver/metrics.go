package apiserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for API observability.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec // Requests by endpoint and status code
	RequestDuration  *prometheus.HistogramVec
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	GraphNodes       prometheus.Gauge
	GraphEdges       prometheus.Gauge
	ChangeRecords    prometheus.Gauge
	IncidentRecords  prometheus.Gauge
}

// NewMetrics creates Prometheus metrics for the API server. The registerer
// parameter allows flexible registration (e.g., global registry, test
// registry).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bsmd_api_requests_total",
		Help: "Total number of API requests by endpoint and status code",
	}, []string{"endpoint", "status"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bsmd_api_request_duration_seconds",
		Help:    "API request duration by endpoint",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bsmd_analysis_cache_hits_total",
		Help: "Total number of analysis cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bsmd_analysis_cache_misses_total",
		Help: "Total number of analysis cache misses",
	})

	graphNodes := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bsmd_graph_nodes",
		Help: "Number of nodes in the active hypergraph",
	})

	graphEdges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bsmd_graph_edges",
		Help: "Number of hyperedges in the active hypergraph",
	})

	changeRecords := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bsmd_change_records",
		Help: "Number of change records in the active dataset",
	})

	incidentRecords := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bsmd_incident_records",
		Help: "Number of incident records in the active dataset",
	})

	reg.MustRegister(requestsTotal, requestDuration, cacheHits, cacheMisses,
		graphNodes, graphEdges, changeRecords, incidentRecords)

	return &Metrics{
		RequestsTotal:    requestsTotal,
		RequestDuration:  requestDuration,
		CacheHitsTotal:   cacheHits,
		CacheMissesTotal: cacheMisses,
		GraphNodes:       graphNodes,
		GraphEdges:       graphEdges,
		ChangeRecords:    changeRecords,
		IncidentRecords:  incidentRecords,
	}
}
