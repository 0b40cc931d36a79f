// Package metrics holds the Prometheus collectors for graph builds, layout
// runs and catalog traffic.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Graph build metrics
	GraphBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_graph_build_duration_seconds",
			Help:    "Duration of graph builds from seed fetch to published result",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"}, // "session", "oneshot"
	)

	GraphNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_graph_nodes",
			Help: "Number of nodes in the latest published graph",
		},
	)

	GraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_graph_edges",
			Help: "Number of edges in the latest published graph",
		},
	)

	GraphVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_graph_version",
			Help: "Version of the latest published graph",
		},
	)

	StaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_graph_stale_results_total",
			Help: "Build results dropped because a newer version was submitted",
		},
	)

	SeedFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_graph_seed_failures_total",
			Help: "Seeds that could not be resolved through the catalog",
		},
	)

	// Layout metrics
	LayoutDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_graph_layout_duration_seconds",
			Help:    "Duration of layout runs",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"algorithm"},
	)

	// Catalog metrics
	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_graph_catalog_requests_total",
			Help: "Upstream catalog requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: "success", "not_found", "error"
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_graph_catalog_request_duration_seconds",
			Help:    "Duration of upstream catalog requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_graph_cache_hits_total",
			Help: "Catalog cache hits by table",
		},
		[]string{"table"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_graph_cache_misses_total",
			Help: "Catalog cache misses by table",
		},
		[]string{"table"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_graph_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_graph_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// SSE metrics
	Subscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_graph_sse_subscribers",
			Help: "Active server-sent event subscribers by topic",
		},
		[]string{"topic"},
	)
)
