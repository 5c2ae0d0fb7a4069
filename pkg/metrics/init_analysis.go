package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.TraversalPathsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tsg_traversal_paths_total",
			Help: "Total number of read-continuous paths enumerated",
		},
	)

	r.TraversalDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tsg_traversal_duration_seconds",
			Help:    "Path enumeration duration per graph section in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
	)

	r.BubblesDetectedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tsg_bubbles_detected_total",
			Help: "Total number of bubble pairs detected",
		},
	)

	r.TopologyClassification = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsg_topology_classifications_total",
			Help: "Graph sections classified, by topology class",
		},
		[]string{"class"},
	)
}

func (r *Registry) initDocumentMetrics() {
	r.SectionsParsedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tsg_sections_parsed_total",
			Help: "Total number of graph sections parsed",
		},
	)

	r.RecordsParsedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsg_records_parsed_total",
			Help: "Total number of records parsed, by record tag",
		},
		[]string{"tag"},
	)

	r.ParseWarningsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsg_parse_warnings_total",
			Help: "Total number of skipped or degenerate input records",
		},
		[]string{"kind"},
	)
}
