package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Codec Metrics
	CodecBlocksTotal     *prometheus.CounterVec
	CodecBytesTotal      *prometheus.CounterVec
	CodecDuration        *prometheus.HistogramVec
	CodecErrorsTotal     *prometheus.CounterVec
	CodecCompressionRate prometheus.Gauge

	// Analysis Metrics
	TraversalPathsTotal    prometheus.Counter
	TraversalDuration      prometheus.Histogram
	BubblesDetectedTotal   prometheus.Counter
	TopologyClassification *prometheus.CounterVec

	// Document Metrics
	SectionsParsedTotal prometheus.Counter
	RecordsParsedTotal  *prometheus.CounterVec
	ParseWarningsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initCodecMetrics()
	r.initAnalysisMetrics()
	r.initDocumentMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
