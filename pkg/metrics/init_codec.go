package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCodecMetrics() {
	r.CodecBlocksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsg_codec_blocks_total",
			Help: "Total number of BTSG blocks processed",
		},
		[]string{"direction", "block_type"},
	)

	r.CodecBytesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsg_codec_bytes_total",
			Help: "Total bytes handled by the BTSG codec",
		},
		[]string{"direction", "stage"},
	)

	r.CodecDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tsg_codec_duration_seconds",
			Help:    "BTSG encode/decode duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"direction"},
	)

	r.CodecErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsg_codec_errors_total",
			Help: "Total number of BTSG codec failures",
		},
		[]string{"direction", "kind"},
	)

	r.CodecCompressionRate = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "tsg_codec_compression_ratio",
			Help: "Compressed over uncompressed size of the last encoded stream",
		},
	)
}
