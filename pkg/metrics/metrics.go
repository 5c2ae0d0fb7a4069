package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/common/expfmt"
)

// Record methods are safe on a nil *Registry so components can hold an
// optional registry without guarding every call.

// RecordBlock records one BTSG block in the given direction ("encode" or "decode")
func (r *Registry) RecordBlock(direction, blockType string, compressed, uncompressed int) {
	if r == nil {
		return
	}
	r.CodecBlocksTotal.WithLabelValues(direction, blockType).Inc()
	r.CodecBytesTotal.WithLabelValues(direction, "compressed").Add(float64(compressed))
	r.CodecBytesTotal.WithLabelValues(direction, "uncompressed").Add(float64(uncompressed))
}

// RecordCodecRun records a completed encode or decode
func (r *Registry) RecordCodecRun(direction string, duration time.Duration, ratio float64) {
	if r == nil {
		return
	}
	r.CodecDuration.WithLabelValues(direction).Observe(duration.Seconds())
	if direction == "encode" {
		r.CodecCompressionRate.Set(ratio)
	}
}

// RecordCodecError records a failed encode or decode
func (r *Registry) RecordCodecError(direction, kind string) {
	if r == nil {
		return
	}
	r.CodecErrorsTotal.WithLabelValues(direction, kind).Inc()
}

// RecordTraversal records the outcome of enumerating one section's paths
func (r *Registry) RecordTraversal(paths int, duration time.Duration) {
	if r == nil {
		return
	}
	r.TraversalPathsTotal.Add(float64(paths))
	r.TraversalDuration.Observe(duration.Seconds())
}

// RecordBubbles records detected bubble pairs
func (r *Registry) RecordBubbles(n int) {
	if r == nil {
		return
	}
	r.BubblesDetectedTotal.Add(float64(n))
}

// RecordClassification records the topology class of one section
func (r *Registry) RecordClassification(class string) {
	if r == nil {
		return
	}
	r.TopologyClassification.WithLabelValues(class).Inc()
}

// RecordRecord records one parsed record by its tag
func (r *Registry) RecordRecord(tag string) {
	if r == nil {
		return
	}
	r.RecordsParsedTotal.WithLabelValues(tag).Inc()
}

// RecordSection records one parsed graph section
func (r *Registry) RecordSection() {
	if r == nil {
		return
	}
	r.SectionsParsedTotal.Inc()
}

// RecordParseWarning records a skipped or degenerate record
func (r *Registry) RecordParseWarning(kind string) {
	if r == nil {
		return
	}
	r.ParseWarningsTotal.WithLabelValues(kind).Inc()
}

// WriteText writes every gathered metric family in the Prometheus text
// exposition format
func (r *Registry) WriteText(w io.Writer) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
