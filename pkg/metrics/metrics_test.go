package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.CodecBlocksTotal == nil || r.TraversalPathsTotal == nil || r.SectionsParsedTotal == nil {
		t.Error("metrics not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordBlock(t *testing.T) {
	r := NewRegistry()

	r.RecordBlock("encode", "node", 40, 100)
	r.RecordBlock("encode", "node", 10, 50)
	r.RecordBlock("decode", "edge", 5, 9)

	blocks, err := r.CodecBlocksTotal.GetMetricWithLabelValues("encode", "node")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if got := counterValue(t, blocks); got != 2 {
		t.Errorf("encode/node blocks = %v, want 2", got)
	}

	compressed, _ := r.CodecBytesTotal.GetMetricWithLabelValues("encode", "compressed")
	if got := counterValue(t, compressed); got != 50 {
		t.Errorf("compressed bytes = %v, want 50", got)
	}
	uncompressed, _ := r.CodecBytesTotal.GetMetricWithLabelValues("encode", "uncompressed")
	if got := counterValue(t, uncompressed); got != 150 {
		t.Errorf("uncompressed bytes = %v, want 150", got)
	}
}

func TestRecordCodecRun(t *testing.T) {
	r := NewRegistry()
	r.RecordCodecRun("encode", 10*time.Millisecond, 0.25)
	r.RecordCodecRun("decode", 5*time.Millisecond, 0)

	var metric dto.Metric
	if err := r.CodecCompressionRate.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 0.25 {
		t.Errorf("compression ratio = %v, want 0.25", metric.Gauge.GetValue())
	}

	hist, err := r.CodecDuration.GetMetricWithLabelValues("decode")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	metric.Reset()
	if err := hist.(prometheus.Histogram).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 1 {
		t.Errorf("decode sample count = %d, want 1", metric.Histogram.GetSampleCount())
	}
}

func TestRecordAnalysis(t *testing.T) {
	r := NewRegistry()
	r.RecordTraversal(3, time.Millisecond)
	r.RecordTraversal(2, time.Millisecond)
	r.RecordBubbles(4)
	r.RecordClassification("equi-path")

	if got := counterValue(t, r.TraversalPathsTotal); got != 5 {
		t.Errorf("paths = %v, want 5", got)
	}
	if got := counterValue(t, r.BubblesDetectedTotal); got != 4 {
		t.Errorf("bubbles = %v, want 4", got)
	}
	class, _ := r.TopologyClassification.GetMetricWithLabelValues("equi-path")
	if got := counterValue(t, class); got != 1 {
		t.Errorf("classification = %v, want 1", got)
	}
}

func TestRecordDocument(t *testing.T) {
	r := NewRegistry()
	r.RecordSection()
	r.RecordRecord("N")
	r.RecordRecord("N")
	r.RecordParseWarning("unknown_tag")
	r.RecordCodecError("decode", "truncated")

	if got := counterValue(t, r.SectionsParsedTotal); got != 1 {
		t.Errorf("sections = %v, want 1", got)
	}
	n, _ := r.RecordsParsedTotal.GetMetricWithLabelValues("N")
	if got := counterValue(t, n); got != 2 {
		t.Errorf("N records = %v, want 2", got)
	}
	w, _ := r.ParseWarningsTotal.GetMetricWithLabelValues("unknown_tag")
	if got := counterValue(t, w); got != 1 {
		t.Errorf("warnings = %v, want 1", got)
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry
	// none of these may panic
	r.RecordBlock("encode", "node", 1, 1)
	r.RecordCodecRun("encode", time.Second, 1)
	r.RecordCodecError("encode", "io")
	r.RecordTraversal(1, time.Second)
	r.RecordBubbles(1)
	r.RecordClassification("x")
	r.RecordRecord("N")
	r.RecordSection()
	r.RecordParseWarning("x")
}

func TestWriteText(t *testing.T) {
	r := NewRegistry()
	r.RecordBlock("encode", "header", 10, 20)
	r.RecordTraversal(7, time.Millisecond)

	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`tsg_codec_blocks_total{block_type="header",direction="encode"} 1`,
		"tsg_traversal_paths_total 7",
		"# TYPE tsg_traversal_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGetPrometheusRegistry(t *testing.T) {
	r := NewRegistry()
	r.RecordSection()

	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "tsg_sections_parsed_total" {
			found = true
		}
	}
	if !found {
		t.Error("tsg_sections_parsed_total not gathered")
	}
}
