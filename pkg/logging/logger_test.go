package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
		{Level(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"Info", InfoLevel},
		{"WARN", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	t.Run("Duration", func(t *testing.T) {
		f := Duration("timeout", 5*time.Second)
		if f.Key != "timeout" || f.Value != "5s" {
			t.Errorf("Duration() = %+v", f)
		}
	})

	t.Run("Error", func(t *testing.T) {
		f := Error(errors.New("bad block"))
		if f.Key != "error" || f.Value != "bad block" {
			t.Errorf("Error() = %+v", f)
		}
	})

	t.Run("Error_nil", func(t *testing.T) {
		f := Error(nil)
		if f.Key != "error" || f.Value != nil {
			t.Errorf("Error(nil) = %+v", f)
		}
	})

	t.Run("domain", func(t *testing.T) {
		cases := map[string]Field{
			"graph_id":   GraphID("g1"),
			"node_id":    NodeID("n1"),
			"edge_id":    EdgeID("e1"),
			"group_id":   GroupID("c1"),
			"tag":        RecordTag("X"),
			"block_type": BlockType("node"),
		}
		for key, f := range cases {
			if f.Key != key {
				t.Errorf("field key = %q, want %q", f.Key, key)
			}
		}
		if f := Line(7); f.Key != "line" || f.Value != 7 {
			t.Errorf("Line() = %+v", f)
		}
	})
}

func TestJSONLogger_BasicLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	logger.Info("section parsed", GraphID("g1"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}

	if entry.Level != "INFO" {
		t.Errorf("Level = %v, want INFO", entry.Level)
	}
	if entry.Message != "section parsed" {
		t.Errorf("Message = %v, want 'section parsed'", entry.Message)
	}
	if entry.Fields["graph_id"] != "g1" {
		t.Errorf("Fields[graph_id] = %v, want g1", entry.Fields["graph_id"])
	}
	if entry.Time == "" {
		t.Error("Time field is empty")
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(lines))
	}

	var warnEntry LogEntry
	if err := json.Unmarshal([]byte(lines[0]), &warnEntry); err != nil {
		t.Fatalf("Failed to unmarshal WARN entry: %v", err)
	}
	if warnEntry.Level != "WARN" {
		t.Errorf("First entry level = %v, want WARN", warnEntry.Level)
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("btsg"), String("direction", "encode"))
	child.Info("block written", BlockType("node"))

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if entry.Fields["component"] != "btsg" {
		t.Errorf("component field = %v, want btsg", entry.Fields["component"])
	}
	if entry.Fields["direction"] != "encode" {
		t.Errorf("direction field = %v, want encode", entry.Fields["direction"])
	}
	if entry.Fields["block_type"] != "node" {
		t.Errorf("block_type field = %v, want node", entry.Fields["block_type"])
	}
}

func TestJSONLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestJSONLogger_NoFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("bare")

	if strings.Contains(buf.String(), "fields") {
		t.Errorf("expected fields to be omitted, got %s", buf.String())
	}
}

func TestTextLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTextLogger(&buf, InfoLevel).With(Component("parser"))

	logger.Debug("hidden")
	logger.Warn("unknown record tag", Line(3), RecordTag("X"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry should be filtered: %q", out)
	}
	if !strings.Contains(out, "WARN unknown record tag") {
		t.Errorf("missing level and message: %q", out)
	}
	// fields are sorted by key
	if !strings.Contains(out, "component=parser line=3 tag=X") {
		t.Errorf("unexpected field rendering: %q", out)
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	if _, ok := New("text", &buf, InfoLevel).(*TextLogger); !ok {
		t.Error("New(text) should return a TextLogger")
	}
	if _, ok := New("json", &buf, InfoLevel).(*JSONLogger); !ok {
		t.Error("New(json) should return a JSONLogger")
	}
	if _, ok := New("", &buf, InfoLevel).(*JSONLogger); !ok {
		t.Error("New with unknown format should fall back to JSON")
	}
}

func TestNopLogger(t *testing.T) {
	logger := OrNop(nil)
	logger.Info("ignored")
	logger.With(String("a", "b")).Error("ignored")
	if logger.GetLevel() != InfoLevel {
		t.Errorf("NopLogger level = %v, want InfoLevel", logger.GetLevel())
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, DebugLevel)

	op := StartTimer(logger, "encode", Operation("compress"))
	elapsed := op.End(Count(3))
	if elapsed < 0 {
		t.Errorf("elapsed = %v, want >= 0", elapsed)
	}

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if entry.Fields["operation"] != "compress" {
		t.Errorf("operation field = %v", entry.Fields["operation"])
	}
	if _, ok := entry.Fields["latency"]; !ok {
		t.Error("latency field missing")
	}
	if entry.Fields["count"] != float64(3) {
		t.Errorf("count field = %v, want 3", entry.Fields["count"])
	}

	buf.Reset()
	op.EndError(errors.New("boom"))
	if !strings.Contains(buf.String(), `"error":"boom"`) {
		t.Errorf("EndError output missing error: %s", buf.String())
	}
}
