package storage

import (
	"errors"
	"strings"
	"testing"
)

func TestParseAttribute(t *testing.T) {
	tests := []struct {
		input   string
		want    Attribute
		wantErr bool
	}{
		{"ptc:i:1", Attribute{Tag: "ptc", Type: TypeInt, Value: "1"}, false},
		{"ptf:f:0.5", Attribute{Tag: "ptf", Type: TypeFloat, Value: "0.5"}, false},
		{"name:Z:test_value", Attribute{Tag: "name", Type: TypeString, Value: "test_value"}, false},
		{`data:J:{"key":"value"}`, Attribute{Tag: "data", Type: TypeJSON, Value: `{"key":"value"}`}, false},
		{"url:Z:http://x:80/a", Attribute{Tag: "url", Type: TypeString, Value: "http://x:80/a"}, false},
		{"ptc:i", Attribute{}, true},
		{"ptc", Attribute{}, true},
		{"ptc:x:1", Attribute{}, true},
		{"ptc:ii:1", Attribute{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAttribute(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAttribute(%q) expected error", tt.input)
				}
				if !errors.Is(err, ErrMalformedField) {
					t.Errorf("error %v should wrap ErrMalformedField", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAttribute(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAttribute(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String() = %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestAttributeAccessors(t *testing.T) {
	if v, err := IntAttribute("ptc", 42).AsInt(); err != nil || v != 42 {
		t.Errorf("AsInt() = %d, %v", v, err)
	}
	if _, err := StringAttribute("s", "x").AsInt(); err == nil {
		t.Error("AsInt on a string attribute should fail")
	}
	if v, err := FloatAttribute("ptf", 0.25).AsFloat(); err != nil || v != 0.25 {
		t.Errorf("AsFloat() = %v, %v", v, err)
	}
	if v, err := StringAttribute("s", "x").AsString(); err != nil || v != "x" {
		t.Errorf("AsString() = %q, %v", v, err)
	}

	js := Attribute{Tag: "j", Type: TypeJSON, Value: `{"k":[1,2]}`}
	v, err := js.AsJSON()
	if err != nil {
		t.Fatalf("AsJSON() failed: %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || len(m["k"].([]any)) != 2 {
		t.Errorf("AsJSON() = %#v", v)
	}
	if _, err := (Attribute{Tag: "j", Type: TypeJSON, Value: "{"}).AsJSON(); err == nil {
		t.Error("AsJSON on invalid JSON should fail")
	}
}

func TestAttributesSorted(t *testing.T) {
	var as Attributes
	as.Set(StringAttribute("b", "2"))
	as.Set(StringAttribute("a", "1"))
	as.Set(StringAttribute("b", "3"))

	sorted := as.Sorted()
	if len(sorted) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(sorted))
	}
	if sorted[0].Tag != "a" || sorted[1].Value != "3" {
		t.Errorf("Sorted() = %+v", sorted)
	}
}

func TestParseNode(t *testing.T) {
	line := "N\tn1\tchr1:+:1000-2000,3000-4000\tread1:SO,read2:IN,m1:2:SI\tACGT"
	node, err := ParseNode(strings.Split(line, "\t"))
	if err != nil {
		t.Fatalf("ParseNode failed: %v", err)
	}

	if node.ID != "n1" || node.Reference != "chr1" || node.Strand != Forward {
		t.Errorf("unexpected node header fields: %+v", node)
	}
	if len(node.Exons) != 2 || node.ReferenceStart() != 1000 || node.ReferenceEnd() != 4000 {
		t.Errorf("unexpected exons: %v", node.Exons)
	}
	if node.Exons.Span() != 2002 {
		t.Errorf("Span() = %d, want 2002", node.Exons.Span())
	}
	if introns := node.Exons.Introns(); len(introns) != 1 || introns[0] != (Interval{2001, 2999}) {
		t.Errorf("Introns() = %v", introns)
	}
	if len(node.Reads) != 3 {
		t.Fatalf("expected 3 reads, got %d", len(node.Reads))
	}
	if node.Reads[2].ID != "m1:2" || node.Reads[2].Identity != ReadSink {
		t.Errorf("read with colon parsed as %+v", node.Reads[2])
	}
	if !node.HasIntermediateRead() {
		t.Error("HasIntermediateRead() = false, want true")
	}
	if node.Sequence != "ACGT" {
		t.Errorf("Sequence = %q", node.Sequence)
	}
	if node.String() != line {
		t.Errorf("String() = %q, want %q", node.String(), line)
	}
}

func TestParseNode_Errors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"too few fields", "N\tn1\tchr1:+:1-2"},
		{"bad strand", "N\tn1\tchr1:*:1-2\tr1:SO"},
		{"no strand", "N\tn1\tchr1-1-2\tr1:SO"},
		{"bad interval", "N\tn1\tchr1:+:1_2\tr1:SO"},
		{"reversed interval", "N\tn1\tchr1:+:5-2\tr1:SO"},
		{"bad identity", "N\tn1\tchr1:+:1-2\tr1:XX"},
		{"empty id", "N\t\tchr1:+:1-2\tr1:SO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseNode(strings.Split(tt.line, "\t")); err == nil {
				t.Errorf("ParseNode(%q) expected error", tt.line)
			}
		})
	}
}

func TestParseStructuralVariant(t *testing.T) {
	sv, err := ParseStructuralVariant("chr1,chr2,2000,3000,splice")
	if err != nil {
		t.Fatalf("ParseStructuralVariant failed: %v", err)
	}
	want := StructuralVariant{"chr1", "chr2", 2000, 3000, "splice"}
	if sv != want {
		t.Errorf("got %+v, want %+v", sv, want)
	}
	if sv.String() != "chr1,chr2,2000,3000,splice" {
		t.Errorf("String() = %q", sv.String())
	}

	for _, bad := range []string{"chr1,chr2,2000,splice", "chr1,chr2,x,3000,splice", "chr1,chr2,1,y,splice"} {
		if _, err := ParseStructuralVariant(bad); err == nil {
			t.Errorf("ParseStructuralVariant(%q) expected error", bad)
		}
	}
}

func TestParseGroup(t *testing.T) {
	t.Run("unordered", func(t *testing.T) {
		g, err := ParseGroup([]string{"U", "u1", "n1 n2", "e1"})
		if err != nil {
			t.Fatalf("ParseGroup failed: %v", err)
		}
		if g.Kind != Unordered || strings.Join(g.ElementIDs(), ",") != "n1,n2,e1" {
			t.Errorf("unexpected group %+v", g)
		}
		if g.String() != "U\tu1\tn1 n2 e1" {
			t.Errorf("String() = %q", g.String())
		}
	})

	t.Run("ordered", func(t *testing.T) {
		g, err := ParseGroup([]string{"P", "p1", "n1+ e1- n2"})
		if err != nil {
			t.Fatalf("ParseGroup failed: %v", err)
		}
		want := []OrientedElement{{"n1", OrientForward}, {"e1", OrientReverse}, {"n2", NoOrientation}}
		for i, el := range g.Elements {
			if el != want[i] {
				t.Errorf("element %d = %+v, want %+v", i, el, want[i])
			}
		}
		if g.String() != "P\tp1\tn1+ e1- n2" {
			t.Errorf("String() = %q", g.String())
		}
	})

	t.Run("chain", func(t *testing.T) {
		if _, err := ParseGroup([]string{"C", "c1", "n1 e1 n2"}); err != nil {
			t.Errorf("valid chain rejected: %v", err)
		}
		if _, err := ParseGroup([]string{"C", "c1", "n1 e1"}); err == nil {
			t.Error("even-length chain should be rejected")
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseGroup([]string{"U", "u1"}); err == nil {
			t.Error("group without elements should be rejected")
		}
		if _, err := ParseGroup([]string{"P", "p1", "+"}); err == nil {
			t.Error("orientation without id should be rejected")
		}
	})
}

func TestHeaderString(t *testing.T) {
	h := Header{Tag: "TSG", Value: "1.0"}
	if h.String() != "H\tTSG\t1.0" {
		t.Errorf("String() = %q", h.String())
	}
}
