package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// ProgramName is recorded in the PG header of written documents
const ProgramName = "tsg"

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteTo writes the document as TSG text: headers, then each section's G
// line, nodes, edges, groups and attribute lines, then links. Placeholder
// nodes and chain-synthesized edges are not written since parsing
// recreates them.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	lines := d.lines()
	for _, line := range lines {
		bw.WriteString(line)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return cw.n, fmt.Errorf("failed to write TSG: %w", err)
	}
	return cw.n, nil
}

// WriteFile writes the document to path, replacing any existing file
func (d *Document) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create TSG file: %w", err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Text returns the document as TSG text
func (d *Document) Text() string {
	var b strings.Builder
	d.WriteTo(&b)
	return b.String()
}

func (d *Document) lines() []string {
	var out []string

	hasPG := false
	for _, h := range d.headers {
		out = append(out, h.String())
		if h.Tag == "PG" && h.Value == ProgramName {
			hasPG = true
		}
	}
	if !hasPG {
		out = append(out, storage.Header{Tag: "PG", Value: ProgramName}.String())
	}

	for _, g := range d.sections {
		if g.ID == DefaultGraphID && g.IsEmpty() {
			continue
		}
		out = append(out, sectionLines(g)...)
	}

	for _, l := range d.links {
		out = append(out, l.String())
	}
	return out
}

func withAttributes(prefix string, attrs storage.Attributes) string {
	if len(attrs) == 0 {
		return prefix
	}
	parts := []string{prefix}
	for _, a := range attrs.Sorted() {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, "\t")
}

func sectionLines(g *storage.GraphSection) []string {
	out := []string{withAttributes("G\t"+g.ID, g.Attributes)}
	var attrLines []string

	// a placeholder node is written back implicitly by any declared edge
	// touching it; only those may carry attribute lines
	implied := make(map[storage.NodeIndex]bool)
	for _, e := range g.EdgeIndices() {
		if g.EdgeByIndex(e).IsPlaceholder() {
			continue
		}
		src, dst := g.EdgeEndpoints(e)
		implied[src], implied[dst] = true, true
	}

	for _, idx := range g.NodeIndices() {
		n := g.NodeByIndex(idx)
		if n.IsPlaceholder() {
			if !implied[idx] {
				continue
			}
		} else {
			out = append(out, n.String())
		}
		if len(n.Attributes) > 0 {
			attrLines = append(attrLines, withAttributes("A\tN\t"+n.ID, n.Attributes))
		}
	}

	for _, idx := range g.EdgeIndices() {
		e := g.EdgeByIndex(idx)
		if e.IsPlaceholder() {
			continue
		}
		src, dst := g.EdgeEndpoints(idx)
		out = append(out, strings.Join([]string{
			"E", e.ID, g.NodeByIndex(src).ID, g.NodeByIndex(dst).ID, e.SV.String(),
		}, "\t"))
		if len(e.Attributes) > 0 {
			attrLines = append(attrLines, withAttributes("A\tE\t"+e.ID, e.Attributes))
		}
	}

	for _, grp := range g.Groups() {
		out = append(out, grp.String())
		if len(grp.Attributes) > 0 {
			attrLines = append(attrLines, withAttributes("A\t"+grp.Kind.Tag()+"\t"+grp.ID, grp.Attributes))
		}
	}

	return append(out, attrLines...)
}
