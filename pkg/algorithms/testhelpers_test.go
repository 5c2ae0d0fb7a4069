package algorithms

import (
	"strings"
	"testing"

	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// sectionBuilder assembles small sections for tests. Reads are given as
// "r1" (source identity) or "r1:IN".
type sectionBuilder struct {
	t *testing.T
	g *storage.GraphSection
	n int
}

func newSection(t *testing.T) *sectionBuilder {
	t.Helper()
	return &sectionBuilder{t: t, g: storage.NewGraphSection("test")}
}

func (b *sectionBuilder) node(id string, reads ...string) *sectionBuilder {
	b.t.Helper()
	node := storage.Node{ID: id, Reference: "chr1", Exons: storage.Exons{{Start: 1, End: 10}}}
	for _, r := range reads {
		read := storage.Read{ID: r}
		if strings.Contains(r, ":") {
			parsed, err := storage.ParseRead(r)
			if err != nil {
				b.t.Fatalf("bad read %q: %v", r, err)
			}
			read = parsed
		}
		node.Reads = append(node.Reads, read)
	}
	b.g.AddNode(node)
	return b
}

// edge adds source->sink with a generated edge id
func (b *sectionBuilder) edge(source, sink string) *sectionBuilder {
	b.t.Helper()
	b.n++
	id := "e" + source + sink
	if _, ok := b.g.EdgeIndexOf(id); ok {
		id += strings.Repeat("'", b.n)
	}
	if _, err := b.g.AddEdge(source, sink, storage.Edge{ID: id}); err != nil {
		b.t.Fatalf("AddEdge(%s, %s) failed: %v", source, sink, err)
	}
	return b
}

func (b *sectionBuilder) build() *storage.GraphSection { return b.g }

// pathNames renders each path as dash-joined node ids
func pathNames(t *testing.T, paths []*storage.Path) []string {
	t.Helper()
	names := make([]string, len(paths))
	for i, p := range paths {
		ids, err := p.NodeIDs()
		if err != nil {
			t.Fatalf("NodeIDs failed: %v", err)
		}
		names[i] = strings.Join(ids, "-")
	}
	return names
}

func idx(t *testing.T, g *storage.GraphSection, id string) storage.NodeIndex {
	t.Helper()
	i, ok := g.NodeIndexOf(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return i
}
