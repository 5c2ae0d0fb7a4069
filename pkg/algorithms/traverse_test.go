package algorithms

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/metrics"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// TestTraverse_ReadContinuity checks that an intermediate node only passes
// reads that continue past it
func TestTraverse_ReadContinuity(t *testing.T) {
	g := newSection(t).
		node("n1", "r1").
		node("n2", "r2").
		node("n3", "r1:IN", "r2:IN").
		node("n4", "r1").
		edge("n1", "n3").
		edge("n3", "n2").
		edge("n3", "n4").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	got := pathNames(t, paths)
	if !slices.Equal(got, []string{"n1-n3-n4"}) {
		t.Errorf("paths = %v, want [n1-n3-n4]", got)
	}
	for _, name := range got {
		if strings.Contains(name, "n1-n3-n2") {
			t.Errorf("path %s breaks read continuity", name)
		}
	}
}

func TestTraverse_Linear(t *testing.T) {
	g := newSection(t).
		node("a", "r1", "r2").
		node("b", "r1").
		node("c", "r1", "r3").
		edge("a", "b").
		edge("b", "c").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	p := paths[0]
	if p.Len() != 3 || len(p.Edges) != 2 {
		t.Errorf("path has %d nodes and %d edges", p.Len(), len(p.Edges))
	}
	if super, _ := p.IsSuper(); !super {
		t.Error("path sharing r1 should be super")
	}
}

func TestTraverse_Branching(t *testing.T) {
	g := newSection(t).
		node("s", "r1", "r2").
		node("a", "r1").
		node("b", "r2").
		node("t", "r1", "r2").
		edge("s", "a").
		edge("s", "b").
		edge("a", "t").
		edge("b", "t").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	got := pathNames(t, paths)
	want := []string{"s-a-t", "s-b-t"}
	if !slices.Equal(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestTraverse_SkipsSourcesWithoutReads(t *testing.T) {
	g := newSection(t).
		node("bare").
		node("x", "r1").
		node("y", "r1").
		edge("bare", "y").
		edge("x", "y").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if got := pathNames(t, paths); !slices.Equal(got, []string{"x-y"}) {
		t.Errorf("paths = %v, want [x-y]", got)
	}
}

func TestTraverse_IntermediateTerminus(t *testing.T) {
	// an intermediate read on a node without outgoing edges still ends a path
	g := newSection(t).
		node("a", "r1").
		node("b", "r1:IN").
		edge("a", "b").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if got := pathNames(t, paths); !slices.Equal(got, []string{"a-b"}) {
		t.Errorf("paths = %v, want [a-b]", got)
	}
}

func TestTraverse_CycleTerminates(t *testing.T) {
	g := newSection(t).
		node("a", "r1").
		node("b", "r1").
		node("c", "r1").
		edge("a", "b").
		edge("b", "c").
		edge("c", "b").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if got := pathNames(t, paths); !slices.Equal(got, []string{"a-b-c"}) {
		t.Errorf("paths = %v, want [a-b-c]", got)
	}
}

func TestTraverse_NoSources(t *testing.T) {
	g := newSection(t).
		node("a", "r1").
		node("b", "r1").
		edge("a", "b").
		edge("b", "a").
		build()

	paths, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", pathNames(t, paths))
	}

	empty, err := Traverse(storage.NewGraphSection("empty"))
	if err != nil || len(empty) != 0 {
		t.Errorf("empty section: %v, %v", empty, err)
	}
}

func TestTraverse_WorkersMatchSequential(t *testing.T) {
	b := newSection(t)
	for i := 0; i < 12; i++ {
		b.node(fmt.Sprintf("s%d", i), "r1", fmt.Sprintf("x%d", i))
		b.node(fmt.Sprintf("m%d", i), "r1")
		b.edge(fmt.Sprintf("s%d", i), fmt.Sprintf("m%d", i))
	}
	b.node("sink", "r1")
	for i := 0; i < 12; i++ {
		b.edge(fmt.Sprintf("m%d", i), "sink")
	}
	g := b.build()

	sequential, err := Traverse(g)
	if err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}
	concurrent, err := Traverse(g, WithWorkers(4))
	if err != nil {
		t.Fatalf("Traverse with workers failed: %v", err)
	}
	if !slices.Equal(pathNames(t, sequential), pathNames(t, concurrent)) {
		t.Errorf("concurrent order differs:\n%v\n%v", pathNames(t, sequential), pathNames(t, concurrent))
	}
	if len(sequential) != 12 {
		t.Errorf("expected 12 paths, got %d", len(sequential))
	}
}

func TestTraverse_RecordsMetricsAndLogs(t *testing.T) {
	g := newSection(t).node("a", "r1").node("b", "r1").edge("a", "b").build()

	reg := metrics.NewRegistry()
	var buf bytes.Buffer
	logger := logging.NewJSONLogger(&buf, logging.DebugLevel)

	if _, err := Traverse(g, WithMetrics(reg), WithLogger(logger)); err != nil {
		t.Fatalf("Traverse failed: %v", err)
	}

	var out bytes.Buffer
	if err := reg.WriteText(&out); err != nil {
		t.Fatalf("WriteText failed: %v", err)
	}
	if !strings.Contains(out.String(), "tsg_traversal_paths_total 1") {
		t.Errorf("paths metric not recorded:\n%s", out.String())
	}
	if !strings.Contains(buf.String(), "traversal finished") {
		t.Errorf("timer not logged: %s", buf.String())
	}
}

type randomEdge struct{ From, To int }

func genRandomSection() gopter.Gen {
	return gopter.CombineGens(
		gen.SliceOfN(7, gen.SliceOfN(2, gen.IntRange(0, 3))),
		gen.SliceOf(gopter.CombineGens(gen.IntRange(0, 6), gen.IntRange(0, 6)).Map(func(v []any) randomEdge {
			return randomEdge{From: v[0].(int), To: v[1].(int)}
		})),
	).Map(func(v []any) *storage.GraphSection {
		reads := v[0].([][]int)
		edges := v[1].([]randomEdge)
		if len(edges) > 12 {
			edges = edges[:12]
		}
		g := storage.NewGraphSection("random")
		for i, rs := range reads {
			node := storage.Node{ID: fmt.Sprintf("n%d", i), Reference: "chr1", Exons: storage.Exons{{Start: 1, End: 2}}}
			for j, r := range rs {
				identity := storage.ReadSource
				if j == 1 {
					identity = storage.ReadIntermediate
				}
				node.Reads = append(node.Reads, storage.Read{ID: fmt.Sprintf("r%d", r), Identity: identity})
			}
			g.AddNode(node)
		}
		for i, e := range edges {
			g.AddEdge(fmt.Sprintf("n%d", e.From), fmt.Sprintf("n%d", e.To), storage.Edge{ID: fmt.Sprintf("e%d", i)})
		}
		return g
	})
}

// TestTraverse_PathInvariants checks that every produced path is well formed
// and carries a read shared by all of its nodes
func TestTraverse_PathInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 150
	properties := gopter.NewProperties(parameters)

	properties.Property("paths are valid and read-continuous", prop.ForAll(
		func(g *storage.GraphSection) bool {
			paths, err := Traverse(g)
			if err != nil {
				return false
			}
			for _, p := range paths {
				if len(p.Nodes) != len(p.Edges)+1 || p.Validate() != nil {
					return false
				}
				common := g.NodeByIndex(p.Nodes[0]).ReadIDs()
				for _, n := range p.Nodes[1:] {
					reads := g.NodeByIndex(n).ReadIDs()
					for id := range common {
						if _, ok := reads[id]; !ok {
							delete(common, id)
						}
					}
				}
				if len(common) == 0 {
					return false
				}
				for i, e := range p.Edges {
					src, dst := g.EdgeEndpoints(e)
					if src != p.Nodes[i] || dst != p.Nodes[i+1] {
						return false
					}
				}
			}
			return true
		},
		genRandomSection(),
	))

	properties.TestingRun(t)
}
