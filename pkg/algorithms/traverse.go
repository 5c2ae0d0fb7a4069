package algorithms

import (
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/parallel"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

type readSet map[string]struct{}

// intersect returns the reads of a also present in b
func (a readSet) intersect(b readSet) readSet {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(readSet, len(a))
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// sharesAny reports whether a and b have a read in common
func (a readSet) sharesAny(b readSet) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for id := range a {
		if _, ok := b[id]; ok {
			return true
		}
	}
	return false
}

// PathEnumerator enumerates the read-continuous paths of one section.
//
// A path starts at a source node (in-degree 0) that carries reads and grows
// one edge at a time. The active reads of a path are those shared by every
// node on it; an extension is allowed only if some active read is also on
// the next node. A node carrying an intermediate read additionally needs at
// least one successor sharing a continuing read, unless it has no outgoing
// edges at all. A path is complete when it reaches a node with no outgoing
// edges, or one whose every successor is already on the path.
type PathEnumerator struct {
	section *storage.GraphSection
	opts    options

	reads        []readSet
	intermediate []bool
}

type frontierEntry struct {
	node   storage.NodeIndex
	path   *storage.Path
	active readSet
}

type sourceResult struct {
	paths []*storage.Path
	err   error
}

// NewPathEnumerator creates an enumerator over section
func NewPathEnumerator(section *storage.GraphSection, opts ...Option) *PathEnumerator {
	return &PathEnumerator{
		section: section,
		opts:    applyOptions(opts),
	}
}

// Traverse returns every complete path, grouped by source in index order.
// Within one path the node and edge order follows the walk.
func (pe *PathEnumerator) Traverse() ([]*storage.Path, error) {
	timer := logging.StartTimer(pe.opts.logger, "traversal finished",
		logging.Component("traverse"), logging.GraphID(pe.section.ID))

	pe.precompute()

	sources := pe.section.Sources()
	if len(sources) == 0 {
		pe.opts.logger.Debug("no source nodes", logging.GraphID(pe.section.ID))
		return []*storage.Path{}, nil
	}

	results, err := parallel.Map(pe.opts.workers, len(sources), func(i int) sourceResult {
		paths, err := pe.fromSource(sources[i])
		return sourceResult{paths: paths, err: err}
	}, parallel.WithLogger(pe.opts.logger))
	if err != nil {
		return nil, err
	}

	paths := make([]*storage.Path, 0)
	for _, r := range results {
		if r.err != nil {
			timer.EndError(r.err)
			return nil, r.err
		}
		paths = append(paths, r.paths...)
	}

	elapsed := timer.End(logging.Count(len(paths)), logging.Int("sources", len(sources)))
	pe.opts.metrics.RecordTraversal(len(paths), elapsed)
	return paths, nil
}

// precompute caches each node's read ids and whether it carries an
// intermediate read
func (pe *PathEnumerator) precompute() {
	n := pe.section.NodeCount()
	pe.reads = make([]readSet, n)
	pe.intermediate = make([]bool, n)
	for i := 0; i < n; i++ {
		node := pe.section.NodeByIndex(storage.NodeIndex(i))
		pe.reads[i] = node.ReadIDs()
		pe.intermediate[i] = node.HasIntermediateRead()
	}
}

// fromSource runs the breadth-first expansion rooted at src
func (pe *PathEnumerator) fromSource(src storage.NodeIndex) ([]*storage.Path, error) {
	g := pe.section
	if len(pe.reads[src]) == 0 {
		pe.opts.logger.Debug("skipping source without reads",
			logging.GraphID(g.ID), logging.NodeID(g.NodeByIndex(src).ID))
		return nil, nil
	}

	start := storage.NewPath(g)
	start.AddNode(src)
	queue := []frontierEntry{{node: src, path: start, active: pe.reads[src]}}

	var paths []*storage.Path
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		open := 0
		for _, e := range g.OutEdges(cur.node) {
			_, next := g.EdgeEndpoints(e)
			if onPath(cur.path, next) {
				continue
			}
			open++

			continuing := cur.active.intersect(pe.reads[next])
			if len(continuing) == 0 {
				continue
			}
			if pe.intermediate[next] && g.OutDegree(next) > 0 && !pe.continues(next, continuing) {
				continue
			}

			extended := cur.path.Clone()
			extended.AddEdge(e)
			extended.AddNode(next)
			queue = append(queue, frontierEntry{node: next, path: extended, active: continuing})
		}

		if open == 0 {
			if err := cur.path.Validate(); err != nil {
				return nil, err
			}
			paths = append(paths, cur.path)
		}
	}
	return paths, nil
}

// continues reports whether some successor of node shares one of reads
func (pe *PathEnumerator) continues(node storage.NodeIndex, reads readSet) bool {
	for _, succ := range pe.section.Successors(node) {
		if reads.sharesAny(pe.reads[succ]) {
			return true
		}
	}
	return false
}

func onPath(p *storage.Path, n storage.NodeIndex) bool {
	for _, x := range p.Nodes {
		if x == n {
			return true
		}
	}
	return false
}

// Traverse enumerates the read-continuous paths of section
func Traverse(section *storage.GraphSection, opts ...Option) ([]*storage.Path, error) {
	return NewPathEnumerator(section, opts...).Traverse()
}
