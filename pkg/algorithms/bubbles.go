package algorithms

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// Bubble is a pair of distinct node sequences that leave the same source
// node and meet again at the same sink node
type Bubble struct {
	First  []storage.NodeIndex
	Second []storage.NodeIndex
}

// Source returns the node both branches start from
func (b Bubble) Source() storage.NodeIndex { return b.First[0] }

// Sink returns the node both branches converge on
func (b Bubble) Sink() storage.NodeIndex { return b.First[len(b.First)-1] }

// Balanced reports whether both branches have the same number of nodes
func (b Bubble) Balanced() bool { return len(b.First) == len(b.Second) }

// key identifies the bubble independently of branch order
func (b Bubble) key() string {
	k1, k2 := indexKey(b.First), indexKey(b.Second)
	if k2 < k1 {
		k1, k2 = k2, k1
	}
	return k1 + "|" + k2
}

func indexKey(nodes []storage.NodeIndex) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = strconv.Itoa(int(n))
	}
	return strings.Join(parts, ",")
}

// findBubbles runs both detection passes over every branching node
func findBubbles(g *storage.GraphSection, depth int) []Bubble {
	bubbles := make([]Bubble, 0)
	seen := make(map[string]struct{})

	add := func(b Bubble) {
		if !validBubble(b) {
			return
		}
		k := b.key()
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		bubbles = append(bubbles, b)
	}

	for _, s := range g.NodeIndices() {
		succ := distinctSuccessors(g, s)
		if len(succ) < 2 {
			continue
		}

		for i := 0; i < len(succ); i++ {
			for j := i + 1; j < len(succ); j++ {
				if b, ok := convergence(g, s, succ[i], succ[j], depth); ok {
					add(b)
				}
			}
		}

		// direct edge s->t with an independent multi-hop route s->u->...->t
		for _, t := range succ {
			for _, u := range succ {
				if u == t {
					continue
				}
				if route, ok := routeAvoiding(g, s, u, t, depth); ok {
					add(Bubble{First: []storage.NodeIndex{s, t}, Second: route})
				}
			}
		}
	}
	return bubbles
}

// validBubble rejects pairs where a branch is only the source, the branches
// meet back at the source, or the branches are the same sequence
func validBubble(b Bubble) bool {
	if len(b.First) < 2 || len(b.Second) < 2 {
		return false
	}
	if b.First[0] != b.Second[0] || b.Sink() != b.Second[len(b.Second)-1] {
		return false
	}
	if b.Sink() == b.Source() {
		return false
	}
	return !slices.Equal(b.First, b.Second)
}

func distinctSuccessors(g *storage.GraphSection, n storage.NodeIndex) []storage.NodeIndex {
	all := g.Successors(n)
	out := make([]storage.NodeIndex, 0, len(all))
	for _, s := range all {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}

type branchSearch struct {
	queue   []storage.NodeIndex
	visited map[storage.NodeIndex][]storage.NodeIndex
}

func newBranchSearch(source, start storage.NodeIndex) *branchSearch {
	return &branchSearch{
		queue:   []storage.NodeIndex{start},
		visited: map[storage.NodeIndex][]storage.NodeIndex{start: {source, start}},
	}
}

// step pops one node; if other has already reached it, that node is the
// convergence point and both recorded paths to it are returned
func (bs *branchSearch) step(g *storage.GraphSection, other *branchSearch) (mine, theirs []storage.NodeIndex, met bool) {
	node := bs.queue[0]
	bs.queue = bs.queue[1:]
	path := bs.visited[node]

	if otherPath, ok := other.visited[node]; ok {
		return path, otherPath, true
	}

	for _, next := range g.Successors(node) {
		if _, seen := bs.visited[next]; seen {
			continue
		}
		bs.visited[next] = append(slices.Clone(path), next)
		bs.queue = append(bs.queue, next)
	}
	return nil, nil, false
}

// convergence searches from a and b in lock-step, one node per side per
// round, for at most depth rounds
func convergence(g *storage.GraphSection, s, a, b storage.NodeIndex, depth int) (Bubble, bool) {
	left := newBranchSearch(s, a)
	right := newBranchSearch(s, b)

	for round := 0; round < depth && len(left.queue) > 0 && len(right.queue) > 0; round++ {
		if mine, theirs, met := left.step(g, right); met {
			return Bubble{First: mine, Second: theirs}, true
		}
		if mine, theirs, met := right.step(g, left); met {
			return Bubble{First: theirs, Second: mine}, true
		}
	}
	return Bubble{}, false
}

// routeAvoiding finds a path s -> from -> ... -> to that does not pass
// through s again, exploring at most depth levels breadth first
func routeAvoiding(g *storage.GraphSection, s, from, to storage.NodeIndex, depth int) ([]storage.NodeIndex, bool) {
	visited := map[storage.NodeIndex][]storage.NodeIndex{from: {s, from}}
	level := []storage.NodeIndex{from}

	for d := 0; d < depth && len(level) > 0; d++ {
		var next []storage.NodeIndex
		for _, node := range level {
			for _, succ := range g.Successors(node) {
				if succ == s {
					continue
				}
				if _, seen := visited[succ]; seen {
					continue
				}
				route := append(slices.Clone(visited[node]), succ)
				if succ == to {
					return route, true
				}
				visited[succ] = route
				next = append(next, succ)
			}
		}
		level = next
	}
	return nil, false
}
