package algorithms

import (
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// Cycle represents a detected cycle as a sequence of node indices
type Cycle []storage.NodeIndex

const (
	white = iota // unvisited
	gray         // on the DFS stack
	black        // finished
)

// dfsFrame is one entry of the explicit DFS stack: a node and the position
// of the next out-edge to examine
type dfsFrame struct {
	node storage.NodeIndex
	next int
}

// DetectCycles finds cycles in the section using DFS with three-color marking.
//
// Algorithm: iterative depth-first search over out-edges:
//   - WHITE: unvisited node
//   - GRAY: node is on the DFS stack
//   - BLACK: all descendants explored
//
// Reaching a GRAY node closes a cycle. One cycle is reported per back edge,
// so the result is a witness set, not every elementary cycle.
func DetectCycles(g *storage.GraphSection) []Cycle {
	cycles := make([]Cycle, 0)
	walkDFS(g, func(from, to storage.NodeIndex, parent []storage.NodeIndex) bool {
		cycles = append(cycles, extractCycle(to, from, parent))
		return true
	})
	return cycles
}

// HasCycle reports whether the section contains a directed cycle, stopping
// at the first back edge
func HasCycle(g *storage.GraphSection) bool {
	found := false
	walkDFS(g, func(from, to storage.NodeIndex, parent []storage.NodeIndex) bool {
		found = true
		return false
	})
	return found
}

// walkDFS runs the three-color DFS from every unvisited node in index order
// and calls onBackEdge for each edge into a GRAY node. Returning false from
// onBackEdge stops the walk.
func walkDFS(g *storage.GraphSection, onBackEdge func(from, to storage.NodeIndex, parent []storage.NodeIndex) bool) {
	n := g.NodeCount()
	color := make([]uint8, n)
	parent := make([]storage.NodeIndex, n)
	for i := range parent {
		parent[i] = -1
	}

	for root := 0; root < n; root++ {
		if color[root] != white {
			continue
		}

		stack := []dfsFrame{{node: storage.NodeIndex(root)}}
		color[root] = gray

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			out := g.OutEdges(top.node)
			if top.next >= len(out) {
				color[top.node] = black
				stack = stack[:len(stack)-1]
				continue
			}

			_, next := g.EdgeEndpoints(out[top.next])
			top.next++

			switch color[next] {
			case white:
				color[next] = gray
				parent[next] = top.node
				stack = append(stack, dfsFrame{node: next})
			case gray:
				if !onBackEdge(top.node, next, parent) {
					return
				}
			}
		}
	}
}

// extractCycle reconstructs the cycle closed by the back edge end -> start
// by following parent pointers from end
func extractCycle(start, end storage.NodeIndex, parent []storage.NodeIndex) Cycle {
	cycle := Cycle{start}
	for current := end; current != start && current >= 0; current = parent[current] {
		cycle = append(cycle, current)
	}
	return cycle
}

// CycleStats provides statistics about detected cycles
type CycleStats struct {
	TotalCycles   int
	ShortestCycle int
	LongestCycle  int
	AverageLength float64
	SelfLoops     int // Number of self-referencing nodes
}

// AnalyzeCycles computes statistics about detected cycles
func AnalyzeCycles(cycles []Cycle) CycleStats {
	if len(cycles) == 0 {
		return CycleStats{}
	}

	stats := CycleStats{
		TotalCycles:   len(cycles),
		ShortestCycle: len(cycles[0]),
		LongestCycle:  len(cycles[0]),
	}

	totalLength := 0
	for _, cycle := range cycles {
		length := len(cycle)
		totalLength += length

		if length == 1 {
			stats.SelfLoops++
		}
		if length < stats.ShortestCycle {
			stats.ShortestCycle = length
		}
		if length > stats.LongestCycle {
			stats.LongestCycle = length
		}
	}

	stats.AverageLength = float64(totalLength) / float64(len(cycles))
	return stats
}
