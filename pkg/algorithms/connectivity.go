package algorithms

import (
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// IsConnected reports whether every node is reachable from node 0 when edges
// are followed in both directions. An empty section is connected.
func IsConnected(g *storage.GraphSection) bool {
	n := g.NodeCount()
	if n == 0 {
		return true
	}
	return len(reachableUndirected(g, 0)) == n
}

// reachableUndirected returns the nodes reachable from start ignoring edge
// direction, using an explicit stack
func reachableUndirected(g *storage.GraphSection, start storage.NodeIndex) map[storage.NodeIndex]struct{} {
	visited := map[storage.NodeIndex]struct{}{start: {}}
	stack := []storage.NodeIndex{start}

	push := func(next storage.NodeIndex) {
		if _, seen := visited[next]; !seen {
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, e := range g.OutEdges(node) {
			_, target := g.EdgeEndpoints(e)
			push(target)
		}
		for _, e := range g.InEdges(node) {
			source, _ := g.EdgeEndpoints(e)
			push(source)
		}
	}
	return visited
}

// ConnectedComponents groups nodes into weakly connected components, each
// listed in ascending index order; components are ordered by smallest member
func ConnectedComponents(g *storage.GraphSection) [][]storage.NodeIndex {
	n := g.NodeCount()
	assigned := make([]bool, n)
	components := make([][]storage.NodeIndex, 0)

	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		reached := reachableUndirected(g, storage.NodeIndex(i))
		component := make([]storage.NodeIndex, 0, len(reached))
		for j := i; j < n; j++ {
			if _, ok := reached[storage.NodeIndex(j)]; ok {
				assigned[j] = true
				component = append(component, storage.NodeIndex(j))
			}
		}
		components = append(components, component)
	}
	return components
}
