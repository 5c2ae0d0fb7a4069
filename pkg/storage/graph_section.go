package storage

import (
	"fmt"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
)

// NodeIndex is a handle to a node slot of one GraphSection
type NodeIndex int

// EdgeIndex is a handle to an edge slot of one GraphSection
type EdgeIndex int

type edgeSlot struct {
	data   Edge
	source NodeIndex
	target NodeIndex
}

// GraphSection is one graph of a document: a directed multigraph stored as
// an arena of node and edge slots with adjacency lists, indexed by id.
//
// Invariant: every index held by nodeIndex/edgeIndex is a live slot, and
// every slot is reachable from exactly one id. Slots are never removed.
//
// A GraphSection is not safe for concurrent mutation. Concurrent reads are
// safe once construction has finished.
type GraphSection struct {
	ID         string
	Attributes Attributes

	nodes []Node
	edges []edgeSlot
	out   [][]EdgeIndex
	in    [][]EdgeIndex

	nodeIndex map[string]NodeIndex
	edgeIndex map[string]EdgeIndex

	groups     []*Group
	groupIndex map[string]int

	logger logging.Logger
}

// Option configures a GraphSection
type Option func(*GraphSection)

// WithLogger sets the logger used for debug traces of structural changes
func WithLogger(logger logging.Logger) Option {
	return func(g *GraphSection) {
		g.logger = logging.OrNop(logger)
	}
}

// NewGraphSection creates an empty section
func NewGraphSection(id string, opts ...Option) *GraphSection {
	g := &GraphSection{
		ID:         id,
		nodeIndex:  make(map[string]NodeIndex),
		edgeIndex:  make(map[string]EdgeIndex),
		groupIndex: make(map[string]int),
		logger:     logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode inserts node, or replaces the payload of the node with the same id
// in place. Replacing a placeholder this way promotes it to a declared node.
func (g *GraphSection) AddNode(node Node) NodeIndex {
	if idx, ok := g.nodeIndex[node.ID]; ok {
		g.nodes[idx] = node
		return idx
	}

	idx := NodeIndex(len(g.nodes))
	g.nodes = append(g.nodes, node)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	g.nodeIndex[node.ID] = idx

	g.logger.Debug("node added", logging.GraphID(g.ID), logging.NodeID(node.ID), logging.Count(len(g.nodes)))
	return idx
}

// ensureNode returns the index of id, creating a placeholder when absent
func (g *GraphSection) ensureNode(id string) NodeIndex {
	if idx, ok := g.nodeIndex[id]; ok {
		return idx
	}
	return g.AddNode(Node{ID: id})
}

// AddEdge connects sourceID to sinkID, creating placeholder nodes for missing
// endpoints, and inserts or updates the edge keyed by edge.ID.
//
// Re-declaring an existing edge id replaces its payload in the same slot.
// When the endpoints differ the slot is moved to the new endpoints, so no
// unreachable edge is left behind.
func (g *GraphSection) AddEdge(sourceID, sinkID string, edge Edge) (EdgeIndex, error) {
	if edge.ID == "" {
		return 0, NewError("add_edge").Edge("").Section(g.ID).Cause(ErrInvalidID).Err()
	}
	if sourceID == "" || sinkID == "" {
		return 0, NewError("add_edge").Edge(edge.ID).Section(g.ID).
			Context("empty endpoint").Cause(ErrInvalidID).Err()
	}

	src := g.ensureNode(sourceID)
	dst := g.ensureNode(sinkID)

	if idx, ok := g.edgeIndex[edge.ID]; ok {
		slot := &g.edges[idx]
		slot.data = edge
		if slot.source != src || slot.target != dst {
			g.out[slot.source] = removeEdgeIndex(g.out[slot.source], idx)
			g.in[slot.target] = removeEdgeIndex(g.in[slot.target], idx)
			slot.source, slot.target = src, dst
			g.out[src] = append(g.out[src], idx)
			g.in[dst] = append(g.in[dst], idx)
			g.logger.Debug("edge rewired", logging.GraphID(g.ID), logging.EdgeID(edge.ID),
				logging.String("source", sourceID), logging.String("sink", sinkID))
		}
		return idx, nil
	}

	idx := EdgeIndex(len(g.edges))
	g.edges = append(g.edges, edgeSlot{data: edge, source: src, target: dst})
	g.out[src] = append(g.out[src], idx)
	g.in[dst] = append(g.in[dst], idx)
	g.edgeIndex[edge.ID] = idx
	return idx, nil
}

func removeEdgeIndex(list []EdgeIndex, idx EdgeIndex) []EdgeIndex {
	for i, e := range list {
		if e == idx {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// NodeIndexOf returns the index of the node with the given id
func (g *GraphSection) NodeIndexOf(id string) (NodeIndex, bool) {
	idx, ok := g.nodeIndex[id]
	return idx, ok
}

// EdgeIndexOf returns the index of the edge with the given id
func (g *GraphSection) EdgeIndexOf(id string) (EdgeIndex, bool) {
	idx, ok := g.edgeIndex[id]
	return idx, ok
}

// NodeByID returns the node with the given id
func (g *GraphSection) NodeByID(id string) (*Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return &g.nodes[idx], true
}

// EdgeByID returns the edge with the given id
func (g *GraphSection) EdgeByID(id string) (*Edge, bool) {
	idx, ok := g.edgeIndex[id]
	if !ok {
		return nil, false
	}
	return &g.edges[idx].data, true
}

// NodeByIndex returns the node in slot idx. idx must come from this section.
func (g *GraphSection) NodeByIndex(idx NodeIndex) *Node {
	return &g.nodes[idx]
}

// EdgeByIndex returns the edge in slot idx. idx must come from this section.
func (g *GraphSection) EdgeByIndex(idx EdgeIndex) *Edge {
	return &g.edges[idx].data
}

// EdgeEndpoints returns the source and target of an edge
func (g *GraphSection) EdgeEndpoints(idx EdgeIndex) (source, target NodeIndex) {
	slot := g.edges[idx]
	return slot.source, slot.target
}

// ValidNode reports whether idx addresses a slot of this section
func (g *GraphSection) ValidNode(idx NodeIndex) bool {
	return idx >= 0 && int(idx) < len(g.nodes)
}

// ValidEdge reports whether idx addresses a slot of this section
func (g *GraphSection) ValidEdge(idx EdgeIndex) bool {
	return idx >= 0 && int(idx) < len(g.edges)
}

// NodeCount returns the number of node slots, placeholders included
func (g *GraphSection) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edge slots
func (g *GraphSection) EdgeCount() int { return len(g.edges) }

// IsEmpty reports whether the section has no nodes
func (g *GraphSection) IsEmpty() bool { return len(g.nodes) == 0 }

// Nodes returns a snapshot of node pointers in slot order
func (g *GraphSection) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	for i := range g.nodes {
		out[i] = &g.nodes[i]
	}
	return out
}

// Edges returns a snapshot of edge pointers in slot order
func (g *GraphSection) Edges() []*Edge {
	out := make([]*Edge, len(g.edges))
	for i := range g.edges {
		out[i] = &g.edges[i].data
	}
	return out
}

// NodeIndices returns all node indices in slot order
func (g *GraphSection) NodeIndices() []NodeIndex {
	out := make([]NodeIndex, len(g.nodes))
	for i := range out {
		out[i] = NodeIndex(i)
	}
	return out
}

// EdgeIndices returns all edge indices in slot order
func (g *GraphSection) EdgeIndices() []EdgeIndex {
	out := make([]EdgeIndex, len(g.edges))
	for i := range out {
		out[i] = EdgeIndex(i)
	}
	return out
}

// OutEdges returns the outgoing edges of a node. The slice must not be modified.
func (g *GraphSection) OutEdges(idx NodeIndex) []EdgeIndex { return g.out[idx] }

// InEdges returns the incoming edges of a node. The slice must not be modified.
func (g *GraphSection) InEdges(idx NodeIndex) []EdgeIndex { return g.in[idx] }

// OutDegree returns the number of outgoing edges of a node
func (g *GraphSection) OutDegree(idx NodeIndex) int { return len(g.out[idx]) }

// InDegree returns the number of incoming edges of a node
func (g *GraphSection) InDegree(idx NodeIndex) int { return len(g.in[idx]) }

// Successors returns the targets of the outgoing edges of a node, in edge
// order, with duplicates for parallel edges
func (g *GraphSection) Successors(idx NodeIndex) []NodeIndex {
	out := make([]NodeIndex, 0, len(g.out[idx]))
	for _, e := range g.out[idx] {
		out = append(out, g.edges[e].target)
	}
	return out
}

// Sources returns nodes with no incoming edges, in slot order
func (g *GraphSection) Sources() []NodeIndex {
	var out []NodeIndex
	for i := range g.nodes {
		if len(g.in[i]) == 0 {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// Sinks returns nodes with no outgoing edges, in slot order
func (g *GraphSection) Sinks() []NodeIndex {
	var out []NodeIndex
	for i := range g.nodes {
		if len(g.out[i]) == 0 {
			out = append(out, NodeIndex(i))
		}
	}
	return out
}

// SetNodeAttribute attaches attr to the node with the given id
func (g *GraphSection) SetNodeAttribute(id string, attr Attribute) error {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return NodeNotFoundError(g.ID, id)
	}
	g.nodes[idx].Attributes.Set(attr)
	return nil
}

// SetEdgeAttribute attaches attr to the edge with the given id
func (g *GraphSection) SetEdgeAttribute(id string, attr Attribute) error {
	idx, ok := g.edgeIndex[id]
	if !ok {
		return EdgeNotFoundError(g.ID, id)
	}
	g.edges[idx].data.Attributes.Set(attr)
	return nil
}

// AddGroup registers a group. Group ids are unique across all three kinds.
func (g *GraphSection) AddGroup(group *Group) error {
	if group == nil || group.ID == "" {
		return NewError("add_group").Group("").Section(g.ID).Cause(ErrInvalidID).Err()
	}
	if _, exists := g.groupIndex[group.ID]; exists {
		return NewError("add_group").Group(group.ID).Section(g.ID).Cause(ErrDuplicateGroup).Err()
	}
	g.groupIndex[group.ID] = len(g.groups)
	g.groups = append(g.groups, group)
	return nil
}

// Group returns the group with the given id
func (g *GraphSection) Group(id string) (*Group, bool) {
	i, ok := g.groupIndex[id]
	if !ok {
		return nil, false
	}
	return g.groups[i], true
}

// Groups returns all groups in declaration order
func (g *GraphSection) Groups() []*Group {
	out := make([]*Group, len(g.groups))
	copy(out, g.groups)
	return out
}

// Chains returns the chain groups in declaration order
func (g *GraphSection) Chains() []*Group {
	var out []*Group
	for _, grp := range g.groups {
		if grp.Kind == Chain {
			out = append(out, grp)
		}
	}
	return out
}

// SetGroupAttribute attaches attr to the group with the given id
func (g *GraphSection) SetGroupAttribute(id string, attr Attribute) error {
	grp, ok := g.Group(id)
	if !ok {
		return GroupNotFoundError(g.ID, id)
	}
	grp.Attributes.Set(attr)
	return nil
}

// Contains reports whether id names a node, an edge or a group of this section
func (g *GraphSection) Contains(id string) bool {
	if _, ok := g.nodeIndex[id]; ok {
		return true
	}
	if _, ok := g.edgeIndex[id]; ok {
		return true
	}
	_, ok := g.groupIndex[id]
	return ok
}

// ChainNodes returns the node indices at even positions of a chain
func (g *GraphSection) ChainNodes(chainID string) ([]NodeIndex, error) {
	grp, ok := g.Group(chainID)
	if !ok || grp.Kind != Chain {
		return nil, GroupNotFoundError(g.ID, chainID)
	}
	out := make([]NodeIndex, 0, len(grp.Elements)/2+1)
	for i := 0; i < len(grp.Elements); i += 2 {
		idx, ok := g.nodeIndex[grp.Elements[i].ID]
		if !ok {
			return nil, NodeNotFoundError(g.ID, grp.Elements[i].ID)
		}
		out = append(out, idx)
	}
	return out, nil
}

// ChainEdges returns the edge indices at odd positions of a chain
func (g *GraphSection) ChainEdges(chainID string) ([]EdgeIndex, error) {
	grp, ok := g.Group(chainID)
	if !ok || grp.Kind != Chain {
		return nil, GroupNotFoundError(g.ID, chainID)
	}
	out := make([]EdgeIndex, 0, len(grp.Elements)/2)
	for i := 1; i < len(grp.Elements); i += 2 {
		idx, ok := g.edgeIndex[grp.Elements[i].ID]
		if !ok {
			return nil, EdgeNotFoundError(g.ID, grp.Elements[i].ID)
		}
		out = append(out, idx)
	}
	return out, nil
}

// String summarises the section for debugging
func (g *GraphSection) String() string {
	return fmt.Sprintf("GraphSection(%s, nodes=%d, edges=%d, groups=%d)", g.ID, len(g.nodes), len(g.edges), len(g.groups))
}
