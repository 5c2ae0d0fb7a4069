package document

import (
	"fmt"

	"github.com/dd0wney/cluso-tsg/pkg/algorithms"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// DefaultGraphID is the section receiving records that precede any G line
const DefaultGraphID = "G.graph"

// Document is a parsed TSG file: ordered headers, graph sections in order of
// first declaration, and links between sections.
type Document struct {
	headers      []storage.Header
	sections     []*storage.GraphSection
	sectionIndex map[string]int
	links        []*storage.Link

	opts options
}

// New creates an empty document
func New(opts ...Option) *Document {
	return &Document{
		sectionIndex: make(map[string]int),
		opts:         applyOptions(opts),
	}
}

// AddHeader appends a header
func (d *Document) AddHeader(h storage.Header) {
	d.headers = append(d.headers, h)
}

// AddSection creates and registers an empty section
func (d *Document) AddSection(id string) (*storage.GraphSection, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty graph id", storage.ErrInvalidID)
	}
	if _, exists := d.sectionIndex[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateGraph, id)
	}
	g := storage.NewGraphSection(id, storage.WithLogger(d.opts.logger))
	d.sectionIndex[id] = len(d.sections)
	d.sections = append(d.sections, g)
	return g, nil
}

// AddLink appends a link. Endpoints are checked by Validate.
func (d *Document) AddLink(l *storage.Link) {
	d.links = append(d.links, l)
}

func (d *Document) removeSection(id string) {
	i, ok := d.sectionIndex[id]
	if !ok {
		return
	}
	d.sections = append(d.sections[:i], d.sections[i+1:]...)
	delete(d.sectionIndex, id)
	for j := i; j < len(d.sections); j++ {
		d.sectionIndex[d.sections[j].ID] = j
	}
}

// Headers returns the headers in file order
func (d *Document) Headers() []storage.Header {
	out := make([]storage.Header, len(d.headers))
	copy(out, d.headers)
	return out
}

// Section returns the section with the given id
func (d *Document) Section(id string) (*storage.GraphSection, bool) {
	i, ok := d.sectionIndex[id]
	if !ok {
		return nil, false
	}
	return d.sections[i], true
}

// Sections returns the sections in declaration order
func (d *Document) Sections() []*storage.GraphSection {
	out := make([]*storage.GraphSection, len(d.sections))
	copy(out, d.sections)
	return out
}

// Links returns the links in file order
func (d *Document) Links() []*storage.Link {
	out := make([]*storage.Link, len(d.links))
	copy(out, d.links)
	return out
}

func (d *Document) section(id string) (*storage.GraphSection, error) {
	g, ok := d.Section(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGraphNotFound, id)
	}
	return g, nil
}

// Node looks up a node by graph and node id
func (d *Document) Node(graphID, nodeID string) (*storage.Node, error) {
	g, err := d.section(graphID)
	if err != nil {
		return nil, err
	}
	n, ok := g.NodeByID(nodeID)
	if !ok {
		return nil, storage.NodeNotFoundError(graphID, nodeID)
	}
	return n, nil
}

// Edge looks up an edge by graph and edge id
func (d *Document) Edge(graphID, edgeID string) (*storage.Edge, error) {
	g, err := d.section(graphID)
	if err != nil {
		return nil, err
	}
	e, ok := g.EdgeByID(edgeID)
	if !ok {
		return nil, storage.EdgeNotFoundError(graphID, edgeID)
	}
	return e, nil
}

// ChainNodes returns the nodes of a chain in chain order
func (d *Document) ChainNodes(graphID, chainID string) ([]*storage.Node, error) {
	g, err := d.section(graphID)
	if err != nil {
		return nil, err
	}
	indices, err := g.ChainNodes(chainID)
	if err != nil {
		return nil, err
	}
	out := make([]*storage.Node, len(indices))
	for i, idx := range indices {
		out[i] = g.NodeByIndex(idx)
	}
	return out, nil
}

// ChainEdges returns the edges of a chain in chain order
func (d *Document) ChainEdges(graphID, chainID string) ([]*storage.Edge, error) {
	g, err := d.section(graphID)
	if err != nil {
		return nil, err
	}
	indices, err := g.ChainEdges(chainID)
	if err != nil {
		return nil, err
	}
	out := make([]*storage.Edge, len(indices))
	for i, idx := range indices {
		out[i] = g.EdgeByIndex(idx)
	}
	return out, nil
}

// Traverse enumerates the paths of one section
func (d *Document) Traverse(graphID string) ([]*storage.Path, error) {
	g, err := d.section(graphID)
	if err != nil {
		return nil, err
	}
	return algorithms.Traverse(g, d.opts.analysis()...)
}

// TraverseAll enumerates the paths of every section in section order
func (d *Document) TraverseAll() ([]*storage.Path, error) {
	var all []*storage.Path
	for _, g := range d.sections {
		paths, err := algorithms.Traverse(g, d.opts.analysis()...)
		if err != nil {
			return nil, fmt.Errorf("failed to traverse graph %s: %w", g.ID, err)
		}
		all = append(all, paths...)
	}
	return all, nil
}

// Analyzer returns a topology analyzer for one section, configured with the
// document's options
func (d *Document) Analyzer(graphID string) (*algorithms.TopologyAnalyzer, error) {
	g, err := d.section(graphID)
	if err != nil {
		return nil, err
	}
	return algorithms.NewTopologyAnalyzer(g, d.opts.analysis()...), nil
}

// Query returns a document holding only the named sections, in the order
// given, with the original headers and the links whose endpoints both lie in
// the selection. Sections are shared with d, not copied.
func (d *Document) Query(ids ...string) (*Document, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no graph ids given", ErrGraphNotFound)
	}
	out := &Document{
		headers:      d.Headers(),
		sectionIndex: make(map[string]int, len(ids)),
		opts:         d.opts,
	}
	for _, id := range ids {
		g, err := d.section(id)
		if err != nil {
			return nil, err
		}
		if _, dup := out.sectionIndex[id]; dup {
			continue
		}
		out.sectionIndex[id] = len(out.sections)
		out.sections = append(out.sections, g)
	}
	for _, l := range d.links {
		_, src := out.sectionIndex[l.Source.Graph]
		_, dst := out.sectionIndex[l.Target.Graph]
		if src && dst {
			out.links = append(out.links, l)
		}
	}
	return out, nil
}

// String summarises the document for debugging
func (d *Document) String() string {
	return fmt.Sprintf("Document(headers=%d, graphs=%d, links=%d)", len(d.headers), len(d.sections), len(d.links))
}
