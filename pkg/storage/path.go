package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// PathIDLength is the number of hash characters in a path identifier
const PathIDLength = 16

// Path is an ordered walk through one GraphSection. It holds indices only;
// node and edge data stay owned by the section.
type Path struct {
	Nodes      []NodeIndex
	Edges      []EdgeIndex
	Attributes []Attribute

	section *GraphSection
}

// NewPath creates an empty path bound to section
func NewPath(section *GraphSection) *Path {
	return &Path{section: section}
}

// Section returns the section the path belongs to
func (p *Path) Section() *GraphSection { return p.section }

// Owns reports whether p was built over g
func (g *GraphSection) Owns(p *Path) bool {
	return p != nil && p.section == g
}

// AddNode appends a node to the path
func (p *Path) AddNode(idx NodeIndex) { p.Nodes = append(p.Nodes, idx) }

// AddEdge appends an edge to the path
func (p *Path) AddEdge(idx EdgeIndex) { p.Edges = append(p.Edges, idx) }

// Len returns the number of nodes
func (p *Path) Len() int { return len(p.Nodes) }

// IsEmpty reports whether the path has no nodes
func (p *Path) IsEmpty() bool { return len(p.Nodes) == 0 }

// Clone returns a copy sharing the section but not the index slices
func (p *Path) Clone() *Path {
	c := &Path{section: p.section}
	c.Nodes = append(make([]NodeIndex, 0, len(p.Nodes)+1), p.Nodes...)
	c.Edges = append(make([]EdgeIndex, 0, len(p.Edges)+1), p.Edges...)
	if len(p.Attributes) > 0 {
		c.Attributes = append([]Attribute(nil), p.Attributes...)
	}
	return c
}

// Validate checks the node/edge count invariant and that every index
// belongs to the owning section
func (p *Path) Validate() error {
	if p.section == nil {
		return NewError("validate").Path().Context("no section").Cause(ErrForeignPath).Err()
	}
	if len(p.Nodes) != len(p.Edges)+1 {
		return NewError("validate").Path().Section(p.section.ID).
			Context(fmt.Sprintf("%d nodes, %d edges", len(p.Nodes), len(p.Edges))).
			Cause(ErrInvalidPath).Err()
	}
	for _, n := range p.Nodes {
		if !p.section.ValidNode(n) {
			return NewError("validate").Path().Section(p.section.ID).Cause(ErrIndexOutOfRange).Err()
		}
	}
	for _, e := range p.Edges {
		if !p.section.ValidEdge(e) {
			return NewError("validate").Path().Section(p.section.ID).Cause(ErrIndexOutOfRange).Err()
		}
	}
	return nil
}

// NodeIDs returns the ids of the path's nodes in order
func (p *Path) NodeIDs() ([]string, error) {
	if p.section == nil {
		return nil, NewError("node_ids").Path().Cause(ErrForeignPath).Err()
	}
	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		if !p.section.ValidNode(n) {
			return nil, NewError("node_ids").Path().Section(p.section.ID).Cause(ErrIndexOutOfRange).Err()
		}
		ids[i] = p.section.nodes[n].ID
	}
	return ids, nil
}

// ID returns the stable path identifier "P." + hash of the node ids
func (p *Path) ID() (string, error) {
	if p.IsEmpty() {
		return "", NewError("id").Path().Context("no nodes").Cause(ErrInvalidPath).Err()
	}
	ids, err := p.NodeIDs()
	if err != nil {
		return "", err
	}
	hash, err := HashIdentifier(strings.Join(ids, "-"), PathIDLength)
	if err != nil {
		return "", err
	}
	return "P." + hash, nil
}

// IsSuper reports whether the path has at least two nodes and one read
// shared by all of them
func (p *Path) IsSuper() (bool, error) {
	if p.section == nil {
		return false, NewError("is_super").Path().Cause(ErrForeignPath).Err()
	}
	if len(p.Nodes) < 2 {
		return false, nil
	}
	for _, n := range p.Nodes {
		if !p.section.ValidNode(n) {
			return false, NewError("is_super").Path().Section(p.section.ID).Cause(ErrIndexOutOfRange).Err()
		}
	}

	common := p.section.nodes[p.Nodes[0]].ReadIDs()
	for _, n := range p.Nodes[1:] {
		reads := p.section.nodes[n].ReadIDs()
		for id := range common {
			if _, ok := reads[id]; !ok {
				delete(common, id)
			}
		}
		if len(common) == 0 {
			return false, nil
		}
	}
	return len(common) > 0, nil
}

// Format renders the path as a P record: P, the path id, then alternating
// forward-oriented node and edge ids
func (p *Path) Format() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	id, err := p.ID()
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, 2+len(p.Nodes)+len(p.Edges))
	parts = append(parts, "P", id)
	for i, n := range p.Nodes {
		parts = append(parts, p.section.nodes[n].ID+"+")
		if i < len(p.Edges) {
			parts = append(parts, p.section.edges[p.Edges[i]].data.ID+"+")
		}
	}
	return strings.Join(parts, "\t"), nil
}

// String renders the P record, or a placeholder describing the error
func (p *Path) String() string {
	s, err := p.Format()
	if err != nil {
		return "P\t<invalid: " + err.Error() + ">"
	}
	return s
}

// HashIdentifier returns the first length hex characters of the SHA-256 of
// input. A leading digit is replaced by 'a' so the result starts with a letter.
// A negative length, or one beyond the digest, returns all 64 characters.
func HashIdentifier(input string, length int) (string, error) {
	if length == 0 {
		return "", fmt.Errorf("%w: hash length must be positive", ErrMalformedField)
	}
	sum := sha256.Sum256([]byte(input))
	hexed := hex.EncodeToString(sum[:])
	if length > 0 && length < len(hexed) {
		hexed = hexed[:length]
	}
	if hexed[0] >= '0' && hexed[0] <= '9' {
		hexed = "a" + hexed[1:]
	}
	return hexed, nil
}
