package storage

import (
	"fmt"
	"strings"
)

// GroupKind distinguishes the three group records
type GroupKind uint8

const (
	Unordered GroupKind = iota
	Ordered
	Chain
)

// Tag returns the record tag of the kind (U, P or C)
func (k GroupKind) Tag() string {
	switch k {
	case Ordered:
		return "P"
	case Chain:
		return "C"
	default:
		return "U"
	}
}

func (k GroupKind) String() string {
	switch k {
	case Ordered:
		return "ordered"
	case Chain:
		return "chain"
	default:
		return "unordered"
	}
}

// GroupKindFromTag maps U, P and C to their kind
func GroupKindFromTag(tag string) (GroupKind, bool) {
	switch tag {
	case "U":
		return Unordered, true
	case "P":
		return Ordered, true
	case "C":
		return Chain, true
	}
	return Unordered, false
}

// Orientation of an element inside an ordered group
type Orientation uint8

const (
	NoOrientation Orientation = iota
	OrientForward
	OrientReverse
)

// OrientedElement is an element id with an optional +/- suffix
type OrientedElement struct {
	ID          string
	Orientation Orientation
}

// ParseOrientedElement parses id, id+ or id-
func ParseOrientedElement(s string) (OrientedElement, error) {
	if s == "" {
		return OrientedElement{}, fmt.Errorf("%w: empty group element", ErrMalformedField)
	}
	switch s[len(s)-1] {
	case '+':
		s = s[:len(s)-1]
		if s == "" {
			break
		}
		return OrientedElement{ID: s, Orientation: OrientForward}, nil
	case '-':
		s = s[:len(s)-1]
		if s == "" {
			break
		}
		return OrientedElement{ID: s, Orientation: OrientReverse}, nil
	default:
		return OrientedElement{ID: s}, nil
	}
	return OrientedElement{}, fmt.Errorf("%w: group element without id", ErrMalformedField)
}

func (e OrientedElement) String() string {
	switch e.Orientation {
	case OrientForward:
		return e.ID + "+"
	case OrientReverse:
		return e.ID + "-"
	}
	return e.ID
}

// Group is a named collection of nodes, edges or other groups.
// Unordered and Chain groups never carry orientations.
type Group struct {
	ID         string
	Kind       GroupKind
	Elements   []OrientedElement
	Attributes Attributes
}

// ParseGroup parses a U, P or C record. Elements may be separated by tabs
// or spaces.
func ParseGroup(fields []string) (*Group, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("%w: group record needs at least 3 fields, got %d", ErrMalformedField, len(fields))
	}
	kind, ok := GroupKindFromTag(fields[0])
	if !ok {
		return nil, fmt.Errorf("%w: group tag %q", ErrMalformedField, fields[0])
	}
	if fields[1] == "" {
		return nil, fmt.Errorf("%w: empty group id", ErrInvalidID)
	}

	tokens := strings.Fields(strings.Join(fields[2:], " "))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: group %s has no elements", ErrMalformedField, fields[1])
	}

	g := &Group{ID: fields[1], Kind: kind, Elements: make([]OrientedElement, 0, len(tokens))}
	for _, tok := range tokens {
		if kind != Ordered {
			g.Elements = append(g.Elements, OrientedElement{ID: tok})
			continue
		}
		el, err := ParseOrientedElement(tok)
		if err != nil {
			return nil, err
		}
		g.Elements = append(g.Elements, el)
	}

	if kind == Chain && len(g.Elements)%2 == 0 {
		return nil, fmt.Errorf("%w: chain %s must have an odd number of elements, got %d",
			ErrMalformedField, g.ID, len(g.Elements))
	}
	return g, nil
}

// ElementIDs returns the element ids without orientation
func (g *Group) ElementIDs() []string {
	ids := make([]string, len(g.Elements))
	for i, e := range g.Elements {
		ids[i] = e.ID
	}
	return ids
}

// String returns the group record with space separated elements
func (g *Group) String() string {
	parts := make([]string, len(g.Elements))
	for i, e := range g.Elements {
		parts[i] = e.String()
	}
	return g.Kind.Tag() + "\t" + g.ID + "\t" + strings.Join(parts, " ")
}
