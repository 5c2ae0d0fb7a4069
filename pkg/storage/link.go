package storage

import (
	"fmt"
	"strings"
)

// ElementRef names an element of a graph section as graph:element
type ElementRef struct {
	Graph   string
	Element string
}

// ParseElementRef splits graph:element on the first colon
func ParseElementRef(s string) (ElementRef, error) {
	graph, element, ok := strings.Cut(s, ":")
	if !ok || graph == "" || element == "" {
		return ElementRef{}, fmt.Errorf("%w: element reference %q", ErrMalformedField, s)
	}
	return ElementRef{Graph: graph, Element: element}, nil
}

func (r ElementRef) String() string {
	return r.Graph + ":" + r.Element
}

// Link connects elements of two graph sections
type Link struct {
	ID         string
	Source     ElementRef
	Target     ElementRef
	Type       string
	Attributes Attributes
}

// ParseLink parses the fields of an L record (fields[0] == "L")
func ParseLink(fields []string) (*Link, error) {
	if len(fields) < 5 {
		return nil, fmt.Errorf("%w: link record needs at least 5 fields, got %d", ErrMalformedField, len(fields))
	}
	if fields[1] == "" {
		return nil, fmt.Errorf("%w: empty link id", ErrInvalidID)
	}

	source, err := ParseElementRef(fields[2])
	if err != nil {
		return nil, err
	}
	target, err := ParseElementRef(fields[3])
	if err != nil {
		return nil, err
	}

	link := &Link{ID: fields[1], Source: source, Target: target, Type: fields[4]}
	for _, f := range fields[5:] {
		if f == "" {
			continue
		}
		attr, err := ParseAttribute(f)
		if err != nil {
			return nil, err
		}
		link.Attributes.Set(attr)
	}
	return link, nil
}

// String returns the L record, attributes in tag order
func (l *Link) String() string {
	parts := []string{"L", l.ID, l.Source.String(), l.Target.String(), l.Type}
	for _, attr := range l.Attributes.Sorted() {
		parts = append(parts, attr.String())
	}
	return strings.Join(parts, "\t")
}
