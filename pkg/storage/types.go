package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AttributeType is the one-letter type code of an attribute value
type AttributeType byte

const (
	TypeInt    AttributeType = 'i'
	TypeFloat  AttributeType = 'f'
	TypeString AttributeType = 'Z'
	TypeJSON   AttributeType = 'J'
	TypeHex    AttributeType = 'H'
	TypeArray  AttributeType = 'B'
)

// Valid reports whether t is a known attribute type code
func (t AttributeType) Valid() bool {
	switch t {
	case TypeInt, TypeFloat, TypeString, TypeJSON, TypeHex, TypeArray:
		return true
	}
	return false
}

// Attribute is a typed tag/value pair written as tag:type:value
type Attribute struct {
	Tag   string
	Type  AttributeType
	Value string
}

// StringAttribute creates a Z-typed attribute
func StringAttribute(tag, value string) Attribute {
	return Attribute{Tag: tag, Type: TypeString, Value: value}
}

// IntAttribute creates an i-typed attribute
func IntAttribute(tag string, value int64) Attribute {
	return Attribute{Tag: tag, Type: TypeInt, Value: strconv.FormatInt(value, 10)}
}

// FloatAttribute creates an f-typed attribute
func FloatAttribute(tag string, value float64) Attribute {
	return Attribute{Tag: tag, Type: TypeFloat, Value: strconv.FormatFloat(value, 'g', -1, 64)}
}

// ParseAttribute parses the tag:type:value form. The value may itself contain colons.
func ParseAttribute(s string) (Attribute, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) < 3 {
		return Attribute{}, fmt.Errorf("%w: attribute %q", ErrMalformedField, s)
	}
	if len(parts[1]) != 1 {
		return Attribute{}, fmt.Errorf("%w: attribute type %q", ErrMalformedField, parts[1])
	}
	typ := AttributeType(parts[1][0])
	if !typ.Valid() {
		return Attribute{}, fmt.Errorf("%w: unknown attribute type %q", ErrMalformedField, parts[1])
	}
	return Attribute{Tag: parts[0], Type: typ, Value: parts[2]}, nil
}

// String returns the tag:type:value form
func (a Attribute) String() string {
	typ := a.Type
	if typ == 0 {
		typ = TypeString
	}
	return a.Tag + ":" + string(typ) + ":" + a.Value
}

// Decode methods
func (a Attribute) AsInt() (int64, error) {
	if a.Type != TypeInt {
		return 0, fmt.Errorf("attribute %s is not an integer", a.Tag)
	}
	return strconv.ParseInt(a.Value, 10, 64)
}

func (a Attribute) AsFloat() (float64, error) {
	if a.Type != TypeFloat {
		return 0, fmt.Errorf("attribute %s is not a float", a.Tag)
	}
	return strconv.ParseFloat(a.Value, 64)
}

func (a Attribute) AsString() (string, error) {
	if a.Type != TypeString && a.Type != 0 {
		return "", fmt.Errorf("attribute %s is not a string", a.Tag)
	}
	return a.Value, nil
}

func (a Attribute) AsJSON() (any, error) {
	if a.Type != TypeJSON {
		return nil, fmt.Errorf("attribute %s is not JSON", a.Tag)
	}
	var v any
	if err := json.Unmarshal([]byte(a.Value), &v); err != nil {
		return nil, fmt.Errorf("attribute %s: %w", a.Tag, err)
	}
	return v, nil
}

// Attributes maps tag to attribute. Later values for a tag replace earlier ones.
type Attributes map[string]Attribute

// Set inserts or replaces attr, allocating the map when needed
func (as *Attributes) Set(attr Attribute) {
	if *as == nil {
		*as = make(Attributes)
	}
	(*as)[attr.Tag] = attr
}

// Sorted returns the attributes ordered by tag
func (as Attributes) Sorted() []Attribute {
	out := make([]Attribute, 0, len(as))
	for _, a := range as {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// Header is a document-level tag/value pair
type Header struct {
	Tag   string
	Value string
}

func (h Header) String() string {
	return "H\t" + h.Tag + "\t" + h.Value
}

// Strand of a node on its reference
type Strand uint8

const (
	Forward Strand = iota
	Reverse
)

// ParseStrand parses "+" or "-"
func ParseStrand(s string) (Strand, error) {
	switch s {
	case "+":
		return Forward, nil
	case "-":
		return Reverse, nil
	}
	return Forward, fmt.Errorf("%w: strand %q", ErrMalformedField, s)
}

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// ReadIdentity marks whether a read starts, passes through or ends at a node
type ReadIdentity uint8

const (
	ReadSource ReadIdentity = iota
	ReadIntermediate
	ReadSink
)

// ParseReadIdentity parses SO, IN or SI
func ParseReadIdentity(s string) (ReadIdentity, error) {
	switch s {
	case "SO":
		return ReadSource, nil
	case "IN":
		return ReadIntermediate, nil
	case "SI":
		return ReadSink, nil
	}
	return ReadSource, fmt.Errorf("%w: read identity %q", ErrMalformedField, s)
}

func (r ReadIdentity) String() string {
	switch r {
	case ReadIntermediate:
		return "IN"
	case ReadSink:
		return "SI"
	default:
		return "SO"
	}
}

// Read is one supporting read of a node
type Read struct {
	ID       string
	Identity ReadIdentity
}

// ParseRead parses id:IDENTITY. The identity is taken after the last colon
// so read names containing colons are accepted.
func ParseRead(s string) (Read, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return Read{}, fmt.Errorf("%w: read %q", ErrMalformedField, s)
	}
	identity, err := ParseReadIdentity(s[i+1:])
	if err != nil {
		return Read{}, err
	}
	return Read{ID: s[:i], Identity: identity}, nil
}

func (r Read) String() string {
	return r.ID + ":" + r.Identity.String()
}

// Interval is a closed genomic interval [Start, End]
type Interval struct {
	Start int
	End   int
}

// ParseInterval parses start-end
func ParseInterval(s string) (Interval, error) {
	startStr, endStr, ok := strings.Cut(s, "-")
	if !ok {
		return Interval{}, fmt.Errorf("%w: interval %q", ErrMalformedField, s)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: interval start %q", ErrMalformedField, startStr)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: interval end %q", ErrMalformedField, endStr)
	}
	if start < 0 || start > end {
		return Interval{}, fmt.Errorf("%w: interval %q has start after end", ErrMalformedField, s)
	}
	return Interval{Start: start, End: end}, nil
}

func (iv Interval) String() string {
	return strconv.Itoa(iv.Start) + "-" + strconv.Itoa(iv.End)
}

// Len returns the number of bases covered
func (iv Interval) Len() int {
	return iv.End - iv.Start + 1
}

// Exons is an ordered list of intervals
type Exons []Interval

// ParseExons parses a comma separated interval list
func ParseExons(s string) (Exons, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty exon list", ErrMalformedField)
	}
	parts := strings.Split(s, ",")
	exons := make(Exons, 0, len(parts))
	for _, p := range parts {
		iv, err := ParseInterval(p)
		if err != nil {
			return nil, err
		}
		exons = append(exons, iv)
	}
	return exons, nil
}

func (e Exons) String() string {
	parts := make([]string, len(e))
	for i, iv := range e {
		parts[i] = iv.String()
	}
	return strings.Join(parts, ",")
}

// Span returns the total number of bases covered by all exons
func (e Exons) Span() int {
	total := 0
	for _, iv := range e {
		total += iv.Len()
	}
	return total
}

// Introns returns the gaps between consecutive exons
func (e Exons) Introns() []Interval {
	if len(e) < 2 {
		return nil
	}
	out := make([]Interval, 0, len(e)-1)
	for i := 0; i+1 < len(e); i++ {
		out = append(out, Interval{Start: e[i].End + 1, End: e[i+1].Start - 1})
	}
	return out
}

// StructuralVariant describes the junction an edge represents
type StructuralVariant struct {
	Reference1  string
	Reference2  string
	Breakpoint1 int
	Breakpoint2 int
	Type        string
}

// ParseStructuralVariant parses ref1,ref2,bp1,bp2,type
func ParseStructuralVariant(s string) (StructuralVariant, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return StructuralVariant{}, fmt.Errorf("%w: structural variant %q", ErrMalformedField, s)
	}
	bp1, err := strconv.Atoi(parts[2])
	if err != nil {
		return StructuralVariant{}, fmt.Errorf("%w: breakpoint1 %q", ErrMalformedField, parts[2])
	}
	bp2, err := strconv.Atoi(parts[3])
	if err != nil {
		return StructuralVariant{}, fmt.Errorf("%w: breakpoint2 %q", ErrMalformedField, parts[3])
	}
	return StructuralVariant{
		Reference1:  parts[0],
		Reference2:  parts[1],
		Breakpoint1: bp1,
		Breakpoint2: bp2,
		Type:        parts[4],
	}, nil
}

func (sv StructuralVariant) String() string {
	return fmt.Sprintf("%s,%s,%d,%d,%s", sv.Reference1, sv.Reference2, sv.Breakpoint1, sv.Breakpoint2, sv.Type)
}

// IsZero reports whether sv carries no information
func (sv StructuralVariant) IsZero() bool {
	return sv == StructuralVariant{}
}

// Node is a set of exons on one reference supported by reads
type Node struct {
	ID         string
	Reference  string
	Strand     Strand
	Exons      Exons
	Reads      []Read
	Sequence   string
	Attributes Attributes
}

// IsPlaceholder reports whether the node was created implicitly by an edge
// or chain and never declared with an N record
func (n *Node) IsPlaceholder() bool {
	return len(n.Exons) == 0 && n.Reference == ""
}

// ReferenceStart returns the first exon start, or 0 for placeholders
func (n *Node) ReferenceStart() int {
	if len(n.Exons) == 0 {
		return 0
	}
	return n.Exons[0].Start
}

// ReferenceEnd returns the last exon end, or 0 for placeholders
func (n *Node) ReferenceEnd() int {
	if len(n.Exons) == 0 {
		return 0
	}
	return n.Exons[len(n.Exons)-1].End
}

// ReadIDs returns the set of read identifiers supporting the node
func (n *Node) ReadIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(n.Reads))
	for _, r := range n.Reads {
		ids[r.ID] = struct{}{}
	}
	return ids
}

// HasIntermediateRead reports whether any read passes through the node
func (n *Node) HasIntermediateRead() bool {
	for _, r := range n.Reads {
		if r.Identity == ReadIntermediate {
			return true
		}
	}
	return false
}

// ParseNode parses the fields of an N record (fields[0] == "N")
func ParseNode(fields []string) (Node, error) {
	if len(fields) < 4 {
		return Node{}, fmt.Errorf("%w: node record needs at least 4 fields, got %d", ErrMalformedField, len(fields))
	}
	node := Node{ID: fields[1]}
	if node.ID == "" {
		return Node{}, fmt.Errorf("%w: empty node id", ErrInvalidID)
	}

	loc := fields[2]
	i := strings.LastIndexByte(loc, ':')
	if i < 0 {
		return Node{}, fmt.Errorf("%w: node location %q", ErrMalformedField, loc)
	}
	j := strings.LastIndexByte(loc[:i], ':')
	if j < 0 {
		return Node{}, fmt.Errorf("%w: node location %q", ErrMalformedField, loc)
	}
	node.Reference = loc[:j]
	strand, err := ParseStrand(loc[j+1 : i])
	if err != nil {
		return Node{}, err
	}
	node.Strand = strand
	if node.Exons, err = ParseExons(loc[i+1:]); err != nil {
		return Node{}, err
	}

	if fields[3] != "" {
		for _, rs := range strings.Split(fields[3], ",") {
			r, err := ParseRead(rs)
			if err != nil {
				return Node{}, err
			}
			node.Reads = append(node.Reads, r)
		}
	}
	if len(fields) > 4 {
		node.Sequence = fields[4]
	}
	return node, nil
}

// String returns the N record for the node
func (n *Node) String() string {
	var b strings.Builder
	b.WriteString("N\t")
	b.WriteString(n.ID)
	b.WriteByte('\t')
	b.WriteString(n.Reference)
	b.WriteByte(':')
	b.WriteString(n.Strand.String())
	b.WriteByte(':')
	b.WriteString(n.Exons.String())
	b.WriteByte('\t')
	for i, r := range n.Reads {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.String())
	}
	if n.Sequence != "" {
		b.WriteByte('\t')
		b.WriteString(n.Sequence)
	}
	return b.String()
}

// Edge is a directed junction between two nodes
type Edge struct {
	ID         string
	SV         StructuralVariant
	Attributes Attributes
}

// IsPlaceholder reports whether the edge was synthesized from a chain
func (e *Edge) IsPlaceholder() bool {
	return e.SV.IsZero()
}
