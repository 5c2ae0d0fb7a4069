package btsg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// Dictionary is an append-only bijection between strings and dense ids.
// The first distinct string added to an empty dictionary gets id 0.
type Dictionary struct {
	ids     map[string]uint32
	strings map[uint32]string
	next    uint32
}

// NewDictionary creates an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{
		ids:     make(map[string]uint32),
		strings: make(map[uint32]string),
	}
}

// Add interns s and returns its id. Adding a known string returns the id
// it already has.
func (d *Dictionary) Add(s string) uint32 {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := d.next
	d.next++
	d.ids[s] = id
	d.strings[id] = s
	return id
}

// ID returns the id of s
func (d *Dictionary) ID(s string) (uint32, bool) {
	id, ok := d.ids[s]
	return id, ok
}

// Lookup returns the string with the given id
func (d *Dictionary) Lookup(id uint32) (string, bool) {
	s, ok := d.strings[id]
	return s, ok
}

// Len returns the number of entries
func (d *Dictionary) Len() int { return len(d.ids) }

// WriteTo writes [count:4] then [id:4][len:4][bytes] per entry, in id order
func (d *Dictionary) WriteTo(w io.Writer) (int64, error) {
	var buf [8]byte
	var total int64

	binary.LittleEndian.PutUint32(buf[:4], uint32(len(d.strings)))
	n, err := w.Write(buf[:4])
	total += int64(n)
	if err != nil {
		return total, err
	}

	for id := uint32(0); id < d.next; id++ {
		s, ok := d.strings[id]
		if !ok {
			continue
		}
		binary.LittleEndian.PutUint32(buf[:4], id)
		binary.LittleEndian.PutUint32(buf[4:], uint32(len(s)))
		n, err = w.Write(buf[:])
		total += int64(n)
		if err != nil {
			return total, err
		}
		n, err = io.WriteString(w, s)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// readDictionary reads one table written by WriteTo. Entry lengths are
// checked against the remaining input before allocating.
func readDictionary(r *bytes.Reader) (*Dictionary, error) {
	d := NewDictionary()
	var buf [8]byte

	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return nil, fmt.Errorf("%w: entry count: %v", ErrDictionary, err)
	}
	count := binary.LittleEndian.Uint32(buf[:4])

	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, fmt.Errorf("%w: entry %d header: %v", ErrDictionary, i, err)
		}
		id := binary.LittleEndian.Uint32(buf[:4])
		length := binary.LittleEndian.Uint32(buf[4:])
		if int64(length) > int64(r.Len()) {
			return nil, fmt.Errorf("%w: entry %d claims %d bytes, %d left", ErrDictionary, i, length, r.Len())
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrDictionary, i, err)
		}
		s := string(raw)
		d.ids[s] = id
		d.strings[id] = s
		if id >= d.next {
			d.next = id + 1
		}
	}
	return d, nil
}

// Dictionary table markers inside the dictionary block
const (
	tableNode       = 0x01
	tableEdge       = 0x02
	tableGraph      = 0x03
	tableRead       = 0x04
	tableChromosome = 0x05
	tableAttribute  = 0x06
)

// Dictionaries holds the six interning tables of a container
type Dictionaries struct {
	Node       *Dictionary
	Edge       *Dictionary
	Graph      *Dictionary
	Read       *Dictionary
	Chromosome *Dictionary
	Attribute  *Dictionary
}

// NewDictionaries creates six empty tables
func NewDictionaries() *Dictionaries {
	return &Dictionaries{
		Node:       NewDictionary(),
		Edge:       NewDictionary(),
		Graph:      NewDictionary(),
		Read:       NewDictionary(),
		Chromosome: NewDictionary(),
		Attribute:  NewDictionary(),
	}
}

func (ds *Dictionaries) tables() []struct {
	marker byte
	dict   **Dictionary
} {
	return []struct {
		marker byte
		dict   **Dictionary
	}{
		{tableNode, &ds.Node},
		{tableEdge, &ds.Edge},
		{tableGraph, &ds.Graph},
		{tableRead, &ds.Read},
		{tableChromosome, &ds.Chromosome},
		{tableAttribute, &ds.Attribute},
	}
}

// Observe interns the identifiers of one record, given as its tab split
// fields
func (ds *Dictionaries) Observe(fields []string) {
	if len(fields) < 2 {
		return
	}
	switch fields[0] {
	case "G":
		ds.Graph.Add(fields[1])
	case "N":
		if len(fields) < 4 {
			return
		}
		ds.Node.Add(fields[1])
		if chrom, _, ok := strings.Cut(fields[2], ":"); ok {
			ds.Chromosome.Add(chrom)
		}
		if fields[3] == "" {
			return
		}
		for _, entry := range strings.Split(fields[3], ",") {
			if read, _, ok := strings.Cut(entry, ":"); ok {
				ds.Read.Add(read)
			}
		}
	case "E":
		if len(fields) < 4 {
			return
		}
		ds.Edge.Add(fields[1])
		ds.Node.Add(fields[2])
		ds.Node.Add(fields[3])
	case "A":
		for _, attr := range fields[min(3, len(fields)):] {
			if tag, _, ok := strings.Cut(attr, ":"); ok {
				ds.Attribute.Add(tag)
			}
		}
	}
}

// MarshalBinary returns the uncompressed dictionary block payload
func (ds *Dictionaries) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range ds.tables() {
		buf.WriteByte(t.marker)
		if _, err := (*t.dict).WriteTo(&buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary replaces the tables named in data. Tables absent from
// data are left as they are.
func (ds *Dictionaries) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		marker, _ := r.ReadByte()
		var target **Dictionary
		for _, t := range ds.tables() {
			if t.marker == marker {
				target = t.dict
				break
			}
		}
		if target == nil {
			return fmt.Errorf("%w: unknown table marker 0x%02x", ErrDictionary, marker)
		}
		d, err := readDictionary(r)
		if err != nil {
			return err
		}
		*target = d
	}
	return nil
}
