package btsg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/pools"
)

type decodeState int

const (
	stateExpectMagic decodeState = iota
	stateExpectVersion
	stateReadBlocks
	stateDone
)

// decodedSection accumulates the text of one section while blocks arrive
type decodedSection struct {
	decl  string
	nodes []string
	edges []string
	rest  []string
}

// Decoder turns a BTSG container back into TSG text
type Decoder struct {
	opts Options
}

// NewDecoder creates a decoder. Zero option fields take their defaults.
func NewDecoder(opts Options) *Decoder {
	return &Decoder{opts: opts.withDefaults()}
}

// Decoded is the result of decoding one container
type Decoded struct {
	Text         string
	Dictionaries *Dictionaries
	Stats        Stats
}

type assembler struct {
	headers  []string
	order    []string
	sections map[string]*decodedSection
}

func (a *assembler) section(id string) *decodedSection {
	s, ok := a.sections[id]
	if !ok {
		s = &decodedSection{}
		a.sections[id] = s
		a.order = append(a.order, id)
	}
	return s
}

func (a *assembler) text() string {
	var b strings.Builder
	write := func(lines []string) {
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	write(a.headers)
	for _, id := range a.order {
		s := a.sections[id]
		if s.decl != "" {
			write([]string{s.decl})
		}
		write(s.nodes)
		write(s.edges)
		write(s.rest)
	}
	return b.String()
}

func splitLines(payload []byte) []string {
	var out []string
	for _, l := range strings.Split(string(payload), "\n") {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// sectionMarker returns the id named by a leading G line
func sectionMarker(line string) (string, bool) {
	if !strings.HasPrefix(line, "G\t") {
		return "", false
	}
	id, _, _ := strings.Cut(line[2:], "\t")
	return id, true
}

// DecodeAll reads a whole container from r. Nothing is returned but the
// error when decoding fails.
func (d *Decoder) DecodeAll(r io.Reader) (*Decoded, error) {
	start := time.Now()
	log := d.opts.Logger.With(logging.Component("btsg"), logging.Operation("decode"))
	stats := newStats()
	dicts := NewDictionaries()
	asm := &assembler{sections: make(map[string]*decodedSection)}

	fail := func(kind string, err error) (*Decoded, error) {
		d.opts.Metrics.RecordCodecError("decode", kind)
		log.Error("decode failed", logging.Error(err))
		return nil, err
	}

	dec, err := newDecompressor(d.opts.MaxDecodedSize)
	if err != nil {
		return fail("codec", err)
	}
	defer dec.close()

	var (
		state  = stateExpectMagic
		offset int64
		blocks *BlockReader
		buf    [4]byte
	)
	for state != stateDone {
		switch state {
		case stateExpectMagic:
			n, err := io.ReadFull(r, buf[:])
			if string(buf[:n]) != Magic[:n] {
				return fail("magic", &FormatError{Op: "read magic", Offset: 0,
					Cause: fmt.Errorf("%w: got %q", ErrBadMagic, buf[:n])})
			}
			if err != nil {
				return fail("magic", &FormatError{Op: "read magic", Offset: int64(n), Cause: truncation(err)})
			}
			offset += 4
			state = stateExpectVersion

		case stateExpectVersion:
			if _, err := io.ReadFull(r, buf[:]); err != nil {
				return fail("version", &FormatError{Op: "read version", Offset: offset, Cause: truncation(err)})
			}
			if v := binary.LittleEndian.Uint32(buf[:]); v != Version {
				return fail("version", &FormatError{Op: "read version", Offset: offset,
					Cause: fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)})
			}
			offset += 4
			blocks = NewBlockReader(r, offset, d.opts.MaxBlockSize)
			state = stateReadBlocks

		case stateReadBlocks:
			blockOffset := blocks.Offset()
			block, err := blocks.Next()
			if errors.Is(err, io.EOF) {
				state = stateDone
				continue
			}
			if err != nil {
				kind := "io"
				if errors.Is(err, ErrTruncated) {
					kind = "truncated"
				} else if errors.Is(err, ErrBlockTooLarge) {
					kind = "oversized"
				}
				return fail(kind, err)
			}
			if err := d.handleBlock(block, blockOffset, dec, dicts, asm, &stats, log); err != nil {
				return fail("block", err)
			}
		}
	}

	text := asm.text()
	stats.Sections = len(asm.order)
	stats.Lines = strings.Count(text, "\n")

	elapsed := time.Since(start)
	d.opts.Metrics.RecordCodecRun("decode", elapsed, stats.CompressionRatio())
	log.Info("decode finished",
		logging.Int("blocks", stats.Blocks),
		logging.Int("sections", stats.Sections),
		logging.Int("skipped", stats.SkippedBlocks),
		logging.Latency(elapsed))
	return &Decoded{Text: text, Dictionaries: dicts, Stats: stats}, nil
}

func (d *Decoder) handleBlock(block Block, offset int64, dec *decompressor, dicts *Dictionaries,
	asm *assembler, stats *Stats, log logging.Logger) error {

	if !block.Type.Known() {
		log.Warn("unknown block type skipped", logging.BlockType(block.Type.String()),
			logging.Int64("offset", offset), logging.Bytes("size", len(block.Data)))
		d.opts.Metrics.RecordCodecError("decode", "unknown_block")
		stats.SkippedBlocks++
		return nil
	}

	payload, _, err := dec.decompress(block.Data, pools.GetBytes(2*len(block.Data)))
	defer pools.PutBytes(payload)
	if err != nil {
		if block.Type == BlockDictionary {
			log.Warn("dictionary block skipped", logging.Error(err))
			stats.SkippedBlocks++
			return nil
		}
		return &FormatError{Op: "decompress " + block.Type.String() + " block", Offset: offset, Cause: err}
	}
	stats.addBlock(block.Type, len(block.Data), len(payload))
	d.opts.Metrics.RecordBlock("decode", block.Type.String(), len(block.Data), len(payload))

	switch block.Type {
	case BlockDictionary:
		if err := dicts.UnmarshalBinary(payload); err != nil {
			log.Warn("dictionary block skipped", logging.Error(err))
			stats.SkippedBlocks++
		}
		return nil
	case BlockHeader:
		asm.headers = append(asm.headers, splitLines(payload)...)
		return nil
	}

	lines := splitLines(payload)
	if len(lines) == 0 {
		return nil
	}
	id, ok := sectionMarker(lines[0])
	if !ok {
		// blocks without a marker belong to the implicit section
		log.Debug("block without section marker", logging.BlockType(block.Type.String()),
			logging.Int64("offset", offset))
		asm.section("").rest = append(asm.section("").rest, lines...)
		return nil
	}
	s := asm.section(id)
	body := lines[1:]

	switch block.Type {
	case BlockGraph:
		if s.decl == "" {
			s.decl = lines[0]
		}
		// single-block sections: split the body by record tag
		for _, l := range body {
			switch {
			case strings.HasPrefix(l, "N\t"):
				s.nodes = append(s.nodes, l)
			case strings.HasPrefix(l, "E\t"):
				s.edges = append(s.edges, l)
			case strings.HasPrefix(l, "G\t"):
				// repeated declaration
			default:
				s.rest = append(s.rest, l)
			}
		}
	case BlockNode:
		s.nodes = append(s.nodes, body...)
	case BlockEdge:
		s.edges = append(s.edges, body...)
	default:
		s.rest = append(s.rest, body...)
	}
	return nil
}

// Decode reads a container and returns its TSG text
func (d *Decoder) Decode(r io.Reader) (string, error) {
	out, err := d.DecodeAll(r)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// DecodeTo decodes r and writes the text to w only once decoding succeeded
func (d *Decoder) DecodeTo(r io.Reader, w io.Writer) (Stats, error) {
	out, err := d.DecodeAll(r)
	if err != nil {
		return Stats{}, err
	}
	if _, err := io.WriteString(w, out.Text); err != nil {
		return out.Stats, fmt.Errorf("failed to write TSG text: %w", err)
	}
	return out.Stats, nil
}
