package btsg

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/pools"
)

// maxLineSize bounds one TSG record read by the encoder
const maxLineSize = 256 << 20

// section collects the lines of one graph section by block type. The
// implicit section for records preceding any G line has an empty id and no
// declaration.
type section struct {
	id     string
	decl   string
	blocks map[BlockType][]string
}

func newSection(id string) *section {
	return &section{id: id, blocks: make(map[BlockType][]string)}
}

func (s *section) marker() string { return "G\t" + s.id }

// Encoder turns TSG text into a BTSG container
type Encoder struct {
	opts Options
}

// NewEncoder creates an encoder. Zero option fields take their defaults.
func NewEncoder(opts Options) (*Encoder, error) {
	opts = opts.withDefaults()
	if opts.Codec != CodecZstd && opts.Codec != CodecSnappy {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, opts.Codec)
	}
	return &Encoder{opts: opts}, nil
}

type encodeInput struct {
	headers  []string
	sections []*section
	dicts    *Dictionaries
	lines    int
}

// collect reads every record once, interning identifiers and grouping
// lines by section and block type
func (e *Encoder) collect(r io.Reader) (*encodeInput, error) {
	in := &encodeInput{dicts: NewDictionaries()}
	byID := make(map[string]*section)
	var current *section

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || line[0] == '#' {
			continue
		}
		fields := strings.Split(line, "\t")
		in.dicts.Observe(fields)
		in.lines++

		tag := fields[0]
		switch tag {
		case "H":
			in.headers = append(in.headers, line)
			continue
		case "G":
			if len(fields) < 2 || fields[1] == "" {
				e.opts.Logger.Warn("graph record without id skipped", logging.Line(lineNo))
				e.opts.Metrics.RecordParseWarning("malformed_graph")
				continue
			}
			if s, ok := byID[fields[1]]; ok {
				e.opts.Logger.Warn("graph declared twice, keeping the first declaration",
					logging.GraphID(fields[1]), logging.Line(lineNo))
				current = s
				continue
			}
			current = newSection(fields[1])
			current.decl = line
			byID[current.id] = current
			in.sections = append(in.sections, current)
			continue
		}

		bt, ok := blockTypeForTag(tag)
		if !ok {
			e.opts.Logger.Warn("unknown record tag skipped", logging.RecordTag(tag), logging.Line(lineNo))
			e.opts.Metrics.RecordParseWarning("unknown_tag")
			continue
		}
		if current == nil {
			current = newSection("")
			byID[""] = current
			in.sections = append(in.sections, current)
		}
		current.blocks[bt] = append(current.blocks[bt], line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read TSG input at line %d: %w", lineNo+1, err)
	}
	return in, nil
}

// sortRecords stably groups node lines by chromosome and edge lines by SV
// type
func sortRecords(s *section) {
	nodes := s.blocks[BlockNode]
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodeChromosome(nodes[i]) < nodeChromosome(nodes[j])
	})
	edges := s.blocks[BlockEdge]
	sort.SliceStable(edges, func(i, j int) bool {
		return edgeSVType(edges[i]) < edgeSVType(edges[j])
	})
}

func field(line string, n int) string {
	for i := 0; i < n; i++ {
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			return ""
		}
		line = line[tab+1:]
	}
	if tab := strings.IndexByte(line, '\t'); tab >= 0 {
		return line[:tab]
	}
	return line
}

func nodeChromosome(line string) string {
	chrom, _, _ := strings.Cut(field(line, 2), ":")
	return chrom
}

func edgeSVType(line string) string {
	sv := field(line, 4)
	if i := strings.LastIndexByte(sv, ','); i >= 0 {
		return sv[i+1:]
	}
	return sv
}

// Encode reads TSG text from r and writes the container to w. Output is
// written block by block; on error w may hold a partial container.
func (e *Encoder) Encode(r io.Reader, w io.Writer) (Stats, error) {
	start := time.Now()
	stats := newStats()
	log := e.opts.Logger.With(logging.Component("btsg"), logging.Operation("encode"))

	fail := func(kind string, err error) (Stats, error) {
		e.opts.Metrics.RecordCodecError("encode", kind)
		log.Error("encode failed", logging.Error(err))
		return stats, err
	}

	in, err := e.collect(r)
	if err != nil {
		return fail("read", err)
	}
	stats.Lines = in.lines
	stats.Sections = len(in.sections)

	comp, err := NewCompressor(e.opts.Codec, e.opts.Level)
	if err != nil {
		return fail("codec", err)
	}
	defer comp.Close()

	bw := bufio.NewWriter(w)
	if err := writePreamble(bw); err != nil {
		return fail("write", fmt.Errorf("failed to write preamble: %w", err))
	}

	emit := func(t BlockType, payload []byte) error {
		data := comp.Compress(payload)
		if _, err := writeBlock(bw, Block{Type: t, Data: data}); err != nil {
			return fmt.Errorf("failed to write %s block: %w", t, err)
		}
		stats.addBlock(t, len(data), len(payload))
		e.opts.Metrics.RecordBlock("encode", t.String(), len(data), len(payload))
		log.Debug("block written", logging.BlockType(t.String()),
			logging.Bytes("compressed", len(data)), logging.Bytes("uncompressed", len(payload)))
		return nil
	}

	dict, err := in.dicts.MarshalBinary()
	if err != nil {
		return fail("dictionary", err)
	}
	if err := emit(BlockDictionary, dict); err != nil {
		return fail("write", err)
	}

	emitLines := func(t BlockType, lines []string) error {
		size := len(lines)
		for _, l := range lines {
			size += len(l)
		}
		payload := pools.NewBufferBuilder(size)
		defer payload.Release()
		payload.WriteLines(lines)
		return emit(t, payload.Bytes())
	}

	if len(in.headers) > 0 {
		if err := emitLines(BlockHeader, in.headers); err != nil {
			return fail("write", err)
		}
	}

	for _, s := range in.sections {
		if e.opts.SortRecords {
			sortRecords(s)
		}
		for _, t := range sectionBlockOrder {
			var lines []string
			if t == BlockGraph {
				if s.decl == "" {
					continue
				}
				lines = []string{s.decl}
			} else {
				if len(s.blocks[t]) == 0 {
					continue
				}
				lines = append([]string{s.marker()}, s.blocks[t]...)
			}
			if err := emitLines(t, lines); err != nil {
				return fail("write", err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fail("write", fmt.Errorf("failed to flush container: %w", err))
	}

	elapsed := time.Since(start)
	e.opts.Metrics.RecordCodecRun("encode", elapsed, stats.CompressionRatio())
	log.Info("encode finished",
		logging.Int("blocks", stats.Blocks),
		logging.Int("sections", stats.Sections),
		logging.Uint64("uncompressed", stats.BytesUncompressed),
		logging.Uint64("compressed", stats.BytesCompressed),
		logging.Latency(elapsed))
	return stats, nil
}
