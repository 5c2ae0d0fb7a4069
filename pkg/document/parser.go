package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// MaxLineSize bounds a single TSG record. Sequence fields make lines long.
const MaxLineSize = 256 << 20

type parser struct {
	doc     *Document
	current *storage.GraphSection
	line    int
	opts    options
}

// Parse reads TSG text into a Document. Records preceding any G line go to
// the DefaultGraphID section, which is dropped afterwards if it holds no
// nodes. Sections lacking nodes or edges are bootstrapped from their chains,
// and the result is validated before it is returned.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	doc := New(opts...)
	p := &parser{doc: doc, opts: doc.opts}
	timer := logging.StartTimer(p.opts.logger, "document parsed", logging.Component("document"))

	current, err := doc.AddSection(DefaultGraphID)
	if err != nil {
		return nil, err
	}
	p.current = current

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			timer.EndError(err)
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("failed to read TSG input at line %d: %w", p.line+1, err)
	}

	for _, g := range doc.sections {
		doc.bootstrapChains(g)
	}
	if err := doc.Validate(); err != nil {
		timer.EndError(err)
		return nil, err
	}
	if g, ok := doc.Section(DefaultGraphID); ok && g.NodeCount() == 0 {
		doc.removeSection(DefaultGraphID)
	}

	for range doc.sections {
		p.opts.metrics.RecordSection()
	}
	timer.End(logging.Int("lines", p.line), logging.Int("graphs", len(doc.sections)),
		logging.Int("links", len(doc.links)))
	return doc, nil
}

// ParseString parses TSG text held in memory
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// ParseFile parses the TSG file at path
func ParseFile(path string, opts ...Option) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open TSG file: %w", err)
	}
	defer f.Close()
	return Parse(bufio.NewReaderSize(f, 1<<20), opts...)
}

func (p *parser) fail(kind, id string, cause error) error {
	return &ParseError{Line: p.line, Kind: kind, ID: id, Cause: cause}
}

func (p *parser) parseLine(line string) error {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" || line[0] == '#' {
		return nil
	}

	fields := strings.Split(line, "\t")
	tag := fields[0]
	id := ""
	if len(fields) > 1 {
		id = fields[1]
	}

	var err error
	switch tag {
	case "H":
		err = p.parseHeader(fields)
	case "G":
		err = p.parseGraph(fields)
	case "N":
		err = p.parseNode(fields)
	case "E":
		err = p.parseEdge(fields)
	case "U", "P", "C":
		err = p.parseGroup(fields)
	case "A":
		err = p.parseAttributes(fields)
		if len(fields) > 2 {
			id = fields[2]
		}
	case "L":
		err = p.parseLink(fields)
	default:
		p.opts.logger.Warn("unknown record tag skipped",
			logging.RecordTag(tag), logging.Line(p.line))
		p.opts.metrics.RecordParseWarning("unknown_tag")
		return nil
	}
	if err != nil {
		return p.fail(tag, id, err)
	}
	p.opts.metrics.RecordRecord(tag)
	return nil
}

func needFields(fields []string, n int) error {
	if len(fields) < n {
		return fmt.Errorf("%w: need at least %d fields, got %d", ErrMalformedRecord, n, len(fields))
	}
	return nil
}

func parseAttributeList(fields []string) ([]storage.Attribute, error) {
	attrs := make([]storage.Attribute, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		attr, err := storage.ParseAttribute(f)
		if err != nil {
			return nil, malformed(err)
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func (p *parser) parseHeader(fields []string) error {
	if err := needFields(fields, 3); err != nil {
		return err
	}
	p.doc.AddHeader(storage.Header{Tag: fields[1], Value: fields[2]})
	return nil
}

func (p *parser) parseGraph(fields []string) error {
	if err := needFields(fields, 2); err != nil {
		return err
	}
	attrs, err := parseAttributeList(fields[2:])
	if err != nil {
		return err
	}
	g, err := p.doc.AddSection(fields[1])
	if err != nil {
		return err
	}
	for _, a := range attrs {
		g.Attributes.Set(a)
	}
	p.current = g
	return nil
}

func (p *parser) parseNode(fields []string) error {
	node, err := storage.ParseNode(fields)
	if err != nil {
		return malformed(err)
	}
	p.current.AddNode(node)
	return nil
}

func (p *parser) parseEdge(fields []string) error {
	if err := needFields(fields, 5); err != nil {
		return err
	}
	sv, err := storage.ParseStructuralVariant(fields[4])
	if err != nil {
		return malformed(err)
	}
	if _, err := p.current.AddEdge(fields[2], fields[3], storage.Edge{ID: fields[1], SV: sv}); err != nil {
		return malformed(err)
	}
	return nil
}

func (p *parser) parseGroup(fields []string) error {
	group, err := storage.ParseGroup(fields)
	if err != nil {
		return malformed(err)
	}
	return p.current.AddGroup(group)
}

// parseAttributes handles A kind id attr... where kind is N, E, U, P, C or G.
// G targets any declared section; the others resolve in the current one.
func (p *parser) parseAttributes(fields []string) error {
	if err := needFields(fields, 4); err != nil {
		return err
	}
	kind, id := fields[1], fields[2]
	attrs, err := parseAttributeList(fields[3:])
	if err != nil {
		return err
	}

	var set func(storage.Attribute) error
	switch kind {
	case "N":
		set = func(a storage.Attribute) error { return p.current.SetNodeAttribute(id, a) }
	case "E":
		set = func(a storage.Attribute) error { return p.current.SetEdgeAttribute(id, a) }
	case "U", "P", "C":
		set = func(a storage.Attribute) error { return p.current.SetGroupAttribute(id, a) }
	case "G":
		g, ok := p.doc.Section(id)
		if !ok {
			return fmt.Errorf("%w: graph %s", ErrElementNotFound, id)
		}
		set = func(a storage.Attribute) error {
			g.Attributes.Set(a)
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown attribute target %q", ErrMalformedRecord, kind)
	}

	for _, a := range attrs {
		if err := set(a); err != nil {
			if storage.IsNotFound(err) {
				return fmt.Errorf("%w: %w", ErrElementNotFound, err)
			}
			return err
		}
	}
	return nil
}

func (p *parser) parseLink(fields []string) error {
	link, err := storage.ParseLink(fields)
	if err != nil {
		return malformed(err)
	}
	for _, ref := range []storage.ElementRef{link.Source, link.Target} {
		if _, ok := p.doc.Section(ref.Graph); !ok {
			return fmt.Errorf("%w: %s", ErrGraphNotFound, ref.Graph)
		}
	}
	p.doc.AddLink(link)
	return nil
}
