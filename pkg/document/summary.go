package document

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dd0wney/cluso-tsg/pkg/algorithms"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/parallel"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// SummaryHeader is the CSV header row written by Summarize
var SummaryHeader = []string{"gid", "nodes", "edges", "paths", "max_path_len", "super_path", "bubble"}

// SectionSummary describes one section
type SectionSummary struct {
	GraphID    string
	Nodes      int
	Edges      int
	Paths      int
	MaxPathLen int
	SuperPath  bool // some path shares a read across all of its nodes
	Bubble     bool
}

// Record returns the summary as a CSV row matching SummaryHeader
func (s SectionSummary) Record() []string {
	return []string{
		s.GraphID,
		strconv.Itoa(s.Nodes),
		strconv.Itoa(s.Edges),
		strconv.Itoa(s.Paths),
		strconv.Itoa(s.MaxPathLen),
		strconv.FormatBool(s.SuperPath),
		strconv.FormatBool(s.Bubble),
	}
}

type summaryResult struct {
	summary SectionSummary
	err     error
}

// Summary computes a SectionSummary per section, in section order. Sections
// are summarised concurrently on the document's worker count.
func (d *Document) Summary() ([]SectionSummary, error) {
	timer := logging.StartTimer(d.opts.logger, "summary finished", logging.Component("document"))

	// sections run in parallel, so each traversal stays sequential
	opts := append(d.opts.analysis(), algorithms.WithWorkers(1))
	results, err := parallel.Map(d.opts.workers, len(d.sections), func(i int) summaryResult {
		s, err := summarizeSection(d.sections[i], opts)
		return summaryResult{summary: s, err: err}
	}, parallel.WithLogger(d.opts.logger))
	if err != nil {
		timer.EndError(err)
		return nil, fmt.Errorf("failed to start summary workers: %w", err)
	}

	out := make([]SectionSummary, len(results))
	for i, r := range results {
		if r.err != nil {
			timer.EndError(r.err)
			return nil, fmt.Errorf("failed to summarise graph %s: %w", d.sections[i].ID, r.err)
		}
		if r.summary.GraphID == "" {
			// the worker panicked; the pool has logged it
			return nil, fmt.Errorf("failed to summarise graph %s", d.sections[i].ID)
		}
		out[i] = r.summary
	}
	timer.End(logging.Count(len(out)))
	return out, nil
}

func summarizeSection(g *storage.GraphSection, opts []algorithms.Option) (SectionSummary, error) {
	paths, err := algorithms.Traverse(g, opts...)
	if err != nil {
		return SectionSummary{}, err
	}

	s := SectionSummary{
		GraphID:    g.ID,
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		Paths:      len(paths),
		MaxPathLen: algorithms.MaxPathLen(paths),
	}
	for _, p := range paths {
		super, err := p.IsSuper()
		if err != nil {
			return SectionSummary{}, err
		}
		if super {
			s.SuperPath = true
			break
		}
	}
	s.Bubble = algorithms.NewTopologyAnalyzer(g, opts...).IsBubble()
	return s, nil
}

// Summarize writes the CSV summary, one row per section after the header
func (d *Document) Summarize(w io.Writer) error {
	summaries, err := d.Summary()
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}
	for _, s := range summaries {
		if err := cw.Write(s.Record()); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
