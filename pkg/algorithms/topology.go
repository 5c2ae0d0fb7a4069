package algorithms

import (
	"sync"

	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
)

// TopologyClass is the structural category of a graph section
type TopologyClass int

const (
	Undefined TopologyClass = iota
	SimpleFadeIn
	SimpleFadeOut
	SimpleBipartite
	UniquePath
	EquiPath
	HeteroPath
)

// String returns the class name
func (c TopologyClass) String() string {
	switch c {
	case SimpleFadeIn:
		return "fade-in"
	case SimpleFadeOut:
		return "fade-out"
	case SimpleBipartite:
		return "bipartite"
	case UniquePath:
		return "unique-path"
	case EquiPath:
		return "equi-path"
	case HeteroPath:
		return "hetero-path"
	default:
		return "undefined"
	}
}

// IsSimple reports whether c is one of the single-node-path classes
func (c TopologyClass) IsSimple() bool {
	return c == SimpleFadeIn || c == SimpleFadeOut || c == SimpleBipartite
}

// TopologyAnalyzer answers structural questions about one section. It
// only reads the section, and bubbles are computed once per analyzer.
type TopologyAnalyzer struct {
	section *storage.GraphSection
	opts    options

	bubblesOnce sync.Once
	bubbles     []Bubble
}

// NewTopologyAnalyzer creates an analyzer over section
func NewTopologyAnalyzer(section *storage.GraphSection, opts ...Option) *TopologyAnalyzer {
	return &TopologyAnalyzer{
		section: section,
		opts:    applyOptions(opts),
	}
}

// IsConnected reports weak connectivity
func (ta *TopologyAnalyzer) IsConnected() bool {
	return IsConnected(ta.section)
}

// IsCyclic reports whether any directed cycle exists
func (ta *TopologyAnalyzer) IsCyclic() bool {
	return HasCycle(ta.section)
}

// IsDAG reports whether the section is connected and acyclic
func (ta *TopologyAnalyzer) IsDAG() bool {
	return ta.IsConnected() && !ta.IsCyclic()
}

// Bubbles returns the deduplicated bubble pairs of the section
func (ta *TopologyAnalyzer) Bubbles() []Bubble {
	ta.bubblesOnce.Do(func() {
		timer := logging.StartTimer(ta.opts.logger, "bubble detection finished",
			logging.Component("topology"), logging.GraphID(ta.section.ID))
		ta.bubbles = findBubbles(ta.section, ta.opts.bubbleDepth)
		timer.End(logging.Count(len(ta.bubbles)), logging.Int("depth", ta.opts.bubbleDepth))
		ta.opts.metrics.RecordBubbles(len(ta.bubbles))
	})
	return ta.bubbles
}

// IsBubble reports whether at least one bubble exists
func (ta *TopologyAnalyzer) IsBubble() bool {
	return len(ta.Bubbles()) > 0
}

// Classify enumerates the section's paths and classifies it
func (ta *TopologyAnalyzer) Classify() (TopologyClass, error) {
	paths, err := NewPathEnumerator(ta.section, ta.optionList()...).Traverse()
	if err != nil {
		return Undefined, err
	}
	return ta.ClassifyPaths(paths), nil
}

// ClassifyPaths classifies the section given its already enumerated paths.
//
// A section is simple when no path has more than one node; simple sections
// are split by their source and sink counts. Otherwise a single source and
// sink make a unique path, and remaining sections are classified by their
// bubbles: equal branch lengths throughout, or not.
func (ta *TopologyAnalyzer) ClassifyPaths(paths []*storage.Path) TopologyClass {
	class := ta.classify(paths)
	ta.opts.metrics.RecordClassification(class.String())
	ta.opts.logger.Debug("section classified",
		logging.GraphID(ta.section.ID), logging.String("class", class.String()))
	return class
}

func (ta *TopologyAnalyzer) classify(paths []*storage.Path) TopologyClass {
	sources := len(ta.section.Sources())
	sinks := len(ta.section.Sinks())

	if MaxPathLen(paths) <= 1 {
		switch {
		case sources > 1 && sinks == 1:
			return SimpleFadeIn
		case sources == 1 && sinks > 1:
			return SimpleFadeOut
		case sources > 1 && sinks > 1:
			return SimpleBipartite
		default:
			return Undefined
		}
	}

	if sources == 1 && sinks == 1 {
		return UniquePath
	}

	bubbles := ta.Bubbles()
	if len(bubbles) == 0 {
		return Undefined
	}
	for _, b := range bubbles {
		if !b.Balanced() {
			return HeteroPath
		}
	}
	return EquiPath
}

func (ta *TopologyAnalyzer) optionList() []Option {
	o := ta.opts
	return []Option{
		WithWorkers(o.workers),
		WithBubbleDepth(o.bubbleDepth),
		WithLogger(o.logger),
		WithMetrics(o.metrics),
	}
}

// MaxPathLen returns the node count of the longest path, 0 for none
func MaxPathLen(paths []*storage.Path) int {
	longest := 0
	for _, p := range paths {
		if p.Len() > longest {
			longest = p.Len()
		}
	}
	return longest
}
