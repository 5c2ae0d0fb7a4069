package algorithms

import (
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/metrics"
)

// DefaultBubbleDepth caps each side of the lock-step bubble search
const DefaultBubbleDepth = 100

type options struct {
	workers     int
	bubbleDepth int
	logger      logging.Logger
	metrics     *metrics.Registry
}

func defaultOptions() options {
	return options{
		workers:     1,
		bubbleDepth: DefaultBubbleDepth,
		logger:      logging.NopLogger{},
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures a PathEnumerator or TopologyAnalyzer
type Option func(*options)

// WithWorkers enumerates paths from up to n sources concurrently.
// Values below 2 keep traversal sequential.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBubbleDepth sets the bubble search depth cap. A non-positive depth
// selects DefaultBubbleDepth; the search is never unbounded.
func WithBubbleDepth(depth int) Option {
	return func(o *options) {
		if depth <= 0 {
			depth = DefaultBubbleDepth
		}
		o.bubbleDepth = depth
	}
}

// WithLogger sets the logger for diagnostics
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(logger)
	}
}

// WithMetrics records traversal and bubble counts on r
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}
