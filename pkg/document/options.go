package document

import (
	"github.com/dd0wney/cluso-tsg/pkg/algorithms"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/metrics"
)

type options struct {
	logger      logging.Logger
	metrics     *metrics.Registry
	workers     int
	bubbleDepth int
}

// Option configures parsing and analysis of a Document
type Option func(*options)

func applyOptions(opts []Option) options {
	o := options{
		logger:      logging.NopLogger{},
		workers:     1,
		bubbleDepth: algorithms.DefaultBubbleDepth,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger for parse warnings and analysis traces
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logging.OrNop(logger)
	}
}

// WithMetrics records parse and analysis metrics on r
func WithMetrics(r *metrics.Registry) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithWorkers sets the concurrency of traversal and summaries
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithBubbleDepth sets the bubble search depth cap used by summaries
func WithBubbleDepth(depth int) Option {
	return func(o *options) {
		o.bubbleDepth = depth
	}
}

func (o options) analysis() []algorithms.Option {
	return []algorithms.Option{
		algorithms.WithWorkers(o.workers),
		algorithms.WithBubbleDepth(o.bubbleDepth),
		algorithms.WithLogger(o.logger),
		algorithms.WithMetrics(o.metrics),
	}
}
