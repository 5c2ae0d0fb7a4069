package btsg

import (
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/metrics"
)

// Options configures encoding and decoding
type Options struct {
	// Codec is "zstd" (default) or "snappy". Decoding detects the codec of
	// each block and ignores this field.
	Codec string
	// Level is the zstd compression level
	Level int
	// SortRecords groups node lines by chromosome and edge lines by SV type
	SortRecords bool
	// MaxBlockSize rejects larger declared block lengths when decoding
	MaxBlockSize uint32
	// MaxDecodedSize bounds the decompressed size of a single block
	MaxDecodedSize int

	Logger  logging.Logger
	Metrics *metrics.Registry
}

// DefaultOptions returns zstd level 3 with the default size limits
func DefaultOptions() Options {
	return Options{
		Codec:          CodecZstd,
		Level:          3,
		MaxBlockSize:   DefaultMaxBlockSize,
		MaxDecodedSize: DefaultMaxDecodedSize,
		Logger:         logging.NopLogger{},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Codec == "" {
		o.Codec = d.Codec
	}
	if o.Level <= 0 {
		o.Level = d.Level
	}
	if o.MaxBlockSize == 0 {
		o.MaxBlockSize = d.MaxBlockSize
	}
	if o.MaxDecodedSize <= 0 {
		o.MaxDecodedSize = d.MaxDecodedSize
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}
