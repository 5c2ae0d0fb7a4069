// Package config loads settings for the tsg tools from an optional YAML
// file overlaid with TSG_* environment variables.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-tsg/pkg/algorithms"
	"github.com/dd0wney/cluso-tsg/pkg/btsg"
	"github.com/dd0wney/cluso-tsg/pkg/document"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/metrics"
	"github.com/dd0wney/cluso-tsg/pkg/validation"
)

// Config holds every tunable of the command line tools
type Config struct {
	Log      LogConfig      `yaml:"log"`
	Codec    CodecConfig    `yaml:"codec"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// LogConfig selects the log format and threshold
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

// CodecConfig configures BTSG compression
type CodecConfig struct {
	Name         string `yaml:"name" validate:"oneof=zstd snappy"`
	Level        int    `yaml:"level"`
	SortRecords  bool   `yaml:"sort_records"`
	MaxBlockSize uint32 `yaml:"max_block_size"`
}

// AnalysisConfig configures traversal and topology analysis
type AnalysisConfig struct {
	BubbleDepth int `yaml:"bubble_depth"`
	// Workers is the traversal concurrency; 0 means GOMAXPROCS
	Workers int `yaml:"workers"`
}

// Environment variables read by ApplyEnv
const (
	EnvLogLevel     = "TSG_LOG_LEVEL"
	EnvLogFormat    = "TSG_LOG_FORMAT"
	EnvCodec        = "TSG_CODEC"
	EnvCodecLevel   = "TSG_CODEC_LEVEL"
	EnvSortRecords  = "TSG_SORT_RECORDS"
	EnvMaxBlockSize = "TSG_MAX_BLOCK_SIZE"
	EnvBubbleDepth  = "TSG_BUBBLE_DEPTH"
	EnvWorkers      = "TSG_WORKERS"
)

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Codec: CodecConfig{
			Name:         btsg.CodecZstd,
			Level:        3,
			MaxBlockSize: btsg.DefaultMaxBlockSize,
		},
		Analysis: AnalysisConfig{
			BubbleDepth: algorithms.DefaultBubbleDepth,
			Workers:     0,
		},
	}
}

// Parse reads YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Load reads the YAML file at path (defaults when path is empty), applies
// the environment and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = Parse(data); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from TSG_* variables found by lookup
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)
	str(EnvCodec, &c.Codec.Name)
	num(EnvCodecLevel, &c.Codec.Level)
	num(EnvBubbleDepth, &c.Analysis.BubbleDepth)
	num(EnvWorkers, &c.Analysis.Workers)

	if v, ok := lookup(EnvSortRecords); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSortRecords, err))
		} else {
			c.Codec.SortRecords = b
		}
	}
	if v, ok := lookup(EnvMaxBlockSize); ok && v != "" {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvMaxBlockSize, err))
		} else {
			c.Codec.MaxBlockSize = uint32(n)
		}
	}
	return errors.Join(errs...)
}

// Validate checks field values and their combinations
func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	return validation.NewConfigValidator("config").
		When(c.Codec.Name == btsg.CodecZstd, func(cv *validation.ConfigValidator) {
			cv.RangeInt("codec.level", c.Codec.Level, 1, 22)
		}).
		Custom("codec.max_block_size", func() error {
			if c.Codec.MaxBlockSize == 0 {
				return errors.New("must be positive")
			}
			return nil
		}).
		Positive("analysis.bubble_depth", c.Analysis.BubbleDepth).
		NonNegative("analysis.workers", c.Analysis.Workers).
		Validate()
}

// Workers resolves the configured worker count
func (c Config) Workers() int {
	return validation.DefaultOrInt(c.Analysis.Workers, runtime.GOMAXPROCS(0))
}

// Logger builds the configured logger writing to w
func (c Config) Logger(w io.Writer) logging.Logger {
	return logging.New(validation.DefaultOr(c.Log.Format, "text"), w, logging.ParseLevel(c.Log.Level))
}

// CodecOptions returns encoder and decoder options
func (c Config) CodecOptions(logger logging.Logger, reg *metrics.Registry) btsg.Options {
	return btsg.Options{
		Codec:        c.Codec.Name,
		Level:        c.Codec.Level,
		SortRecords:  c.Codec.SortRecords,
		MaxBlockSize: c.Codec.MaxBlockSize,
		Logger:       logger,
		Metrics:      reg,
	}
}

// DocumentOptions returns parse and analysis options
func (c Config) DocumentOptions(logger logging.Logger, reg *metrics.Registry) []document.Option {
	return []document.Option{
		document.WithLogger(logger),
		document.WithMetrics(reg),
		document.WithWorkers(c.Workers()),
		document.WithBubbleDepth(c.Analysis.BubbleDepth),
	}
}
