package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-tsg/pkg/btsg"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, btsg.CodecZstd, cfg.Codec.Name)
	assert.Equal(t, 3, cfg.Codec.Level)
	assert.Positive(t, cfg.Workers())
}

func TestParse_OverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
codec:
  name: snappy
  sort_records: true
analysis:
  workers: 4
`))
	require.NoError(t, err)

	assert.Equal(t, "snappy", cfg.Codec.Name)
	assert.True(t, cfg.Codec.SortRecords)
	assert.Equal(t, 4, cfg.Workers())
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep their defaults")
	assert.Equal(t, uint32(btsg.DefaultMaxBlockSize), cfg.Codec.MaxBlockSize)
}

func TestParse_EmptyAndUnknownKeys(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Parse([]byte("codec:\n  compression: zstd\n"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvLogLevel:     "debug",
		EnvLogFormat:    "json",
		EnvCodec:        " snappy ",
		EnvSortRecords:  "true",
		EnvMaxBlockSize: "4096",
		EnvBubbleDepth:  "12",
		EnvWorkers:      "",
	}))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "snappy", cfg.Codec.Name)
	assert.True(t, cfg.Codec.SortRecords)
	assert.Equal(t, uint32(4096), cfg.Codec.MaxBlockSize)
	assert.Equal(t, 12, cfg.Analysis.BubbleDepth)
	assert.Equal(t, 0, cfg.Analysis.Workers, "empty variables are ignored")
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvCodecLevel:   "fast",
		EnvSortRecords:  "sometimes",
		EnvMaxBlockSize: "-1",
	}))
	require.Error(t, err)
	for _, key := range []string{EnvCodecLevel, EnvSortRecords, EnvMaxBlockSize} {
		assert.Contains(t, err.Error(), key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad codec", func(c *Config) { c.Codec.Name = "lz4" }, "Name"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "Level"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "Format"},
		{"zstd level too high", func(c *Config) { c.Codec.Level = 30 }, "codec.level"},
		{"zero block size", func(c *Config) { c.Codec.MaxBlockSize = 0 }, "codec.max_block_size"},
		{"zero bubble depth", func(c *Config) { c.Analysis.BubbleDepth = 0 }, "analysis.bubble_depth"},
		{"negative workers", func(c *Config) { c.Analysis.Workers = -2 }, "analysis.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("snappy ignores level", func(t *testing.T) {
		cfg := Default()
		cfg.Codec.Name = btsg.CodecSnappy
		cfg.Codec.Level = 99
		assert.NoError(t, cfg.Validate())
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tsg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  format: json\n"), 0644))
	t.Setenv(EnvWorkers, "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 2, cfg.Workers())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidAfterEnv(t *testing.T) {
	t.Setenv(EnvCodec, "brotli")
	_, err := Load("")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Codec.SortRecords = true
	logger := logging.NewNopLogger()

	opts := cfg.CodecOptions(logger, nil)
	assert.Equal(t, btsg.CodecZstd, opts.Codec)
	assert.True(t, opts.SortRecords)
	assert.Equal(t, logger, opts.Logger)

	assert.Len(t, cfg.DocumentOptions(logger, nil), 4)
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "warn"
	var buf bytes.Buffer
	log := cfg.Logger(&buf)

	log.Info("hidden")
	log.Warn("shown")
	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.Contains(t, buf.String(), "shown")
}
