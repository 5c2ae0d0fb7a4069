package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-tsg/pkg/btsg"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
)

func newCompressCmd(a *app) *cobra.Command {
	var (
		level int
		codec string
		sort  bool
	)
	cmd := &cobra.Command{
		Use:   "compress <in.tsg> <out.btsg>",
		Short: "Encode a TSG file as a BTSG container",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.codecOptions()
			if cmd.Flags().Changed("level") {
				opts.Level = level
			}
			if cmd.Flags().Changed("codec") {
				opts.Codec = codec
			}
			if cmd.Flags().Changed("sort") {
				opts.SortRecords = sort
			}

			stats, err := btsg.CompressFile(args[0], args[1], opts)
			if err != nil {
				return err
			}
			a.logger.Info("compressed", logging.Path(args[1]),
				logging.Int("blocks", stats.Blocks),
				logging.Float64("ratio", stats.CompressionRatio()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d sections, %d blocks, %d -> %d bytes (%.1f%% saved)\n",
				args[1], stats.Sections, stats.Blocks, stats.BytesUncompressed, stats.BytesCompressed,
				100*stats.CompressionRatio())
			return nil
		},
	}
	cmd.Flags().IntVar(&level, "level", 3, "zstd compression level (1-22)")
	cmd.Flags().StringVar(&codec, "codec", btsg.CodecZstd, "block codec (zstd or snappy)")
	cmd.Flags().BoolVar(&sort, "sort", false, "group node lines by chromosome and edge lines by SV type")
	return cmd
}

func newDecompressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "decompress <in.btsg> [out.tsg]",
		Short: "Decode a BTSG container to TSG text (stdout when no output is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				stats, err := btsg.DecompressFile(args[0], args[1], a.codecOptions())
				if err != nil {
					return err
				}
				a.logger.Info("decompressed", logging.Path(args[1]),
					logging.Int("blocks", stats.Blocks), logging.Int("skipped", stats.SkippedBlocks))
				return nil
			}

			text, err := btsg.DecompressFileToString(args[0], a.codecOptions())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}

// createOutput opens path for writing, or returns stdout for an empty path
func createOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
