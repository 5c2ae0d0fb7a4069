// Package commands implements the tsg command line tool
package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-tsg/pkg/btsg"
	"github.com/dd0wney/cluso-tsg/pkg/config"
	"github.com/dd0wney/cluso-tsg/pkg/document"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/metrics"
)

// app carries state shared by every subcommand of one invocation
type app struct {
	cfgFile     string
	logLevel    string
	dumpMetrics bool

	cfg    config.Config
	logger logging.Logger
	reg    *metrics.Registry
	runID  string
}

// NewRootCmd builds the tsg command tree
func NewRootCmd() *cobra.Command {
	a := &app{logger: logging.NopLogger{}}

	root := &cobra.Command{
		Use:   "tsg",
		Short: "Transcript segment graph toolkit",
		Long: `tsg parses, analyses and converts transcript segment graph (TSG) files
and their compressed BTSG containers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !a.dumpMetrics {
				return nil
			}
			return a.reg.WriteText(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "print metrics in Prometheus text format on exit")

	root.AddCommand(
		newCompressCmd(a),
		newDecompressCmd(a),
		newSummaryCmd(a),
		newTraverseCmd(a),
		newTopologyCmd(a),
		newQueryCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg
	a.runID = uuid.NewString()
	a.reg = metrics.NewRegistry()
	a.logger = cfg.Logger(cmd.ErrOrStderr()).With(
		logging.String("run_id", a.runID),
		logging.Operation(cmd.Name()))
	a.logger.Debug("command started", logging.Int("args", len(cmd.Flags().Args())))
	return nil
}

func (a *app) codecOptions() btsg.Options {
	return a.cfg.CodecOptions(a.logger, a.reg)
}

func (a *app) documentOptions() []document.Option {
	return a.cfg.DocumentOptions(a.logger, a.reg)
}

// loadDocument parses a TSG file, decompressing it first when it is a
// BTSG container
func (a *app) loadDocument(path string) (*document.Document, error) {
	packed, err := btsg.IsBTSGFile(path)
	if err != nil {
		return nil, err
	}
	if !packed {
		return document.ParseFile(path, a.documentOptions()...)
	}

	text, err := btsg.DecompressFileToString(path, a.codecOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	a.logger.Debug("container input decompressed", logging.Path(path), logging.Bytes("size", len(text)))
	return document.ParseString(text, a.documentOptions()...)
}
