package commands

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dd0wney/cluso-tsg/pkg/document"
	"github.com/dd0wney/cluso-tsg/pkg/logging"
	"github.com/dd0wney/cluso-tsg/pkg/storage"
	"github.com/dd0wney/cluso-tsg/pkg/validation"
)

// TopologyHeader is the CSV header printed by the topology command
var TopologyHeader = []string{"gid", "connected", "cyclic", "bubbles", "class"}

func newSummaryCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "summary <in.tsg|in.btsg>",
		Short: "Print per-graph statistics as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			w, done, err := createOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := doc.Summarize(w); err != nil {
				done()
				return err
			}
			return done()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write CSV to this file instead of stdout")
	return cmd
}

func newTraverseCmd(a *app) *cobra.Command {
	var graphID string
	cmd := &cobra.Command{
		Use:   "traverse <in>",
		Short: "Enumerate read-continuous paths and print them as P records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}

			var paths []*storage.Path
			if graphID != "" {
				paths, err = doc.Traverse(graphID)
			} else {
				paths, err = doc.TraverseAll()
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range paths {
				line, err := p.Format()
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(out, line); err != nil {
					return err
				}
			}
			a.logger.Info("traversal finished", logging.Count(len(paths)))
			return nil
		},
	}
	cmd.Flags().StringVarP(&graphID, "graph", "g", "", "only traverse this graph")
	return cmd
}

func newTopologyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "topology <in>",
		Short: "Classify the topology of every graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}

			w := csv.NewWriter(cmd.OutOrStdout())
			if err := w.Write(TopologyHeader); err != nil {
				return err
			}
			for _, g := range doc.Sections() {
				ta, err := doc.Analyzer(g.ID)
				if err != nil {
					return err
				}
				class, err := ta.Classify()
				if err != nil {
					return fmt.Errorf("failed to classify graph %s: %w", g.ID, err)
				}
				if err := w.Write([]string{
					g.ID,
					strconv.FormatBool(ta.IsConnected()),
					strconv.FormatBool(ta.IsCyclic()),
					strconv.Itoa(len(ta.Bubbles())),
					class.String(),
				}); err != nil {
					return err
				}
			}
			w.Flush()
			return w.Error()
		},
	}
}

func newQueryCmd(a *app) *cobra.Command {
	var (
		ids     []string
		idsFile string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "query <in> --ids g1,g2",
		Short: "Extract the named graphs and the links between them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := append([]string(nil), ids...)
			if idsFile != "" {
				data, err := os.ReadFile(idsFile)
				if err != nil {
					return fmt.Errorf("failed to read ids file: %w", err)
				}
				requested = append(requested, strings.Split(string(data), "\n")...)
			}
			selected, err := validation.GraphIDs(requested)
			if err != nil {
				return err
			}

			doc, err := a.loadDocument(args[0])
			if err != nil {
				return err
			}
			sub, err := doc.Query(selected...)
			if errors.Is(err, document.ErrGraphNotFound) {
				a.logger.Warn("query names an unknown graph", logging.Error(err))
			}
			if err != nil {
				return err
			}

			if output != "" {
				return sub.WriteFile(output)
			}
			_, err = sub.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringSliceVar(&ids, "ids", nil, "comma separated graph ids")
	cmd.Flags().StringVar(&idsFile, "ids-file", "", "file with one graph id per line")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write TSG to this file instead of stdout")
	return cmd
}
