// SPDX-License-Identifier: MIT

// Package cli wires the hmmalign commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/corpus"
	"github.com/katalvlaran/hmmalign/logging"
)

// globals are the persistent flags shared by every command.
type globals struct {
	configPath string
	logLevel   string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "hmmalign",
		Short: "one-to-many HMM transducer",
		Long: `hmmalign - learn and apply one-to-many sequence transductions
  - alphabet: select the chunk types needed to align a corpus
  - train:    estimate an HMM over every admissible alignment
  - decode:   transduce new sequences with Viterbi`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "hmmalign.yaml", "Configuration file (defaults when missing)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	root.AddCommand(newConfigCmd(g))
	root.AddCommand(newAlphabetCmd(g))
	root.AddCommand(newGraphsCmd(g))
	root.AddCommand(newTrainCmd(g))
	root.AddCommand(newDecodeCmd(g))

	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// load reads the configuration and builds the logger on cmd's stderr.
func (g *globals) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFromFile(g.configPath)
	if err != nil {
		return nil, nil, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	return cfg, logging.New(cfg.Logging(cmd.ErrOrStderr())), nil
}

// openCorpus reads a TSV corpus split as the configuration says.
func openCorpus(cfg *config.Config, path string, logger *slog.Logger) (*corpus.TSV, error) {
	split, err := cfg.Splitter()
	if err != nil {
		return nil, err
	}

	return corpus.NewTSVFile(path, split, logger), nil
}

// joiner glues decoded below-symbols back into a column.
func joiner(cfg *config.Config) string {
	if cfg.Corpus.Split == "" || cfg.Corpus.Split == "runes" {
		return ""
	}

	return " "
}

func closeStore(s any) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func requireFlags(cmd *cobra.Command, names ...string) {
	for _, n := range names {
		_ = cmd.MarkFlagRequired(n)
	}
}

func trimLine(s string) string { return strings.TrimRight(s, "\r\n") }
