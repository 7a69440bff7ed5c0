package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/metrics"
	"github.com/katalvlaran/hmmalign/pipeline"
)

type transducer interface {
	Decode(above []string) ([]string, error)
}

func newDecodeCmd(g *globals) *cobra.Command {
	var (
		modelDir, unknown, ancestorsPath, metricsPath string
		chunked                                       bool
	)
	cmd := &cobra.Command{
		Use:   "decode [words...]",
		Short: "Transduce sequences with a trained model",
		Long: `Decode every argument, or every line of stdin when no argument is
given, and print "input<TAB>output".

Unknown above-symbols follow decode.unknown_policy (or --unknown):
  fail      stop with an error
  certain   emit nothing for the symbol (default)
  ancestor  borrow from the symbols listed in --ancestors
            (symbol<TAB>space separated ancestors), or from every
            known symbol when no file is given

Examples:
  hmmalign decode --model model/ CALLED
  cat words.txt | hmmalign decode --model model/ --chunked`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			if unknown != "" {
				cfg.Decode.UnknownPolicy = unknown
			}
			if cmd.Flags().Changed("chunked") {
				cfg.Decode.Chunked = chunked
			}
			split, err := cfg.Splitter()
			if err != nil {
				return err
			}
			model, err := pipeline.LoadModel(modelDir, pipeline.StringSymbols())
			if err != nil {
				return err
			}

			ancestors, err := loadAncestors(ancestorsPath, model.Alphabet.Symbols())
			if err != nil {
				return err
			}
			opts, err := config.DecodeOptions(cfg, ancestors)
			if err != nil {
				return err
			}
			opts.Logger = logger
			reg := prometheus.NewRegistry()
			if metricsPath != "" {
				opts.Metrics = metrics.NewDecoding(reg)
			}

			var dec transducer
			if cfg.Decode.Chunked {
				dec, err = model.ChunkDecoder(opts)
			} else {
				dec, err = model.Decoder(opts)
			}
			if err != nil {
				return err
			}

			sep := joiner(cfg)
			decodeOne := func(word string) error {
				below, err := dec.Decode(split(word))
				if err != nil {
					return fmt.Errorf("%q: %w", word, err)
				}
				printf(cmd, "%s\t%s\n", word, strings.Join(below, sep))
				return nil
			}
			if len(args) > 0 {
				for _, w := range args {
					if err := decodeOne(w); err != nil {
						return err
					}
				}
			} else if err := eachLine(cmd.InOrStdin(), decodeOne); err != nil {
				return err
			}

			if metricsPath != "" {
				return prometheus.WriteToTextfile(metricsPath, reg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelDir, "model", "m", "model", "Model directory")
	cmd.Flags().StringVar(&unknown, "unknown", "", "Override decode.unknown_policy (fail, certain, ancestor)")
	cmd.Flags().StringVar(&ancestorsPath, "ancestors", "", "Ancestor table for the ancestor policy")
	cmd.Flags().BoolVar(&chunked, "chunked", false, "Use chunk Viterbi instead of state Viterbi")
	cmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus text metrics to this file")

	return cmd
}

// eachLine calls fn for every non-blank line of r.
func eachLine(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := trimLine(sc.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	return sc.Err()
}

// loadAncestors reads "symbol<TAB>a b c" lines. Without a file every
// known symbol is an ancestor of every unknown one.
func loadAncestors(path string, known []string) (func(string) []string, error) {
	if path == "" {
		return func(string) []string { return known }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ancestors: %w", err)
	}
	defer f.Close()

	table := make(map[string][]string)
	err = eachLine(f, func(line string) error {
		sym, rest, ok := strings.Cut(line, "\t")
		if !ok {
			return fmt.Errorf("ancestors: line %q has no tab", line)
		}
		table[sym] = strings.Fields(rest)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return func(s string) []string { return table[s] }, nil
}
