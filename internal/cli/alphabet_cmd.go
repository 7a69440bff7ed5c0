package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/pipeline"
)

func newAlphabetCmd(g *globals) *cobra.Command {
	var corpusPath, out string
	cmd := &cobra.Command{
		Use:   "alphabet",
		Short: "Build the chunk alphabet of a corpus",
		Long: `Build the chunk alphabet of a TSV corpus (above<TAB>below per line)
with the strategy configured under alphabet.strategy.

Examples:
  hmmalign alphabet --corpus words.tsv --out alphabet.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			c, err := openCorpus(cfg, corpusPath, logger)
			if err != nil {
				return err
			}

			sym := pipeline.StringSymbols()
			var prebuilt *alphabet.Alphabet[string, string]
			if cfg.Alphabet.Prebuilt != "" {
				if prebuilt, err = pipeline.ReadAlphabet(cfg.Alphabet.Prebuilt, sym); err != nil {
					return err
				}
			}
			opts, err := config.AlphabetOptions(cfg, prebuilt)
			if err != nil {
				return err
			}
			opts.Logger = logger

			al, rep, err := alphabet.Build(cmd.Context(), c, opts)
			if err != nil {
				return err
			}
			if err := pipeline.WriteAlphabet(out, al, sym); err != nil {
				return err
			}
			printf(cmd, "pairs %d, alignable %d, candidates %d, selected %d, unalignable %.4f\n",
				rep.Pairs, rep.Alignable, rep.Candidates, rep.Selected, rep.Unalignable)
			return nil
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "TSV corpus")
	cmd.Flags().StringVarP(&out, "out", "o", "alphabet.txt", "Alphabet file to write")
	requireFlags(cmd, "corpus")

	return cmd
}

func newGraphsCmd(g *globals) *cobra.Command {
	var corpusPath, alphabetPath, out string
	cmd := &cobra.Command{
		Use:   "graphs",
		Short: "Write the alignment graphs of a corpus",
		Long: `Align every pair of a TSV corpus against an alphabet and write the
surviving graphs. Pairs that cannot be aligned are counted and skipped.

Examples:
  hmmalign graphs --corpus words.tsv --alphabet alphabet.txt --out graphs.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			c, err := openCorpus(cfg, corpusPath, logger)
			if err != nil {
				return err
			}
			al, err := pipeline.ReadAlphabet(alphabetPath, pipeline.StringSymbols())
			if err != nil {
				return err
			}

			graphs, rep, err := pipeline.BuildGraphs(cmd.Context(), c, al, cfg.AlignmentBounds(), nil, logger)
			if err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := alignment.WriteGraphs(f, graphs); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printf(cmd, "pairs %d, graphs %d, not alignable %d, rejected %d\n",
				rep.Pairs, len(graphs), rep.NotAlignable, rep.Rejected)
			return nil
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "TSV corpus")
	cmd.Flags().StringVar(&alphabetPath, "alphabet", "alphabet.txt", "Alphabet file")
	cmd.Flags().StringVarP(&out, "out", "o", "graphs.txt", "Graph file to write")
	requireFlags(cmd, "corpus")

	return cmd
}
