package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/hmmalign/pipeline"
)

func newTrainCmd(g *globals) *cobra.Command {
	var corpusPath, out, metricsPath string
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on a corpus",
		Long: `Build the alphabet, align the corpus and run Baum-Welch, then write
the model directory (alphabet.txt, core.txt).

With cache.backend set, every completed stage is stored and a rerun
resumes after the last one.

Examples:
  hmmalign train --corpus words.tsv --out model/
  hmmalign train -c run.yaml --corpus words.tsv --out model/ --metrics train.prom`,
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
			store, err := pipeline.OpenStore(cmd.Context(), cfg.Cache)
			if err != nil {
				return err
			}
			defer closeStore(store)

			reg := prometheus.NewRegistry()
			model, sum, err := pipeline.Train(cmd.Context(), cfg, c, pipeline.StringSymbols(), pipeline.Deps{
				Store:    store,
				Logger:   logger,
				Registry: reg,
				Progress: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if err := pipeline.SaveModel(out, model, pipeline.StringSymbols()); err != nil {
				return err
			}
			if metricsPath != "" {
				if err := prometheus.WriteToTextfile(metricsPath, reg); err != nil {
					return err
				}
			}

			if !sum.GraphsCached {
				printf(cmd, "pairs %d, graphs %d, not alignable %d, rejected %d\n",
					sum.Pairs.Pairs, sum.Graphs, sum.Pairs.NotAlignable, sum.Pairs.Rejected)
			}
			printf(cmd, "alphabet %d, states %d", model.Alphabet.Len(), model.Core.States())
			if !sum.CoreCached {
				printf(cmd, ", epochs %d, mean log-likelihood %.6f", sum.Training.Epoch, sum.Training.Mean())
			}
			printf(cmd, "\n")
			return nil
		},
	}
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "TSV corpus")
	cmd.Flags().StringVarP(&out, "out", "o", "model", "Model directory to write")
	cmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus text metrics to this file")
	requireFlags(cmd, "corpus")

	return cmd
}
