package baumwelch

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/metrics"
)

// Options configures a Trainer.
type Options struct {
	// GraphsPerEpoch is the batch size of one epoch. The source is reopened
	// whenever it runs out, so a batch may wrap around. 0 means one full
	// pass over the source per epoch.
	GraphsPerEpoch int

	// Smoothing is added, in probability space, to every expected count
	// before normalisation. Must be > 0: without it a state that collects
	// no counts in an epoch is left with an all-zero row.
	Smoothing float64

	// Tolerance is the probability-space slack used to validate the core
	// after each update.
	Tolerance float64

	Logger   *slog.Logger
	Metrics  *metrics.Training
	Progress io.Writer // per-epoch progress bar when non-nil
}

// DefaultOptions returns one pass per epoch, Smoothing 1e-6 and
// markov.DefaultTolerance.
func DefaultOptions() Options {
	return Options{
		Smoothing: 1e-6,
		Tolerance: markov.DefaultTolerance,
	}
}

// Validate reports ErrBadOptions for a negative batch size or a
// non-positive smoothing or tolerance.
func (o Options) Validate() error {
	if o.GraphsPerEpoch < 0 || o.Smoothing <= 0 || o.Tolerance <= 0 {
		return fmt.Errorf("graphs_per_epoch=%d smoothing=%g tolerance=%g: %w",
			o.GraphsPerEpoch, o.Smoothing, o.Tolerance, ErrBadOptions)
	}

	return nil
}
