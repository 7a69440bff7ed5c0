package baumwelch

import (
	"math"
	"time"

	"github.com/katalvlaran/hmmalign/markov"
)

// EpochStats summarises one epoch. Epoch 0 is the call made before any
// training.
type EpochStats struct {
	Epoch         int
	Graphs        int     // graphs that contributed counts
	Skipped       int     // graphs with zero likelihood
	LogLikelihood float64 // Σ log P(graph) over contributing graphs, before the update
	Duration      time.Duration
}

// Mean returns the average per-graph log-likelihood, or 0 without graphs.
func (s EpochStats) Mean() float64 {
	if s.Graphs == 0 {
		return 0
	}

	return s.LogLikelihood / float64(s.Graphs)
}

// Inspector is called with the core before the first epoch and after every
// epoch. Returning true stops training. The core must not be retained
// across calls without Clone.
type Inspector func(core *markov.Core, stats EpochStats) (stop bool)

// StopAfter stops once n epochs have run.
func StopAfter(n int) Inspector {
	return func(_ *markov.Core, s EpochStats) bool { return s.Epoch >= n }
}

// StopOnConvergence stops when the mean log-likelihood changes by less
// than delta between consecutive epochs, or after maxEpochs epochs when
// maxEpochs > 0.
func StopOnConvergence(delta float64, maxEpochs int) Inspector {
	prev := math.NaN()
	return func(_ *markov.Core, s EpochStats) bool {
		if maxEpochs > 0 && s.Epoch >= maxEpochs {
			return true
		}
		if s.Epoch == 0 {
			return false
		}
		cur := s.Mean()
		done := !math.IsNaN(prev) && math.Abs(cur-prev) < delta
		prev = cur

		return done
	}
}

// Any stops as soon as one of the inspectors asks to. Every inspector is
// called on every epoch so stateful ones stay in step.
func Any(inspectors ...Inspector) Inspector {
	return func(c *markov.Core, s EpochStats) bool {
		stop := false
		for _, in := range inspectors {
			if in(c, s) {
				stop = true
			}
		}

		return stop
	}
}
