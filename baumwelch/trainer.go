package baumwelch

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/katalvlaran/hmmalign/logspace"
	"github.com/katalvlaran/hmmalign/markov"
)

// Trainer runs Baum-Welch epochs. It owns its scratch buffers and must not
// be shared between goroutines.
type Trainer struct {
	opts    Options
	logger  *slog.Logger
	scratch *Scratch
}

// New returns a trainer configured by opts.
func New(opts Options) (*Trainer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Trainer{opts: opts, logger: logger}, nil
}

// Train re-estimates core in place from src until inspect returns true and
// returns the statistics of the last epoch.
//
// Errors:
//   - ErrNilInspector, ErrInvalidState (bad graph, empty source, or an
//     epoch without a graph of positive likelihood).
//   - markov.ErrInvalidModel if core is invalid on entry or after an update.
func (t *Trainer) Train(core *markov.Core, src GraphSource, inspect Inspector) (EpochStats, error) {
	// 1. Validate
	if inspect == nil {
		return EpochStats{}, ErrNilInspector
	}
	if src == nil {
		return EpochStats{}, fmt.Errorf("nil source: %w", ErrInvalidState)
	}
	if err := core.Validate(t.opts.Tolerance); err != nil {
		return EpochStats{}, err
	}
	if t.scratch == nil || t.scratch.states != core.States() {
		t.scratch = NewScratch(core.States())
	}
	acc, err := newCounts(core.States(), core.Symbols())
	if err != nil {
		return EpochStats{}, err
	}

	// 2. Inspect the starting point
	stats := EpochStats{}
	if inspect(core, stats) {
		return stats, nil
	}
	cur, err := src.Open()
	if err != nil {
		return stats, err
	}
	defer func() {
		if cur != nil {
			cur.Close()
		}
	}()

	sinceOpen := 0 // graphs read from the current cursor
	for epoch := 1; ; epoch++ {
		// 3. Expectation over one batch
		start := time.Now()
		stats = EpochStats{Epoch: epoch}
		acc.reset()
		v := newView(core)
		bar := t.newBar(epoch)
		seen := 0
		for t.opts.GraphsPerEpoch == 0 || seen < t.opts.GraphsPerEpoch {
			g, err := cur.Next()
			if errors.Is(err, io.EOF) {
				if sinceOpen == 0 {
					return stats, fmt.Errorf("epoch %d: empty graph source: %w", epoch, ErrInvalidState)
				}
				cur.Close()
				next, err := src.Open()
				if err != nil {
					cur = nil
					return stats, fmt.Errorf("epoch %d: reopen source: %w", epoch, err)
				}
				cur = next
				sinceOpen = 0
				if t.opts.GraphsPerEpoch == 0 {
					break
				}
				continue
			}
			if err != nil {
				return stats, err
			}
			seen++
			sinceOpen++

			ll, err := expectation(v, g, t.scratch, acc)
			if err != nil {
				return stats, fmt.Errorf("epoch %d graph %d: %w", epoch, seen, err)
			}
			if logspace.IsZero(ll) {
				stats.Skipped++
				t.logger.Debug("graph has zero likelihood", "epoch", epoch, "graph", seen)
			} else {
				stats.Graphs++
				stats.LogLikelihood += ll
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
		if stats.Graphs == 0 {
			return stats, fmt.Errorf("epoch %d: all %d graphs have zero likelihood: %w", epoch, stats.Skipped, ErrInvalidState)
		}

		// 4. Maximization
		if err := t.update(core, acc); err != nil {
			return stats, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		stats.Duration = time.Since(start)
		t.opts.Metrics.ObserveEpoch(stats.Graphs, stats.Skipped, stats.Mean(), stats.Duration)
		t.logger.Info("epoch complete",
			"epoch", epoch,
			"graphs", stats.Graphs,
			"skipped", stats.Skipped,
			"mean_log_likelihood", stats.Mean(),
			"duration", stats.Duration)

		// 5. Inspect
		if inspect(core, stats) {
			return stats, nil
		}
	}
}

// update smooths and normalises the counts into fresh tables, swaps them
// into core and validates the result.
func (t *Trainer) update(core *markov.Core, acc *counts) error {
	smooth := logspace.Eln(t.opts.Smoothing)
	finish := func(row []float64) {
		for j := range row {
			row[j] = logspace.Sum(row[j], smooth)
		}
		logspace.Normalize(row)
	}

	initial := append([]float64(nil), acc.initial...)
	finish(initial)
	trans, emit := acc.trans.Clone(), acc.emit.Clone()
	for s := 0; s < core.States(); s++ {
		finish(trans.MustRow(s))
		finish(emit.MustRow(s))
	}
	if err := core.Replace(initial, trans, emit); err != nil {
		return err
	}

	return core.Validate(t.opts.Tolerance)
}

func (t *Trainer) newBar(epoch int) *progressbar.ProgressBar {
	if t.opts.Progress == nil {
		return nil
	}
	total := t.opts.GraphsPerEpoch
	if total == 0 {
		total = -1
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(t.opts.Progress),
		progressbar.OptionSetDescription(fmt.Sprintf("epoch %d", epoch)),
		progressbar.OptionShowCount(),
	)
}
