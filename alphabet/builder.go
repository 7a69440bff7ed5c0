package alphabet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/corpus"
)

// Strategy selects how Build chooses chunks from the candidate pool.
type Strategy int

const (
	// StrategyGreedy adds candidates by frequency until coverage suffices.
	StrategyGreedy Strategy = iota
	// StrategyComplete keeps every candidate.
	StrategyComplete
	// StrategyPrebuilt keeps Options.Prebuilt unchanged.
	StrategyPrebuilt
)

var strategyNames = map[Strategy]string{
	StrategyGreedy:   "greedy",
	StrategyComplete: "complete",
	StrategyPrebuilt: "prebuilt",
}

// String implements fmt.Stringer.
func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}

	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy is the inverse of String.
func ParseStrategy(s string) (Strategy, error) {
	for k, v := range strategyNames {
		if v == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("alphabet: unknown strategy %q", s)
}

// Options configures Build.
type Options[A, B comparable] struct {
	Bounds    alignment.Bounds
	Strategy  Strategy
	Threshold float64 // tolerated unalignable fraction for StrategyGreedy
	Shrink    bool    // run Shrink after Grow
	Prebuilt  *Alphabet[A, B]
	Workers   int // ≤ 0 means GOMAXPROCS
	Logger    *slog.Logger
}

// DefaultOptions returns greedy selection with a 1% threshold, shrinking
// enabled, and DefaultBounds.
func DefaultOptions[A, B comparable]() Options[A, B] {
	return Options[A, B]{
		Bounds:    alignment.DefaultBounds(),
		Strategy:  StrategyGreedy,
		Threshold: 0.01,
		Shrink:    true,
	}
}

// Report summarises one Build.
type Report struct {
	Pairs       int
	Alignable   int // alignable with every candidate
	Candidates  int
	Selected    int
	Unalignable float64 // fraction of Alignable lost by the final alphabet
	History     []GrowthStep
}

// Build derives an alphabet from the corpus according to opts.
//
// Errors:
//   - ErrNoPrebuilt, ErrBadThreshold, alignment.ErrBadBounds.
//   - any error from reading the corpus.
func Build[A, B comparable](ctx context.Context, c corpus.Corpus[A, B], opts Options[A, B]) (*Alphabet[A, B], Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.Strategy == StrategyPrebuilt && opts.Prebuilt == nil {
		return nil, Report{}, ErrNoPrebuilt
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, Report{}, ErrBadThreshold
	}

	pairs, err := corpus.ReadAll(c)
	if err != nil {
		return nil, Report{}, err
	}
	if opts.Strategy == StrategyPrebuilt {
		return opts.Prebuilt, measurePrebuilt(opts.Prebuilt, pairs, opts.Bounds), nil
	}

	cands, err := ComputeCandidates(ctx, pairs, opts.Bounds, opts.Workers, logger)
	if err != nil {
		return nil, Report{}, err
	}
	rep := Report{Pairs: len(pairs), Alignable: cands.AlignableCount(), Candidates: cands.Len()}

	var selection []int
	switch opts.Strategy {
	case StrategyComplete:
		selection = cands.ByFrequency()
	case StrategyGreedy:
		selection, rep.History, err = Grow(cands, opts.Threshold, logger)
		if err != nil {
			return nil, Report{}, err
		}
		if opts.Shrink {
			if selection, err = Shrink(cands, selection, opts.Threshold, logger); err != nil {
				return nil, Report{}, err
			}
		}
	default:
		return nil, Report{}, fmt.Errorf("alphabet: unknown strategy %d", int(opts.Strategy))
	}

	selected := make([]bool, cands.Len())
	for _, code := range selection {
		selected[code] = true
	}
	rep.Selected = len(selection)
	rep.Unalignable = cands.Unalignable(selected)
	logger.Info("alphabet built",
		"strategy", opts.Strategy.String(),
		"pairs", rep.Pairs,
		"candidates", rep.Candidates,
		"selected", rep.Selected,
		"unalignable", rep.Unalignable)

	return cands.Subset(selection), rep, nil
}

func measurePrebuilt[A, B comparable](al *Alphabet[A, B], pairs []corpus.Pair[A, B], bounds alignment.Bounds) Report {
	rep := Report{Pairs: len(pairs), Candidates: al.Len(), Selected: al.Len()}
	miss := 0
	for _, p := range pairs {
		if _, err := alignment.Build(p.Above, p.Below, bounds, al.Encoder()); err != nil {
			if errors.Is(err, alignment.ErrNotAlignable) {
				miss++
			}
			continue
		}
		rep.Alignable++
	}
	if len(pairs) > 0 {
		rep.Unalignable = float64(miss) / float64(len(pairs))
	}

	return rep
}
