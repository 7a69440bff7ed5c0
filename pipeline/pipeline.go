package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/baumwelch"
	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/corpus"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/metrics"
	"github.com/katalvlaran/hmmalign/stage"
)

// Stage names used as store keys.
const (
	StageAlphabet = "alphabet"
	StageGraphs   = "graphs"
	StageCore     = "core"
)

// Deps are the collaborators injected into a run. Every field is optional.
type Deps struct {
	Store    stage.Store
	Logger   *slog.Logger
	Registry prometheus.Registerer // metrics are off when nil
	Progress io.Writer             // used when training.progress is set
}

// Summary reports what a run did. Alphabet is nil when the alphabet
// stage was loaded from the store.
type Summary struct {
	Alphabet *alphabet.Report

	AlphabetCached bool
	GraphsCached   bool
	CoreCached     bool

	Pairs    GraphReport // zero when the graphs stage was cached
	Graphs   int
	Training baumwelch.EpochStats // zero when the core stage was cached
}

// Train runs the three stages over c.
//
// Errors:
//   - config.ErrInvalidConfig for a configuration that fails Validate.
//   - any stage, corpus or training error, wrapped with the stage name.
//   - ctx.Err() when ctx is cancelled during training.
func Train[A, B comparable](ctx context.Context, cfg *config.Config, c corpus.Corpus[A, B], sym Symbols[A, B], deps Deps) (*Model[A, B], Summary, error) {
	var sum Summary

	// 1. Validate
	if c == nil {
		return nil, sum, corpus.ErrNilCorpus
	}
	if err := cfg.Validate(); err != nil {
		return nil, sum, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var (
		alignMetrics *metrics.Alignment
		trainMetrics *metrics.Training
	)
	if deps.Registry != nil {
		alignMetrics = metrics.NewAlignment(deps.Registry)
		trainMetrics = metrics.NewTraining(deps.Registry)
	}

	// 2. Alphabet
	al, cached, err := stage.Stage[*alphabet.Alphabet[A, B]]{
		Name: StageAlphabet, Codec: AlphabetCodec(sym), Logger: logger,
	}.Run(ctx, deps.Store, func(ctx context.Context) (*alphabet.Alphabet[A, B], error) {
		var prebuilt *alphabet.Alphabet[A, B]
		if cfg.Alphabet.Prebuilt != "" {
			p, err := ReadAlphabet(cfg.Alphabet.Prebuilt, sym)
			if err != nil {
				return nil, err
			}
			prebuilt = p
		}
		opts, err := config.AlphabetOptions(cfg, prebuilt)
		if err != nil {
			return nil, err
		}
		opts.Logger = logger
		built, rep, err := alphabet.Build(ctx, c, opts)
		if err != nil {
			return nil, err
		}
		sum.Alphabet = &rep
		return built, nil
	})
	if err != nil {
		return nil, sum, err
	}
	sum.AlphabetCached = cached
	alignMetrics.SetAlphabet(al.Len())

	// 3. Graphs
	graphs, cached, err := stage.Stage[[]*alignment.Graph]{
		Name: StageGraphs, Codec: GraphsCodec(), Logger: logger,
	}.Run(ctx, deps.Store, func(ctx context.Context) ([]*alignment.Graph, error) {
		graphs, rep, err := BuildGraphs(ctx, c, al, cfg.AlignmentBounds(), alignMetrics, logger)
		sum.Pairs = rep
		return graphs, err
	})
	if err != nil {
		return nil, sum, err
	}
	sum.GraphsCached = cached
	sum.Graphs = len(graphs)

	// 4. Core
	core, cached, err := stage.Stage[*markov.Core]{
		Name: StageCore, Codec: CoreCodec(), Logger: logger,
	}.Run(ctx, deps.Store, func(ctx context.Context) (*markov.Core, error) {
		seed := cfg.Training.Seed
		core, err := markov.NewRandom(cfg.Training.States, al.Len(), rand.New(rand.NewPCG(seed, seed)))
		if err != nil {
			return nil, err
		}
		opts := cfg.TrainOptions(deps.Progress)
		opts.Logger = logger
		opts.Metrics = trainMetrics
		trainer, err := baumwelch.New(opts)
		if err != nil {
			return nil, err
		}
		stats, err := trainer.Train(core, baumwelch.SliceSource(graphs),
			baumwelch.Any(cfg.Inspector(), stopOnDone(ctx)))
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sum.Training = stats
		return core, nil
	})
	if err != nil {
		return nil, sum, err
	}
	sum.CoreCached = cached

	return &Model[A, B]{Alphabet: al, Core: core}, sum, nil
}

// GraphReport counts pair outcomes of BuildGraphs.
type GraphReport struct {
	Pairs        int
	NotAlignable int
	Rejected     int // aligned but shorter than two above-symbols
}

// BuildGraphs aligns every pair of c with the alphabet's encoder. Pairs
// that cannot be aligned, or whose above side is shorter than two
// symbols, are counted and dropped. m may be nil.
func BuildGraphs[A, B comparable](
	ctx context.Context,
	c corpus.Corpus[A, B],
	al *alphabet.Alphabet[A, B],
	bounds alignment.Bounds,
	m *metrics.Alignment,
	logger *slog.Logger,
) ([]*alignment.Graph, GraphReport, error) {
	var rep GraphReport
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cur, err := c.Open()
	if err != nil {
		return nil, rep, err
	}
	defer cur.Close()

	enc := al.Encoder()
	var graphs []*alignment.Graph
	for {
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		p, err := cur.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, rep, err
		}
		rep.Pairs++

		g, err := alignment.Build(p.Above, p.Below, bounds, enc)
		switch {
		case errors.Is(err, alignment.ErrNotAlignable):
			rep.NotAlignable++
			m.ObservePair(metrics.ResultNotAlignable, 0)
			logger.Debug("pair not alignable", "pair", rep.Pairs-1)
			continue
		case err != nil:
			return nil, rep, err
		case g.Above() < 2:
			rep.Rejected++
			m.ObservePair(metrics.ResultRejected, 0)
			continue
		}
		m.ObservePair(metrics.ResultAligned, g.EdgeCount())
		graphs = append(graphs, g)
	}

	logger.Info("graphs built",
		"pairs", rep.Pairs,
		"graphs", len(graphs),
		"not_alignable", rep.NotAlignable,
		"rejected", rep.Rejected)

	return graphs, rep, nil
}

// stopOnDone ends training once ctx is cancelled.
func stopOnDone(ctx context.Context) baumwelch.Inspector {
	return func(*markov.Core, baumwelch.EpochStats) bool { return ctx.Err() != nil }
}
