package viterbi

import (
	"fmt"
	"math"

	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/logspace"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/matrix"
)

// ChunkPath is a decoded chunk sequence.
type ChunkPath[B comparable] struct {
	Codes   []int // one chunk per known (or borrowed) position
	Below   []B
	LogProb float64
}

// ChunkDecoder runs Viterbi over chunks using a first-order chunk model
// derived from the core.
type ChunkDecoder[A, B comparable] struct {
	al    *alphabet.Alphabet[A, B]
	opts  Options[A]
	init  []float64     // [code]
	trans *matrix.Dense // [from code][to code]
}

// NewChunkDecoder folds core into a chunk-level model.
// Complexity: O(K·S² + K²·S) time, O(K²) memory for K codes.
func NewChunkDecoder[A, B comparable](al *alphabet.Alphabet[A, B], core *markov.Core, opts Options[A]) (*ChunkDecoder[A, B], error) {
	// 1. Validate
	K, S := core.Symbols(), core.States()
	if al.Len() != K {
		return nil, fmt.Errorf("alphabet=%d core=%d: %w", al.Len(), K, ErrMismatch)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// 2. init(c) = logsumexp_s initial[s] + emission[s][c]
	terms := make([]float64, S)
	init := make([]float64, K)
	for c := 0; c < K; c++ {
		for s := 0; s < S; s++ {
			terms[s] = logspace.Product(core.Initial()[s], core.Emission(s, c))
		}
		init[c] = logspace.SumSlice(terms)
	}

	// 3. pred(s | c') from the state posterior of emitting c'
	pred, err := matrix.NewDense(K, S)
	if err != nil {
		return nil, err
	}
	post := make([]float64, S)
	for cp := 0; cp < K; cp++ {
		for s := 0; s < S; s++ {
			post[s] = core.Emission(s, cp)
		}
		logspace.Normalize(post)
		row := pred.MustRow(cp)
		for s := 0; s < S; s++ {
			for sp := 0; sp < S; sp++ {
				terms[sp] = logspace.Product(post[sp], core.Transition(sp, s))
			}
			row[s] = logspace.SumSlice(terms)
		}
	}

	// 4. T(c', c) = logsumexp_s pred(s | c') + emission[s][c]
	trans, err := matrix.NewDense(K, K)
	if err != nil {
		return nil, err
	}
	for cp := 0; cp < K; cp++ {
		prow, trow := pred.MustRow(cp), trans.MustRow(cp)
		for c := 0; c < K; c++ {
			for s := 0; s < S; s++ {
				terms[s] = logspace.Product(prow[s], core.Emission(s, c))
			}
			trow[c] = logspace.SumSlice(terms)
		}
	}

	return &ChunkDecoder[A, B]{al: al, opts: opts, init: init, trans: trans}, nil
}

// Initial returns the log-probability of each code starting a sequence.
func (d *ChunkDecoder[A, B]) Initial() []float64 { return d.init }

// TransitionRow returns the log-distribution of codes following code c.
func (d *ChunkDecoder[A, B]) TransitionRow(c int) []float64 { return d.trans.MustRow(c) }

// Decode returns the below-sequence of the most probable chunk path.
func (d *ChunkDecoder[A, B]) Decode(above []A) ([]B, error) {
	p, err := d.DecodeChunks(above)
	if err != nil {
		return nil, err
	}

	return p.Below, nil
}

// DecodeChunks runs chunk Viterbi over above. Positions whose symbol is
// unknown under UnknownCertain are skipped.
//
// Errors: ErrUnknownSymbol (policy dependent), ErrNoPath.
func (d *ChunkDecoder[A, B]) DecodeChunks(above []A) (ChunkPath[B], error) {
	p, err := d.decodeChunks(above)
	d.opts.Metrics.ObserveSequence(err)

	return p, err
}

func (d *ChunkDecoder[A, B]) decodeChunks(above []A) (ChunkPath[B], error) {
	// 1. Candidate codes per position
	var steps [][]int
	for t, x := range above {
		codes, err := d.candidates(x, t)
		if err != nil {
			return ChunkPath[B]{}, err
		}
		if len(codes) > 0 {
			steps = append(steps, codes)
		}
	}
	if len(steps) == 0 {
		return ChunkPath[B]{}, nil
	}

	// 2. DP over candidate lists
	scores := make([][]float64, len(steps))
	backs := make([][]int, len(steps))
	scores[0] = make([]float64, len(steps[0]))
	for i, c := range steps[0] {
		scores[0][i] = d.init[c]
	}
	for t := 1; t < len(steps); t++ {
		scores[t] = make([]float64, len(steps[t]))
		backs[t] = make([]int, len(steps[t]))
		for i, c := range steps[t] {
			arg, best := 0, math.Inf(-1)
			for j, cp := range steps[t-1] {
				v := logspace.Product(scores[t-1][j], d.trans.MustRow(cp)[c])
				if v > best {
					arg, best = j, v
				}
			}
			scores[t][i] = best
			backs[t][i] = arg
		}
	}

	// 3. Backtrack
	last := len(steps) - 1
	end := 0
	for i := range scores[last] {
		if scores[last][i] > scores[last][end] {
			end = i
		}
	}
	if logspace.IsZero(scores[last][end]) {
		return ChunkPath[B]{}, ErrNoPath
	}
	p := ChunkPath[B]{Codes: make([]int, len(steps)), LogProb: scores[last][end]}
	i := end
	for t := last; t >= 0; t-- {
		p.Codes[t] = steps[t][i]
		i = backs[t][i]
	}
	for _, c := range p.Codes {
		ch, _ := d.al.Decode(c)
		p.Below = append(p.Below, ch.Below...)
	}

	return p, nil
}

func (d *ChunkDecoder[A, B]) candidates(x A, pos int) ([]int, error) {
	if codes := d.al.CodesFor(x); len(codes) > 0 {
		return codes, nil
	}
	d.opts.Metrics.ObserveUnknown(d.opts.Unknown.String())

	switch d.opts.Unknown {
	case UnknownCertain:
		d.opts.logger().Warn("unknown above symbol skipped", "symbol", fmt.Sprint(x), "position", pos)
		return nil, nil
	case UnknownAncestor:
		var codes []int
		for _, a := range d.opts.Ancestors(x) {
			codes = append(codes, d.al.CodesFor(a)...)
		}
		if len(codes) == 0 {
			return nil, fmt.Errorf("symbol %v at position %d has no known ancestor: %w", x, pos, ErrUnknownSymbol)
		}
		d.opts.logger().Warn("unknown above symbol borrowed from ancestors", "symbol", fmt.Sprint(x), "position", pos)
		return codes, nil
	default:
		return nil, fmt.Errorf("symbol %v at position %d: %w", x, pos, ErrUnknownSymbol)
	}
}
