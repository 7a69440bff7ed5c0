package viterbi

import (
	"fmt"
	"math"

	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/logspace"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/matrix"
)

// emission is the cached per-state view of one above-symbol.
type emission struct {
	mass []float64 // [state] log-sum of emissions over the symbol's chunks
	best []int     // [state] most probable chunk code, -1 for none
}

// Path is a decoded state sequence.
type Path[B comparable] struct {
	States  []int   // one state per above position
	Codes   []int   // chunk emitted at each position, -1 when nothing was emitted
	Below   []B     // concatenated below-sequence
	LogProb float64 // score of the best state sequence
}

// Decoder is a state-level Viterbi decoder.
type Decoder[A, B comparable] struct {
	al      *alphabet.Alphabet[A, B]
	core    *markov.Core
	opts    Options[A]
	cache   map[A]emission
	certain emission
}

// New precomputes the emission cache for every above-symbol of al.
//
// Errors: ErrMismatch, ErrNoAncestors.
func New[A, B comparable](al *alphabet.Alphabet[A, B], core *markov.Core, opts Options[A]) (*Decoder[A, B], error) {
	// 1. Validate
	if al.Len() != core.Symbols() {
		return nil, fmt.Errorf("alphabet=%d core=%d: %w", al.Len(), core.Symbols(), ErrMismatch)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	// 2. Cache mass and best chunk per (symbol, state)
	S := core.States()
	d := &Decoder[A, B]{
		al:    al,
		core:  core,
		opts:  opts,
		cache: make(map[A]emission, len(al.Symbols())),
		certain: emission{
			mass: make([]float64, S),
			best: make([]int, S),
		},
	}
	for s := 0; s < S; s++ {
		d.certain.mass[s] = logspace.LogOne
		d.certain.best[s] = -1
	}
	terms := make([]float64, 0, al.MaxBelow()+1)
	for _, x := range al.Symbols() {
		codes := al.CodesFor(x)
		e := emission{mass: make([]float64, S), best: make([]int, S)}
		for s := 0; s < S; s++ {
			row := core.EmissionRow(s)
			terms = terms[:0]
			best, bestScore := -1, math.Inf(-1)
			for _, c := range codes {
				terms = append(terms, row[c])
				if row[c] > bestScore {
					best, bestScore = c, row[c]
				}
			}
			e.mass[s] = logspace.SumSlice(terms)
			e.best[s] = best
		}
		d.cache[x] = e
	}

	return d, nil
}

// Decode returns the below-sequence of the most probable state path.
func (d *Decoder[A, B]) Decode(above []A) ([]B, error) {
	p, err := d.DecodePath(above)
	if err != nil {
		return nil, err
	}

	return p.Below, nil
}

// DecodePath runs Viterbi over above and returns the full path.
//
// Errors: ErrUnknownSymbol (policy dependent), ErrNoPath.
func (d *Decoder[A, B]) DecodePath(above []A) (Path[B], error) {
	p, err := d.decode(above)
	d.opts.Metrics.ObserveSequence(err)

	return p, err
}

func (d *Decoder[A, B]) decode(above []A) (Path[B], error) {
	n, S := len(above), d.core.States()
	if n == 0 {
		return Path[B]{}, nil
	}

	// 1. Resolve emissions for every position
	ems := make([]emission, n)
	for t, x := range above {
		e, err := d.emissionFor(x, t)
		if err != nil {
			return Path[B]{}, err
		}
		ems[t] = e
	}

	// 2. Fill the DP table
	score, err := matrix.NewDense(n, S)
	if err != nil {
		return Path[B]{}, err
	}
	back := make([]int, n*S)
	row0 := score.MustRow(0)
	init := d.core.Initial()
	for s := 0; s < S; s++ {
		row0[s] = logspace.Product(init[s], ems[0].mass[s])
	}
	for t := 1; t < n; t++ {
		prev, cur := score.MustRow(t-1), score.MustRow(t)
		for s := 0; s < S; s++ {
			arg, best := 0, math.Inf(-1)
			for sp := 0; sp < S; sp++ {
				v := logspace.Product(prev[sp], d.core.Transition(sp, s))
				if v > best {
					arg, best = sp, v
				}
			}
			cur[s] = logspace.Product(best, ems[t].mass[s])
			back[t*S+s] = arg
		}
	}

	// 3. Pick the best final state
	last := score.MustRow(n - 1)
	end := 0
	for s := 1; s < S; s++ {
		if last[s] > last[end] {
			end = s
		}
	}
	if logspace.IsZero(last[end]) {
		return Path[B]{}, ErrNoPath
	}

	// 4. Backtrack and emit
	p := Path[B]{States: make([]int, n), Codes: make([]int, n), LogProb: last[end]}
	s := end
	for t := n - 1; t >= 0; t-- {
		p.States[t] = s
		p.Codes[t] = ems[t].best[s]
		s = back[t*S+s]
	}
	for _, c := range p.Codes {
		if c < 0 {
			continue
		}
		ch, _ := d.al.Decode(c)
		p.Below = append(p.Below, ch.Below...)
	}

	return p, nil
}

// emissionFor returns the cached emission of x or applies the unknown
// policy.
func (d *Decoder[A, B]) emissionFor(x A, pos int) (emission, error) {
	if e, ok := d.cache[x]; ok {
		return e, nil
	}
	d.opts.Metrics.ObserveUnknown(d.opts.Unknown.String())

	switch d.opts.Unknown {
	case UnknownCertain:
		d.opts.logger().Warn("unknown above symbol treated as certain", "symbol", fmt.Sprint(x), "position", pos)
		return d.certain, nil
	case UnknownAncestor:
		return d.borrow(x, pos)
	default:
		return emission{}, fmt.Errorf("symbol %v at position %d: %w", x, pos, ErrUnknownSymbol)
	}
}

// borrow averages the emissions of the known ancestors of x. The best chunk
// per state is the most probable best chunk among the ancestors.
func (d *Decoder[A, B]) borrow(x A, pos int) (emission, error) {
	var known []emission
	var names []string
	for _, a := range d.opts.Ancestors(x) {
		if e, ok := d.cache[a]; ok {
			known = append(known, e)
			names = append(names, fmt.Sprint(a))
		}
	}
	if len(known) == 0 {
		return emission{}, fmt.Errorf("symbol %v at position %d has no known ancestor: %w", x, pos, ErrUnknownSymbol)
	}

	S := d.core.States()
	out := emission{mass: make([]float64, S), best: make([]int, S)}
	norm := math.Log(float64(len(known)))
	terms := make([]float64, len(known))
	for s := 0; s < S; s++ {
		row := d.core.EmissionRow(s)
		best := -1
		for i, e := range known {
			terms[i] = e.mass[s]
			if c := e.best[s]; c >= 0 && (best < 0 || row[c] > row[best]) {
				best = c
			}
		}
		out.mass[s] = logspace.Div(logspace.SumSlice(terms), norm)
		out.best[s] = best
	}
	d.opts.logger().Warn("unknown above symbol borrowed from ancestors",
		"symbol", fmt.Sprint(x), "position", pos, "ancestors", names)

	return out, nil
}
