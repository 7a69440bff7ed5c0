package baumwelch

import (
	"fmt"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/logspace"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/matrix"
)

// view caches row slices of a core for the duration of one epoch.
type view struct {
	states  int
	symbols int
	initial []float64
	trans   [][]float64
	emit    [][]float64
}

func newView(c *markov.Core) *view {
	v := &view{
		states:  c.States(),
		symbols: c.Symbols(),
		initial: c.Initial(),
		trans:   make([][]float64, c.States()),
		emit:    make([][]float64, c.States()),
	}
	for s := 0; s < v.states; s++ {
		v.trans[s] = c.TransitionRow(s)
		v.emit[s] = c.EmissionRow(s)
	}

	return v
}

// counts accumulates expected counts in log space.
type counts struct {
	initial []float64
	trans   *matrix.Dense
	emit    *matrix.Dense
}

func newCounts(states, symbols int) (*counts, error) {
	trans, err := matrix.Filled(states, states, logspace.LogZero)
	if err != nil {
		return nil, err
	}
	emit, err := matrix.Filled(states, symbols, logspace.LogZero)
	if err != nil {
		return nil, err
	}
	c := &counts{initial: make([]float64, states), trans: trans, emit: emit}
	c.reset()

	return c, nil
}

func (c *counts) reset() {
	for i := range c.initial {
		c.initial[i] = logspace.LogZero
	}
	c.trans.Fill(logspace.LogZero)
	c.emit.Fill(logspace.LogZero)
}

func add(dst *float64, x float64) { *dst = logspace.Sum(*dst, x) }

// expectation runs forward-backward over g and, when acc is non-nil, adds
// the graph's expected counts to acc. It returns the log-likelihood of g;
// LogZero means the graph is impossible under the current parameters and
// nothing was accumulated.
func expectation(v *view, g *alignment.Graph, s *Scratch, acc *counts) (float64, error) {
	// 1. Validate
	if g.Above() < 2 {
		return logspace.LogZero, fmt.Errorf("above length %d < 2: %w", g.Above(), ErrInvalidState)
	}
	if mc := g.MaxCode(); mc >= v.symbols {
		return logspace.LogZero, fmt.Errorf("code %d outside core of %d symbols: %w", mc, v.symbols, ErrInvalidState)
	}
	S := v.states
	s.reset(g.Size())
	term := g.Terminal()

	// 2. Forward, row-major
	for idx := 1; idx <= term; idx++ {
		if !g.AliveAt(idx) {
			continue
		}
		alpha := s.row(s.alpha, idx)
		for _, e := range g.IncomingAt(idx) {
			src := g.Index(e.FromA, e.FromB)
			for d := 0; d < S; d++ {
				prev := v.initial[d]
				if src != 0 {
					prev = s.row(s.ahead, src)[d]
				}
				add(&alpha[d], logspace.Product(v.emit[d][e.Code], prev))
			}
		}
		if idx == term {
			break
		}
		ahead := s.row(s.ahead, idx)
		for d := 0; d < S; d++ {
			for st := 0; st < S; st++ {
				s.terms[st] = logspace.Product(alpha[st], v.trans[st][d])
			}
			ahead[d] = logspace.SumSlice(s.terms)
		}
	}

	// 3. Likelihood
	R := logspace.SumSlice(s.row(s.alpha, term))
	if logspace.IsZero(R) {
		return logspace.LogZero, nil
	}

	// 4. Backward, reverse row-major
	betaTerm := s.row(s.beta, term)
	for d := range betaTerm {
		betaTerm[d] = logspace.LogOne
	}
	for idx := term; idx >= 1; idx-- {
		if !g.AliveAt(idx) {
			continue
		}
		beta := s.row(s.beta, idx)
		for _, e := range g.IncomingAt(idx) {
			src := g.Index(e.FromA, e.FromB)
			if src == 0 {
				continue
			}
			bsrc := s.row(s.beta, src)
			for st := 0; st < S; st++ {
				for d := 0; d < S; d++ {
					s.terms[d] = logspace.Product(v.trans[st][d], logspace.Product(v.emit[d][e.Code], beta[d]))
				}
				add(&bsrc[st], logspace.SumSlice(s.terms))
			}
		}
	}

	// 5. Posterior occupancy
	for idx := 1; idx <= term; idx++ {
		if !g.AliveAt(idx) {
			continue
		}
		alpha, beta, gamma := s.row(s.alpha, idx), s.row(s.beta, idx), s.row(s.gamma, idx)
		for st := 0; st < S; st++ {
			gamma[st] = logspace.Div(logspace.Product(alpha[st], beta[st]), R)
		}
	}
	if acc == nil {
		return R, nil
	}

	// 6. Expected counts per edge
	for idx := 1; idx <= term; idx++ {
		if !g.AliveAt(idx) {
			continue
		}
		beta := s.row(s.beta, idx)
		for _, e := range g.IncomingAt(idx) {
			src := g.Index(e.FromA, e.FromB)
			emitCounts := acc.emit
			for d := 0; d < S; d++ {
				base := logspace.Div(logspace.Product(v.emit[d][e.Code], beta[d]), R)
				if logspace.IsZero(base) {
					continue
				}
				erow := emitCounts.MustRow(d)
				if src == 0 {
					x := logspace.Product(v.initial[d], base)
					add(&acc.initial[d], x)
					add(&erow[e.Code], x)
					continue
				}
				alphaSrc := s.row(s.alpha, src)
				for st := 0; st < S; st++ {
					x := logspace.Product(alphaSrc[st], logspace.Product(v.trans[st][d], base))
					add(&acc.trans.MustRow(st)[d], x)
				}
				add(&erow[e.Code], logspace.Product(s.row(s.ahead, src)[d], base))
			}
		}
	}

	return R, nil
}

// Posterior is the result of the expectation step for one graph.
type Posterior struct {
	graph  *alignment.Graph
	states int
	ll     float64
	gamma  []float64
}

// Posteriors runs forward-backward over one graph with fresh scratch space
// and returns the per-node state occupancy.
func Posteriors(core *markov.Core, g *alignment.Graph) (*Posterior, error) {
	s := NewScratch(core.States())
	ll, err := expectation(newView(core), g, s, nil)
	if err != nil {
		return nil, err
	}

	return &Posterior{graph: g, states: core.States(), ll: ll, gamma: s.gamma}, nil
}

// LogLikelihood returns log P(graph | core), or LogZero when no path has
// positive probability.
func (p *Posterior) LogLikelihood() float64 { return p.ll }

// Gamma returns log P(path visits (a,b) in state s | graph). Pruned or
// out-of-range nodes and the root report LogZero.
func (p *Posterior) Gamma(a, b, s int) float64 {
	if !p.graph.Alive(a, b) || logspace.IsZero(p.ll) || s < 0 || s >= p.states {
		return logspace.LogZero
	}

	return p.gamma[p.graph.Index(a, b)*p.states+s]
}
