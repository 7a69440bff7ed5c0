package baumwelch

import "github.com/katalvlaran/hmmalign/logspace"

// Scratch holds the per-graph dense tables, indexed [node*S + state] with
// node = a*(|below|+1) + b. Buffers grow to the largest graph seen and are
// erased, not reallocated, between graphs.
type Scratch struct {
	states int
	nodes  int
	alpha  []float64 // forward
	beta   []float64 // backward
	ahead  []float64 // logsumexp_s(alpha[v][s] + trans[s][d]), cached per source node
	gamma  []float64 // posterior occupancy
	terms  []float64 // per-node log-sum workspace, len S
}

// NewScratch returns scratch space for a core with the given state count.
func NewScratch(states int) *Scratch {
	return &Scratch{states: states, terms: make([]float64, states)}
}

// reset sizes the tables for nodes nodes and fills them with LogZero.
func (s *Scratch) reset(nodes int) {
	n := nodes * s.states
	s.nodes = nodes
	s.alpha = grow(s.alpha, n)
	s.beta = grow(s.beta, n)
	s.ahead = grow(s.ahead, n)
	s.gamma = grow(s.gamma, n)
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		buf = make([]float64, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = logspace.LogZero
	}

	return buf
}

func (s *Scratch) row(buf []float64, node int) []float64 {
	off := node * s.states
	return buf[off : off+s.states : off+s.states]
}
