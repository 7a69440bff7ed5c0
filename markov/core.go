package markov

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/katalvlaran/hmmalign/logspace"
	"github.com/katalvlaran/hmmalign/matrix"
)

// DefaultTolerance is the probability-space slack allowed by Validate.
const DefaultTolerance = 1e-4

// Core is the parameter set of an HMM with log-probability tables.
type Core struct {
	states  int
	symbols int
	initial []float64
	trans   *matrix.Dense
	emit    *matrix.Dense
}

func alloc(states, symbols int) (*Core, error) {
	if states < 1 || symbols < 1 {
		return nil, fmt.Errorf("states=%d symbols=%d: %w", states, symbols, ErrInvalidModel)
	}
	trans, err := matrix.NewDense(states, states)
	if err != nil {
		return nil, err
	}
	emit, err := matrix.NewDense(states, symbols)
	if err != nil {
		return nil, err
	}

	return &Core{
		states:  states,
		symbols: symbols,
		initial: make([]float64, states),
		trans:   trans,
		emit:    emit,
	}, nil
}

// NewUniform returns a core where every distribution is uniform.
func NewUniform(states, symbols int) (*Core, error) {
	c, err := alloc(states, symbols)
	if err != nil {
		return nil, err
	}
	ls, le := -math.Log(float64(states)), -math.Log(float64(symbols))
	for i := range c.initial {
		c.initial[i] = ls
	}
	c.trans.Fill(ls)
	c.emit.Fill(le)

	return c, nil
}

// NewRandom returns a core with every distribution drawn uniformly at
// random from the interior of the simplex (weights in [0.5, 1.5) then
// normalized). Passing the same seeded rng reproduces the same core.
func NewRandom(states, symbols int, rng *rand.Rand) (*Core, error) {
	c, err := alloc(states, symbols)
	if err != nil {
		return nil, err
	}
	randomRow(c.initial, rng)
	for i := 0; i < states; i++ {
		randomRow(c.trans.MustRow(i), rng)
		randomRow(c.emit.MustRow(i), rng)
	}

	return c, nil
}

func randomRow(row []float64, rng *rand.Rand) {
	for j := range row {
		row[j] = math.Log(0.5 + rng.Float64())
	}
	logspace.Normalize(row)
}

// States returns S.
func (c *Core) States() int { return c.states }

// Symbols returns E, the number of alphabet codes.
func (c *Core) Symbols() int { return c.symbols }

// Initial returns the initial log-distribution. Read-only.
func (c *Core) Initial() []float64 { return c.initial }

// TransitionRow returns the log-distribution of successors of state i.
// Read-only; panics if i is out of range.
func (c *Core) TransitionRow(i int) []float64 { return c.trans.MustRow(i) }

// EmissionRow returns the log-distribution of codes emitted by state i.
// Read-only; panics if i is out of range.
func (c *Core) EmissionRow(i int) []float64 { return c.emit.MustRow(i) }

// Transition returns log P(next=j | cur=i).
func (c *Core) Transition(i, j int) float64 { return c.trans.MustRow(i)[j] }

// Emission returns log P(code | state=i).
func (c *Core) Emission(i, code int) float64 { return c.emit.MustRow(i)[code] }

// Replace swaps in new tables after checking their shapes. The slices and
// matrices are adopted, not copied.
func (c *Core) Replace(initial []float64, trans, emit *matrix.Dense) error {
	if len(initial) != c.states {
		return fmt.Errorf("initial has %d entries, want %d: %w", len(initial), c.states, ErrInvalidModel)
	}
	if r, k := trans.Shape(); r != c.states || k != c.states {
		return fmt.Errorf("transition is %dx%d, want %dx%d: %w", r, k, c.states, c.states, ErrInvalidModel)
	}
	if r, k := emit.Shape(); r != c.states || k != c.symbols {
		return fmt.Errorf("emission is %dx%d, want %dx%d: %w", r, k, c.states, c.symbols, ErrInvalidModel)
	}
	c.initial, c.trans, c.emit = initial, trans, emit

	return nil
}

// Validate checks that the initial distribution and every transition and
// emission row sum to one within tol in probability space, and that no
// entry is NaN.
func (c *Core) Validate(tol float64) error {
	if err := checkRow("initial", c.initial, tol); err != nil {
		return err
	}
	for i := 0; i < c.states; i++ {
		if err := checkRow(fmt.Sprintf("transition[%d]", i), c.trans.MustRow(i), tol); err != nil {
			return err
		}
		if err := checkRow(fmt.Sprintf("emission[%d]", i), c.emit.MustRow(i), tol); err != nil {
			return err
		}
	}

	return nil
}

func checkRow(name string, row []float64, tol float64) error {
	if slices.ContainsFunc(row, math.IsNaN) {
		return fmt.Errorf("%s contains NaN: %w", name, ErrInvalidModel)
	}
	if s := logspace.Mass(row); math.Abs(s-1) > tol {
		return fmt.Errorf("%s sums to %.6f: %w", name, s, ErrInvalidModel)
	}

	return nil
}

// Clone returns a deep copy.
func (c *Core) Clone() *Core {
	return &Core{
		states:  c.states,
		symbols: c.symbols,
		initial: slices.Clone(c.initial),
		trans:   c.trans.Clone(),
		emit:    c.emit.Clone(),
	}
}

// Equal reports whether both cores have the same shape and every parameter
// agrees within tol in log space.
func (c *Core) Equal(o *Core, tol float64) bool {
	if c.states != o.states || c.symbols != o.symbols {
		return false
	}
	for i, v := range c.initial {
		if math.Abs(v-o.initial[i]) > tol {
			return false
		}
	}

	return matrix.AllClose(c.trans, o.trans, tol) && matrix.AllClose(c.emit, o.emit, tol)
}

// MaxDelta returns the largest absolute log-space difference between the
// parameters of c and o, which must have the same shape.
func (c *Core) MaxDelta(o *Core) float64 {
	var d float64
	for i, v := range c.initial {
		d = max(d, math.Abs(v-o.initial[i]))
	}
	for i := 0; i < c.states; i++ {
		for j, v := range c.trans.MustRow(i) {
			d = max(d, math.Abs(v-o.trans.MustRow(i)[j]))
		}
		for j, v := range c.emit.MustRow(i) {
			d = max(d, math.Abs(v-o.emit.MustRow(i)[j]))
		}
	}

	return d
}
