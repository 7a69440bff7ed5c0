package markov_test

import (
	"bytes"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/katalvlaran/hmmalign/logspace"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }

// TestNewUniform checks shapes and uniform rows.
func TestNewUniform(t *testing.T) {
	c, err := markov.NewUniform(3, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, c.States())
	assert.Equal(t, 4, c.Symbols())
	assert.InDelta(t, math.Log(1.0/3), c.Initial()[2], 1e-12)
	assert.InDelta(t, math.Log(1.0/3), c.Transition(1, 2), 1e-12)
	assert.InDelta(t, math.Log(0.25), c.Emission(2, 3), 1e-12)
	require.NoError(t, c.Validate(markov.DefaultTolerance))

	_, err = markov.NewUniform(0, 4)
	assert.ErrorIs(t, err, markov.ErrInvalidModel)
	_, err = markov.NewUniform(2, 0)
	assert.ErrorIs(t, err, markov.ErrInvalidModel)
}

// TestNewRandom_Seeded verifies reproducibility and validity.
func TestNewRandom_Seeded(t *testing.T) {
	a, err := markov.NewRandom(3, 5, seeded(7))
	require.NoError(t, err)
	b, err := markov.NewRandom(3, 5, seeded(7))
	require.NoError(t, err)
	c, err := markov.NewRandom(3, 5, seeded(8))
	require.NoError(t, err)

	require.NoError(t, a.Validate(markov.DefaultTolerance))
	assert.True(t, a.Equal(b, 0))
	assert.False(t, a.Equal(c, 1e-9))
	assert.Greater(t, a.MaxDelta(c), 0.0)
	assert.Equal(t, 0.0, a.MaxDelta(b))
}

// TestValidate_Violations checks each kind of fatal table.
func TestValidate_Violations(t *testing.T) {
	c, err := markov.NewUniform(2, 2)
	require.NoError(t, err)

	bad := c.Clone()
	bad.TransitionRow(1)[0] = logspace.Eln(0.9)
	assert.ErrorIs(t, bad.Validate(markov.DefaultTolerance), markov.ErrInvalidModel)

	bad = c.Clone()
	bad.EmissionRow(0)[1] = math.NaN()
	assert.ErrorIs(t, bad.Validate(markov.DefaultTolerance), markov.ErrInvalidModel)

	bad = c.Clone()
	bad.Initial()[0] = logspace.LogZero
	assert.ErrorIs(t, bad.Validate(markov.DefaultTolerance), markov.ErrInvalidModel)

	// a sentinel entry is legal as long as the row still sums to one
	ok := c.Clone()
	ok.Initial()[0] = logspace.LogZero
	ok.Initial()[1] = logspace.LogOne
	assert.NoError(t, ok.Validate(markov.DefaultTolerance))

	// original untouched by clones
	assert.NoError(t, c.Validate(markov.DefaultTolerance))
}

// TestReplace_Shapes rejects mismatched tables.
func TestReplace_Shapes(t *testing.T) {
	c, err := markov.NewUniform(2, 3)
	require.NoError(t, err)

	trans, _ := matrix.Filled(2, 2, math.Log(0.5))
	emit, _ := matrix.Filled(2, 3, math.Log(1.0/3))
	wrong, _ := matrix.Filled(3, 3, 0)

	assert.ErrorIs(t, c.Replace([]float64{0}, trans, emit), markov.ErrInvalidModel)
	assert.ErrorIs(t, c.Replace([]float64{0, 0}, wrong, emit), markov.ErrInvalidModel)
	assert.ErrorIs(t, c.Replace([]float64{0, 0}, trans, wrong), markov.ErrInvalidModel)

	init := []float64{logspace.LogOne, logspace.LogZero}
	require.NoError(t, c.Replace(init, trans, emit))
	assert.Equal(t, logspace.LogOne, c.Initial()[0])
	assert.NoError(t, c.Validate(markov.DefaultTolerance))
}

// TestText_RoundTrip checks exact preservation of values.
func TestText_RoundTrip(t *testing.T) {
	c, err := markov.NewRandom(4, 6, seeded(42))
	require.NoError(t, err)
	c.EmissionRow(3)[5] = logspace.LogZero

	var buf bytes.Buffer
	require.NoError(t, markov.WriteText(&buf, c))
	assert.True(t, strings.HasPrefix(buf.String(), "4,6\n"))

	got, err := markov.ReadText(&buf)
	require.NoError(t, err)
	assert.True(t, c.Equal(got, 1e-12))
	assert.Equal(t, logspace.LogZero, got.Emission(3, 5))
}

// TestText_Malformed lists inputs ReadText must reject.
func TestText_Malformed(t *testing.T) {
	cases := map[string]string{
		"Empty":        "",
		"BadHeader":    "2\n",
		"ZeroStates":   "0,2\n",
		"ShortInitial": "2,1\n0\n",
		"MissingRows":  "1,1\n0\n0\n",
		"NonNumeric":   "1,1\nx\n0\n0\n",
		"TrailingData": "1,1\n0\n0\n0\n0\n",
		"WideEmission": "1,1\n0\n0\n0 0\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := markov.ReadText(strings.NewReader(in))
			assert.ErrorIs(t, err, markov.ErrMalformed)
		})
	}
}
