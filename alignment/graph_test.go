package alignment_test

import (
	"bytes"
	"testing"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//----------------------------------------------------------------------------//
// Build: validation
//----------------------------------------------------------------------------//

// TestBuild_Errors verifies argument validation and the NotAlignable signal.
func TestBuild_Errors(t *testing.T) {
	cases := []struct {
		name         string
		above, below string
		lo, hi       int
		err          error
	}{
		{"NegativeMin", "ab", "xy", -1, 2, alignment.ErrBadBounds},
		{"InvertedBounds", "ab", "xy", 3, 2, alignment.ErrBadBounds},
		{"TooManyBelow", "AB", "vwxyz", 0, 2, alignment.ErrNotAlignable},
		{"TooFewBelow", "ABC", "x", 1, 2, alignment.ErrNotAlignable},
		{"EmptyAboveNonEmptyBelow", "", "x", 0, 2, alignment.ErrNotAlignable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := build(tc.above, tc.below, tc.lo, tc.hi, newInterner())
			assert.ErrorIs(t, err, tc.err)
		})
	}

	_, err := alignment.Build([]rune("a"), []rune("b"), alignment.DefaultBounds(), nil)
	assert.ErrorIs(t, err, alignment.ErrNilEncoder)
}

// TestBuild_EncoderRejectsEverything ensures a strict encoder yields NotAlignable.
func TestBuild_EncoderRejectsEverything(t *testing.T) {
	in := newInterner()
	in.deny = func(rune, []rune) bool { return true }
	_, err := build("abc", "abc", 0, 2, in)
	require.ErrorIs(t, err, alignment.ErrNotAlignable)
}

//----------------------------------------------------------------------------//
// Build: structure
//----------------------------------------------------------------------------//

// TestBuild_CalledKold is the end-to-end "CALLED"→"kold" scenario.
func TestBuild_CalledKold(t *testing.T) {
	g, err := build("CALLED", "kold", 0, 2, newInterner())
	require.NoError(t, err)
	require.NotNil(t, g)

	assert.Equal(t, 6, g.Above())
	assert.Equal(t, 4, g.Below())
	assert.True(t, g.Alive(0, 0), "root must be retained")
	assert.True(t, g.Alive(6, 4), "terminal must be retained")
	assert.GreaterOrEqual(t, g.CountPaths(), uint64(1))
}

// TestBuild_PathsConsumeEverything checks that every root→terminal path
// consumes |above| above-symbols and |below| below-symbols, within bounds.
func TestBuild_PathsConsumeEverything(t *testing.T) {
	const lo, hi = 0, 2
	g, err := build("CALLED", "kold", lo, hi, newInterner())
	require.NoError(t, err)

	var walked uint64
	g.WalkPaths(func(path []alignment.Step) bool {
		walked++
		require.Len(t, path, 6)
		below := 0
		for i, s := range path {
			assert.Equal(t, i, s.FromA)
			assert.Equal(t, i+1, s.ToA)
			assert.GreaterOrEqual(t, s.Consumed(), lo)
			assert.LessOrEqual(t, s.Consumed(), hi)
			assert.Equal(t, below, s.FromB, "steps must chain")
			below = s.ToB
		}
		assert.Equal(t, 4, below)
		return true
	})
	assert.Equal(t, g.CountPaths(), walked)
}

// TestBuild_OneToOne verifies that bounds [1,1] admit exactly the diagonal.
func TestBuild_OneToOne(t *testing.T) {
	g, err := build("abc", "xyz", 1, 1, newInterner())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), g.CountPaths())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, 1, g.MaxIncoming())
	for a := 0; a <= 3; a++ {
		for b := 0; b <= 3; b++ {
			assert.Equal(t, a == b, g.Alive(a, b), "(%d,%d)", a, b)
		}
	}
}

// TestBuild_PrunesDeadBranches verifies that every surviving node lies on a
// root→terminal path even when the encoder creates dead ends.
func TestBuild_PrunesDeadBranches(t *testing.T) {
	in := newInterner()
	// 'b' may never emit "y": paths through (1,1) toward "y" die.
	in.deny = func(a rune, below []rune) bool {
		return a == 'b' && len(below) > 0 && below[0] == 'y'
	}
	g, err := build("abc", "xyzz", 0, 2, in)
	require.NoError(t, err)

	onPath := map[[2]int]bool{{0, 0}: true}
	g.WalkPaths(func(path []alignment.Step) bool {
		for _, s := range path {
			onPath[[2]int{s.ToA, s.ToB}] = true
		}
		return true
	})
	for idx := 0; idx < g.Size(); idx++ {
		a, b := g.Coordinate(idx)
		assert.Equal(t, onPath[[2]int{a, b}], g.AliveAt(idx), "node (%d,%d)", a, b)
		if !g.AliveAt(idx) {
			assert.Empty(t, g.IncomingAt(idx), "pruned node (%d,%d) keeps no edges", a, b)
		}
	}
}

// TestBuild_EmptyPair ensures the empty pair is a single-node graph.
func TestBuild_EmptyPair(t *testing.T) {
	g, err := build("", "", 0, 2, newInterner())
	require.NoError(t, err)
	assert.Equal(t, 1, g.Size())
	assert.Equal(t, g.Root(), g.Terminal())
	assert.Equal(t, uint64(1), g.CountPaths())
	assert.Equal(t, -1, g.MaxCode())
}

// TestBuild_Deterministic builds the same pair twice and compares both the
// in-memory graphs and their serialized bytes.
func TestBuild_Deterministic(t *testing.T) {
	g1, err := build("CALLED", "kold", 0, 2, newInterner())
	require.NoError(t, err)
	g2, err := build("CALLED", "kold", 0, 2, newInterner())
	require.NoError(t, err)
	require.True(t, g1.Equal(g2))

	var b1, b2 bytes.Buffer
	require.NoError(t, alignment.WriteGraphs(&b1, []*alignment.Graph{g1}))
	require.NoError(t, alignment.WriteGraphs(&b2, []*alignment.Graph{g2}))
	assert.Equal(t, b1.Bytes(), b2.Bytes())
}

//----------------------------------------------------------------------------//
// Queries
//----------------------------------------------------------------------------//

// TestReachable checks coverage measurement with restricted code sets.
func TestReachable(t *testing.T) {
	in := newInterner()
	g, err := build("ab", "xyz", 1, 2, in)
	require.NoError(t, err)

	assert.True(t, g.Reachable(func(int) bool { return true }))
	assert.False(t, g.Reachable(func(int) bool { return false }))

	// keep only the a→x, b→yz chunking
	keep := map[int]bool{in.codes["a:x"]: true, in.codes["b:yz"]: true}
	assert.True(t, g.Reachable(func(c int) bool { return keep[c] }))
	delete(keep, in.codes["b:yz"])
	assert.False(t, g.Reachable(func(c int) bool { return keep[c] }))
}

// TestRecode shifts every code and checks MaxCode follows.
func TestRecode(t *testing.T) {
	g, err := build("ab", "xyz", 1, 2, newInterner())
	require.NoError(t, err)
	before := g.MaxCode()
	g.Recode(func(c int) int { return c + 10 })
	assert.Equal(t, before+10, g.MaxCode())
}

// TestCoordinateRoundTrip verifies Index and Coordinate are inverse.
func TestCoordinateRoundTrip(t *testing.T) {
	g, err := build("CALLED", "kold", 0, 2, newInterner())
	require.NoError(t, err)
	for idx := 0; idx < g.Size(); idx++ {
		a, b := g.Coordinate(idx)
		assert.Equal(t, idx, g.Index(a, b))
	}
	assert.Nil(t, g.Incoming(-1, 0))
	assert.False(t, g.Alive(7, 0))
}
