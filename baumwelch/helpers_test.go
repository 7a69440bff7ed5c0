package baumwelch_test

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/baumwelch"
	"github.com/katalvlaran/hmmalign/markov"
)

// interned builds graphs for rune pairs ("above", "below", ...) against a
// shared permissive alphabet.
func interned(t testing.TB, bounds alignment.Bounds, pairs ...string) (*alphabet.Alphabet[rune, rune], []*alignment.Graph) {
	t.Helper()
	al := alphabet.New[rune, rune]()
	var graphs []*alignment.Graph
	for i := 0; i+1 < len(pairs); i += 2 {
		g, err := alignment.Build([]rune(pairs[i]), []rune(pairs[i+1]), bounds, al.Interner())
		require.NoError(t, err)
		graphs = append(graphs, g)
	}

	return al, graphs
}

// words builds graphs for space-separated word pairs.
func words(t testing.TB, bounds alignment.Bounds, pairs ...string) (*alphabet.Alphabet[string, string], []*alignment.Graph) {
	t.Helper()
	al := alphabet.New[string, string]()
	var graphs []*alignment.Graph
	for i := 0; i+1 < len(pairs); i += 2 {
		g, err := alignment.Build(strings.Fields(pairs[i]), strings.Fields(pairs[i+1]), bounds, al.Interner())
		require.NoError(t, err)
		graphs = append(graphs, g)
	}

	return al, graphs
}

func randomCore(t testing.TB, states, symbols int, seed uint64) *markov.Core {
	t.Helper()
	c, err := markov.NewRandom(states, symbols, rand.New(rand.NewPCG(seed, seed+1)))
	require.NoError(t, err)

	return c
}

var spelling = []string{
	"CALLED", "kold",
	"CALL", "kol",
	"BALL", "bol",
	"CAB", "kab",
	"LAB", "lab",
	"ABLE", "eibl",
}

var errSourceGone = errors.New("source gone")

// onceSource serves its graphs on the first Open and fails afterwards.
type onceSource struct {
	graphs []*alignment.Graph
	opens  int
}

func (s *onceSource) Open() (baumwelch.GraphCursor, error) {
	s.opens++
	if s.opens > 1 {
		return nil, errSourceGone
	}

	return baumwelch.SliceSource(s.graphs).Open()
}
