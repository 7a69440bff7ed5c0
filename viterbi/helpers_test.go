package viterbi_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/matrix"
)

func logRows(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = make([]float64, len(r))
		for j, p := range r {
			out[i][j] = math.Log(p)
		}
	}

	return out
}

// handModel returns a two-state model over the chunks a→x, a→y and b→z.
//
//	initial  = [.6 .4]
//	trans    = [[.5 .5] [.5 .5]]
//	emission = [[.7 .1 .2] [.1 .5 .4]]
func handModel(t *testing.T) (*alphabet.Alphabet[rune, rune], *markov.Core) {
	t.Helper()
	al := alphabet.New[rune, rune]()
	al.Add('a', []rune("x"))
	al.Add('a', []rune("y"))
	al.Add('b', []rune("z"))

	core, err := markov.NewUniform(2, 3)
	require.NoError(t, err)
	trans, err := matrix.FromRows(logRows([][]float64{{.5, .5}, {.5, .5}}))
	require.NoError(t, err)
	emit, err := matrix.FromRows(logRows([][]float64{{.7, .1, .2}, {.1, .5, .4}}))
	require.NoError(t, err)
	require.NoError(t, core.Replace(logRows([][]float64{{.6, .4}})[0], trans, emit))
	require.NoError(t, core.Validate(1e-9))

	return al, core
}
