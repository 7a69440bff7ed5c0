package viterbi_test

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/baumwelch"
	"github.com/katalvlaran/hmmalign/corpus"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/viterbi"
)

// identityCorpus lists every true/false sequence of length 2..4 paired with
// itself.
func identityCorpus() corpus.Slice[string, string] {
	var out corpus.Slice[string, string]
	for n := 2; n <= 4; n++ {
		for mask := 0; mask < 1<<n; mask++ {
			seq := make([]string, n)
			for i := range seq {
				seq[i] = "false"
				if mask&(1<<i) != 0 {
					seq[i] = "true"
				}
			}
			out = append(out, corpus.Pair[string, string]{Above: seq, Below: seq})
		}
	}

	return out
}

// TestIdentity_TrainThenDecode trains a 3-state core on the identity data
// and requires every training input to decode to itself.
func TestIdentity_TrainThenDecode(t *testing.T) {
	pairs := identityCorpus()
	bounds := alignment.Bounds{MinBelow: 1, MaxBelow: 1}

	// 1. Alphabet
	opts := alphabet.DefaultOptions[string, string]()
	opts.Bounds = bounds
	opts.Strategy = alphabet.StrategyComplete
	al, rep, err := alphabet.Build[string, string](context.Background(), pairs, opts)
	require.NoError(t, err)
	require.Equal(t, 2, al.Len())
	require.Equal(t, len(pairs), rep.Alignable)

	// 2. Graphs
	graphs := make([]*alignment.Graph, 0, len(pairs))
	for _, p := range pairs {
		g, err := alignment.Build(p.Above, p.Below, bounds, al.Encoder())
		require.NoError(t, err)
		graphs = append(graphs, g)
	}

	// 3. Train
	core, err := markov.NewRandom(3, al.Len(), rand.New(rand.NewPCG(11, 13)))
	require.NoError(t, err)
	tr, err := baumwelch.New(baumwelch.DefaultOptions())
	require.NoError(t, err)
	stats, err := tr.Train(core, baumwelch.SliceSource(graphs), baumwelch.StopOnConvergence(1e-6, 100))
	require.NoError(t, err)
	require.NoError(t, core.Validate(markov.DefaultTolerance))
	assert.Greater(t, stats.Epoch, 0)

	// 4. Decode
	strict := viterbi.Options[string]{Unknown: viterbi.UnknownFail}
	d, err := viterbi.New(al, core, strict)
	require.NoError(t, err)
	cd, err := viterbi.NewChunkDecoder(al, core, strict)
	require.NoError(t, err)
	for _, p := range pairs {
		got, err := d.Decode(p.Above)
		require.NoError(t, err)
		assert.Equal(t, p.Below, got)

		got, err = cd.Decode(p.Above)
		require.NoError(t, err)
		assert.Equal(t, p.Below, got)
	}

	// 5. An unseen symbol under the hard-failure policy
	_, err = d.Decode([]string{"true", "maybe"})
	assert.ErrorIs(t, err, viterbi.ErrUnknownSymbol)
}
