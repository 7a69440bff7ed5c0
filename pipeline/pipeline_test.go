package pipeline_test

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/corpus"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/matrix"
	"github.com/katalvlaran/hmmalign/pipeline"
	"github.com/katalvlaran/hmmalign/stage"
	"github.com/katalvlaran/hmmalign/viterbi"
)

// spelling is a small respelling corpus. "Q"→"kwx" needs three below
// symbols for one above symbol and never aligns; "A"→"a" aligns but is
// too short to train on.
func spelling() corpus.Slice[string, string] {
	rows := []string{
		"CALLED", "kold",
		"CALL", "kol",
		"CALLS", "kols",
		"CAB", "kab",
		"LAD", "lad",
		"BALL", "bol",
		"Q", "kwx",
		"A", "a",
	}
	out := make(corpus.Slice[string, string], 0, len(rows)/2)
	for i := 0; i < len(rows); i += 2 {
		out = append(out, corpus.Pair[string, string]{Above: corpus.Runes(rows[i]), Below: corpus.Runes(rows[i+1])})
	}

	return out
}

// halfMass returns a well-shaped core whose every distribution sums to 0.5.
func halfMass(t *testing.T, states, symbols int) *markov.Core {
	t.Helper()
	core, err := markov.NewUniform(states, symbols)
	require.NoError(t, err)
	initial := make([]float64, states)
	for i := range initial {
		initial[i] = math.Log(0.5 / float64(states))
	}
	trans, err := matrix.Filled(states, states, math.Log(0.5/float64(states)))
	require.NoError(t, err)
	emit, err := matrix.Filled(states, symbols, math.Log(0.5/float64(symbols)))
	require.NoError(t, err)
	require.NoError(t, core.Replace(initial, trans, emit))

	return core
}

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Training.States = 2
	cfg.Training.MaxEpochs = 4
	cfg.Training.Convergence = 0

	return cfg
}

//--------------------------------------------------------------------------//
// Train
//--------------------------------------------------------------------------//

// TestTrain_Summary runs every stage once and checks the pair outcomes.
func TestTrain_Summary(t *testing.T) {
	reg := prometheus.NewRegistry()
	model, sum, err := pipeline.Train(context.Background(), smallConfig(), spelling(),
		pipeline.StringSymbols(), pipeline.Deps{Registry: reg})
	require.NoError(t, err)

	require.NotNil(t, sum.Alphabet)
	assert.False(t, sum.AlphabetCached || sum.GraphsCached || sum.CoreCached)
	assert.Equal(t, pipeline.GraphReport{Pairs: 8, NotAlignable: 1, Rejected: 1}, sum.Pairs)
	assert.Equal(t, 6, sum.Graphs)
	assert.Equal(t, 4, sum.Training.Epoch)

	assert.Equal(t, model.Alphabet.Len(), model.Core.Symbols())
	assert.Equal(t, 2, model.Core.States())
	require.NoError(t, model.Core.Validate(markov.DefaultTolerance))

	n, err := testutil.GatherAndCount(reg, "hmmalign_alignment_pairs_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = testutil.GatherAndCount(reg, "hmmalign_training_epochs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	dec, err := model.Decoder(viterbi.DefaultOptions[string]())
	require.NoError(t, err)
	path, err := dec.DecodePath(corpus.Runes("CALL"))
	require.NoError(t, err)
	assert.Len(t, path.States, 4)
}

// TestTrain_Resume reloads every stage from the store on a second run.
func TestTrain_Resume(t *testing.T) {
	store := stage.NewMemoryStore()
	deps := pipeline.Deps{Store: store}
	first, _, err := pipeline.Train(context.Background(), smallConfig(), spelling(), pipeline.StringSymbols(), deps)
	require.NoError(t, err)

	second, sum, err := pipeline.Train(context.Background(), smallConfig(), spelling(), pipeline.StringSymbols(), deps)
	require.NoError(t, err)
	assert.True(t, sum.AlphabetCached && sum.GraphsCached && sum.CoreCached)
	assert.Nil(t, sum.Alphabet)
	assert.Equal(t, 6, sum.Graphs)
	assert.True(t, first.Alphabet.Equal(second.Alphabet))
	assert.True(t, first.Core.Equal(second.Core, 1e-12))

	// Dropping the core stage retrains from the cached graphs.
	require.NoError(t, store.Delete(context.Background(), pipeline.StageCore))
	third, sum, err := pipeline.Train(context.Background(), smallConfig(), spelling(), pipeline.StringSymbols(), deps)
	require.NoError(t, err)
	assert.True(t, sum.GraphsCached)
	assert.False(t, sum.CoreCached)
	assert.True(t, first.Core.Equal(third.Core, 1e-9))
}

// TestTrain_CachedCoreInvalid refuses a cached core that is not a
// distribution instead of decoding with it.
func TestTrain_CachedCoreInvalid(t *testing.T) {
	ctx := context.Background()
	store := stage.NewMemoryStore()
	var buf bytes.Buffer
	require.NoError(t, markov.WriteText(&buf, halfMass(t, 2, 3)))
	require.NoError(t, store.Save(ctx, pipeline.StageCore, buf.Bytes()))

	_, _, err := pipeline.Train(ctx, smallConfig(), spelling(), pipeline.StringSymbols(), pipeline.Deps{Store: store})
	assert.ErrorIs(t, err, stage.ErrCorrupt)
	assert.ErrorIs(t, err, markov.ErrInvalidModel)
}

// TestTrain_Errors covers invalid input.
func TestTrain_Errors(t *testing.T) {
	_, _, err := pipeline.Train[string, string](context.Background(), smallConfig(), nil, pipeline.StringSymbols(), pipeline.Deps{})
	assert.ErrorIs(t, err, corpus.ErrNilCorpus)

	cfg := smallConfig()
	cfg.Training.States = 0
	_, _, err = pipeline.Train(context.Background(), cfg, spelling(), pipeline.StringSymbols(), pipeline.Deps{})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = pipeline.Train(ctx, smallConfig(), spelling(), pipeline.StringSymbols(), pipeline.Deps{})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestTrain_Prebuilt reuses an alphabet written by an earlier run.
func TestTrain_Prebuilt(t *testing.T) {
	model, _, err := pipeline.Train(context.Background(), smallConfig(), spelling(), pipeline.StringSymbols(), pipeline.Deps{})
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, pipeline.SaveModel(dir, model, pipeline.StringSymbols()))

	cfg := smallConfig()
	cfg.Alphabet.Strategy = alphabet.StrategyPrebuilt.String()
	cfg.Alphabet.Prebuilt = filepath.Join(dir, pipeline.AlphabetFile)
	again, sum, err := pipeline.Train(context.Background(), cfg, spelling(), pipeline.StringSymbols(), pipeline.Deps{})
	require.NoError(t, err)
	assert.True(t, model.Alphabet.Equal(again.Alphabet))
	require.NotNil(t, sum.Alphabet)
	assert.Equal(t, model.Alphabet.Len(), sum.Alphabet.Selected)
}

//--------------------------------------------------------------------------//
// Model files and stores
//--------------------------------------------------------------------------//

// TestSaveLoadModel round-trips a model directory.
func TestSaveLoadModel(t *testing.T) {
	model, _, err := pipeline.Train(context.Background(), smallConfig(), spelling(), pipeline.StringSymbols(), pipeline.Deps{})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "model")
	require.NoError(t, pipeline.SaveModel(dir, model, pipeline.StringSymbols()))
	got, err := pipeline.LoadModel(dir, pipeline.StringSymbols())
	require.NoError(t, err)
	assert.True(t, model.Alphabet.Equal(got.Alphabet))
	assert.True(t, model.Core.Equal(got.Core, 1e-12))

	// A core of the wrong width is rejected.
	other, err := markov.NewUniform(2, model.Alphabet.Len()+1)
	require.NoError(t, err)
	f, err := os.Create(filepath.Join(dir, pipeline.CoreFile))
	require.NoError(t, err)
	require.NoError(t, markov.WriteText(f, other))
	require.NoError(t, f.Close())
	_, err = pipeline.LoadModel(dir, pipeline.StringSymbols())
	assert.ErrorIs(t, err, viterbi.ErrMismatch)

	_, err = pipeline.LoadModel(t.TempDir(), pipeline.StringSymbols())
	assert.Error(t, err)
}

// TestLoadModel_InvalidCore rejects a core of the right width whose rows
// do not sum to one.
func TestLoadModel_InvalidCore(t *testing.T) {
	model, _, err := pipeline.Train(context.Background(), smallConfig(), spelling(), pipeline.StringSymbols(), pipeline.Deps{})
	require.NoError(t, err)
	dir := t.TempDir()
	require.NoError(t, pipeline.SaveModel(dir, model, pipeline.StringSymbols()))

	f, err := os.Create(filepath.Join(dir, pipeline.CoreFile))
	require.NoError(t, err)
	require.NoError(t, markov.WriteText(f, halfMass(t, 2, model.Alphabet.Len())))
	require.NoError(t, f.Close())

	_, err = pipeline.LoadModel(dir, pipeline.StringSymbols())
	assert.ErrorIs(t, err, markov.ErrInvalidModel)
}

// TestOpenStore maps every backend.
func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := pipeline.OpenStore(ctx, config.CacheConfig{Backend: config.CacheNone})
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = pipeline.OpenStore(ctx, config.CacheConfig{Backend: config.CacheMemory})
	require.NoError(t, err)
	assert.IsType(t, &stage.MemoryStore{}, s)

	s, err = pipeline.OpenStore(ctx, config.CacheConfig{Backend: config.CacheDir, Path: filepath.Join(dir, "stages")})
	require.NoError(t, err)
	assert.IsType(t, &stage.DirStore{}, s)

	s, err = pipeline.OpenStore(ctx, config.CacheConfig{Backend: config.CacheSQLite, Path: filepath.Join(dir, "stages.db")})
	require.NoError(t, err)
	sq, ok := s.(*stage.SQLiteStore)
	require.True(t, ok)
	require.NoError(t, sq.Close())

	_, err = pipeline.OpenStore(ctx, config.CacheConfig{Backend: "redis"})
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
