package config_test

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/config"
	"github.com/katalvlaran/hmmalign/viterbi"
)

//--------------------------------------------------------------------------//
// Loading
//--------------------------------------------------------------------------//

// TestDefaultConfig_Valid ensures the defaults pass validation.
func TestDefaultConfig_Valid(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, alignment.DefaultBounds(), cfg.AlignmentBounds())

	opts, err := config.DecodeOptions[string](cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, viterbi.UnknownCertain, opts.Unknown)
}

// TestLoadFromFile_Missing returns defaults for an absent file.
func TestLoadFromFile_Missing(t *testing.T) {
	cfg, err := config.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Training, cfg.Training)
}

// TestLoadFromFile_Partial overlays a partial file onto the defaults.
func TestLoadFromFile_Partial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hmmalign.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bounds:
  min_below: 1
  max_below: 3
training:
  states: 7
decode:
  unknown_policy: fail
`), 0o644))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, alignment.Bounds{MinBelow: 1, MaxBelow: 3}, cfg.AlignmentBounds())
	assert.Equal(t, 7, cfg.Training.States)
	assert.Equal(t, 50, cfg.Training.MaxEpochs)
	assert.Equal(t, "greedy", cfg.Alphabet.Strategy)

	opts, err := config.DecodeOptions[string](cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, viterbi.UnknownFail, opts.Unknown)
}

// TestLoadFromFile_Invalid rejects bad YAML and bad values.
func TestLoadFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("bounds: [1, 2"), 0o644))
	_, err := config.LoadFromFile(bad)
	assert.Error(t, err)

	inverted := filepath.Join(dir, "inverted.yaml")
	require.NoError(t, os.WriteFile(inverted, []byte("bounds:\n  min_below: 3\n  max_below: 1\n"), 0o644))
	_, err = config.LoadFromFile(inverted)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

// TestSaveToFile_RoundTrip writes and reloads a modified config.
func TestSaveToFile_RoundTrip(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Training.Seed = 42
	cfg.Cache = config.CacheConfig{Backend: config.CacheSQLite, Path: "stages.db"}

	path := filepath.Join(t.TempDir(), "nested", "hmmalign.yaml")
	require.NoError(t, cfg.SaveToFile(path))

	got, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

//--------------------------------------------------------------------------//
// Overrides and validation
//--------------------------------------------------------------------------//

// TestApplyEnvOverrides reads the HMMALIGN_ variables.
func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("HMMALIGN_DEBUG", "true")
	t.Setenv("HMMALIGN_LOG_LEVEL", "warn")
	t.Setenv("HMMALIGN_CACHE_PATH", "/tmp/stages")

	cfg := config.DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.True(t, cfg.Log.Debug)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/tmp/stages", cfg.Cache.Path)

	t.Setenv("HMMALIGN_LOG_LEVEL", "loud")
	t.Setenv("HMMALIGN_DEBUG", "maybe")
	cfg = config.DefaultConfig()
	cfg.ApplyEnvOverrides()
	assert.False(t, cfg.Log.Debug)
	assert.Equal(t, "info", cfg.Log.Level)
}

// TestValidate_Errors covers one failure per section.
func TestValidate_Errors(t *testing.T) {
	cases := map[string]func(*config.Config){
		"strategy":     func(c *config.Config) { c.Alphabet.Strategy = "ascendant" },
		"threshold":    func(c *config.Config) { c.Alphabet.Threshold = 1.5 },
		"prebuilt":     func(c *config.Config) { c.Alphabet.Strategy = "prebuilt" },
		"states":       func(c *config.Config) { c.Training.States = 0 },
		"batch":        func(c *config.Config) { c.Training.GraphsPerEpoch = -1 },
		"smoothing":    func(c *config.Config) { c.Training.Smoothing = -1 },
		"no smoothing": func(c *config.Config) { c.Training.Smoothing = 0 },
		"epochs":       func(c *config.Config) { c.Training.MaxEpochs = 0 },
		"convergence":  func(c *config.Config) { c.Training.Convergence = -1 },
		"policy":       func(c *config.Config) { c.Decode.UnknownPolicy = "guess" },
		"split":        func(c *config.Config) { c.Corpus.Split = "bytes" },
		"backend":      func(c *config.Config) { c.Cache.Backend = "redis" },
		"backend path": func(c *config.Config) { c.Cache.Backend = config.CacheDir },
		"level":        func(c *config.Config) { c.Log.Level = "loud" },
		"format":       func(c *config.Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), config.ErrInvalidConfig)
		})
	}
}

//--------------------------------------------------------------------------//
// Converters
//--------------------------------------------------------------------------//

// TestConverters maps sections onto component options.
func TestConverters(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Alphabet.Strategy = "complete"
	cfg.Alphabet.Workers = 3
	cfg.Training.GraphsPerEpoch = 10
	cfg.Training.Progress = true

	aopts, err := config.AlphabetOptions[rune, rune](cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, alphabet.StrategyComplete, aopts.Strategy)
	assert.Equal(t, 3, aopts.Workers)
	assert.Equal(t, cfg.AlignmentBounds(), aopts.Bounds)

	var progress bytes.Buffer
	topts := cfg.TrainOptions(&progress)
	assert.Equal(t, 10, topts.GraphsPerEpoch)
	assert.Equal(t, 1e-6, topts.Smoothing)
	assert.NotNil(t, topts.Progress)
	require.NoError(t, topts.Validate())

	cfg.Training.Progress = false
	assert.Nil(t, cfg.TrainOptions(&progress).Progress)

	cfg.Log.Level = "debug"
	lc := cfg.Logging(&progress)
	assert.Equal(t, slog.LevelDebug, lc.Level)
	assert.NotNil(t, cfg.Inspector())

	split, err := cfg.Splitter()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, split("ab"))
}
