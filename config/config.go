// SPDX-License-Identifier: MIT

// Package config loads the hmmalign YAML configuration and converts it
// into the Options structs of the core packages. Core packages never read
// files or the environment themselves.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/baumwelch"
	"github.com/katalvlaran/hmmalign/corpus"
	"github.com/katalvlaran/hmmalign/logging"
	"github.com/katalvlaran/hmmalign/viterbi"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheDir    = "dir"
	CacheSQLite = "sqlite"
)

// Config is the full run configuration.
type Config struct {
	Bounds   BoundsConfig   `yaml:"bounds"`
	Alphabet AlphabetConfig `yaml:"alphabet"`
	Training TrainingConfig `yaml:"training"`
	Decode   DecodeConfig   `yaml:"decode"`
	Corpus   CorpusConfig   `yaml:"corpus"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// BoundsConfig limits the below-length of one chunk.
type BoundsConfig struct {
	MinBelow int `yaml:"min_below"`
	MaxBelow int `yaml:"max_below"`
}

// AlphabetConfig selects the alphabet builder strategy.
type AlphabetConfig struct {
	Strategy  string  `yaml:"strategy"`
	Threshold float64 `yaml:"threshold"`
	Shrink    bool    `yaml:"shrink"`
	Workers   int     `yaml:"workers"`
	Prebuilt  string  `yaml:"prebuilt,omitempty"` // alphabet file for strategy "prebuilt"
}

// TrainingConfig drives the Baum-Welch loop.
type TrainingConfig struct {
	States         int     `yaml:"states"`
	Seed           uint64  `yaml:"seed"`
	GraphsPerEpoch int     `yaml:"graphs_per_epoch"`
	Smoothing      float64 `yaml:"smoothing"`
	MaxEpochs      int     `yaml:"max_epochs"`
	Convergence    float64 `yaml:"convergence"`
	Progress       bool    `yaml:"progress"`
}

// DecodeConfig selects the decoder behaviour.
type DecodeConfig struct {
	UnknownPolicy string `yaml:"unknown_policy"`
	Chunked       bool   `yaml:"chunked"`
}

// CorpusConfig describes how TSV columns are split into symbols.
type CorpusConfig struct {
	Split string `yaml:"split"`
}

// CacheConfig selects the stage store.
type CacheConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Debug  bool   `yaml:"debug,omitempty"`
}

// DefaultConfig returns a configuration that trains a small model
// without caching.
func DefaultConfig() *Config {
	return &Config{
		Bounds: BoundsConfig{MinBelow: 0, MaxBelow: 2},
		Alphabet: AlphabetConfig{
			Strategy:  alphabet.StrategyGreedy.String(),
			Threshold: 0.01,
			Shrink:    true,
		},
		Training: TrainingConfig{
			States:      4,
			Seed:        1,
			Smoothing:   1e-6,
			MaxEpochs:   50,
			Convergence: 1e-4,
		},
		Decode: DecodeConfig{UnknownPolicy: viterbi.UnknownCertain.String()},
		Corpus: CorpusConfig{Split: "runes"},
		Cache:  CacheConfig{Backend: CacheNone},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// LoadFromFile reads path over DefaultConfig. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveToFile writes c as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides applies HMMALIGN_DEBUG, HMMALIGN_LOG_LEVEL and
// HMMALIGN_CACHE_PATH. Unparseable values are ignored.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("HMMALIGN_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Debug = b
		}
	}

	if v := os.Getenv("HMMALIGN_LOG_LEVEL"); v != "" {
		if _, err := logging.ParseLevel(v); err == nil {
			c.Log.Level = v
		}
	}

	if v := os.Getenv("HMMALIGN_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
}

// Validate checks every section and wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidConfig)
	}

	if err := c.AlignmentBounds().Validate(); err != nil {
		return invalid("bounds: %v", err)
	}

	strategy, err := alphabet.ParseStrategy(c.Alphabet.Strategy)
	if err != nil {
		return invalid("alphabet.strategy: %v", err)
	}
	if c.Alphabet.Threshold < 0 || c.Alphabet.Threshold > 1 {
		return invalid("alphabet.threshold must be within [0, 1]")
	}
	if strategy == alphabet.StrategyPrebuilt && c.Alphabet.Prebuilt == "" {
		return invalid("alphabet.prebuilt is required for strategy %q", c.Alphabet.Strategy)
	}

	if c.Training.States < 1 {
		return invalid("training.states must be positive")
	}
	if c.Training.GraphsPerEpoch < 0 {
		return invalid("training.graphs_per_epoch must be non-negative")
	}
	if c.Training.Smoothing <= 0 {
		return invalid("training.smoothing must be positive")
	}
	if c.Training.MaxEpochs < 1 {
		return invalid("training.max_epochs must be positive")
	}
	if c.Training.Convergence < 0 {
		return invalid("training.convergence must be non-negative")
	}

	if _, err := viterbi.ParseUnknownPolicy(c.Decode.UnknownPolicy); err != nil {
		return invalid("decode.unknown_policy: %v", err)
	}

	if _, err := corpus.SplitterByName(c.Corpus.Split); err != nil {
		return invalid("corpus.split: %v", err)
	}

	switch c.Cache.Backend {
	case CacheNone, CacheMemory:
	case CacheDir, CacheSQLite:
		if c.Cache.Path == "" {
			return invalid("cache.path is required for backend %q", c.Cache.Backend)
		}
	default:
		return invalid("cache.backend must be one of: none, memory, dir, sqlite")
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level: %v", err)
	}
	if !logging.ValidFormat(c.Log.Format) {
		return invalid("log.format must be json or text")
	}

	return nil
}

// AlignmentBounds converts the bounds section.
func (c *Config) AlignmentBounds() alignment.Bounds {
	return alignment.Bounds{MinBelow: c.Bounds.MinBelow, MaxBelow: c.Bounds.MaxBelow}
}

// Splitter resolves corpus.split.
func (c *Config) Splitter() (corpus.Splitter, error) {
	return corpus.SplitterByName(c.Corpus.Split)
}

// TrainOptions converts the training section. Logger, Metrics and the
// progress writer are left to the caller, except that Progress is set to
// progress when training.progress is on.
func (c *Config) TrainOptions(progress io.Writer) baumwelch.Options {
	opts := baumwelch.DefaultOptions()
	opts.GraphsPerEpoch = c.Training.GraphsPerEpoch
	opts.Smoothing = c.Training.Smoothing
	if c.Training.Progress {
		opts.Progress = progress
	}

	return opts
}

// Inspector stops training on convergence or after training.max_epochs.
func (c *Config) Inspector() baumwelch.Inspector {
	return baumwelch.StopOnConvergence(c.Training.Convergence, c.Training.MaxEpochs)
}

// Logging converts the log section for output w.
func (c *Config) Logging(w io.Writer) *logging.Config {
	lc := logging.DefaultConfig()
	lc.Output = w
	lc.Format = c.Log.Format
	lc.Debug = c.Log.Debug
	if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
		lc.Level = lvl
	}

	return lc
}

// AlphabetOptions converts the alphabet and bounds sections. The
// prebuilt alphabet, when the strategy needs one, is supplied by the
// caller since only it knows how to parse symbols.
func AlphabetOptions[A, B comparable](c *Config, prebuilt *alphabet.Alphabet[A, B]) (alphabet.Options[A, B], error) {
	strategy, err := alphabet.ParseStrategy(c.Alphabet.Strategy)
	if err != nil {
		return alphabet.Options[A, B]{}, fmt.Errorf("alphabet.strategy: %v: %w", err, ErrInvalidConfig)
	}

	opts := alphabet.DefaultOptions[A, B]()
	opts.Bounds = c.AlignmentBounds()
	opts.Strategy = strategy
	opts.Threshold = c.Alphabet.Threshold
	opts.Shrink = c.Alphabet.Shrink
	opts.Workers = c.Alphabet.Workers
	opts.Prebuilt = prebuilt

	return opts, nil
}

// DecodeOptions converts the decode section. ancestors is only consulted
// by the ancestor policy.
func DecodeOptions[A comparable](c *Config, ancestors func(A) []A) (viterbi.Options[A], error) {
	policy, err := viterbi.ParseUnknownPolicy(c.Decode.UnknownPolicy)
	if err != nil {
		return viterbi.Options[A]{}, fmt.Errorf("decode.unknown_policy: %v: %w", err, ErrInvalidConfig)
	}

	opts := viterbi.DefaultOptions[A]()
	opts.Unknown = policy
	opts.Ancestors = ancestors

	return opts, nil
}
