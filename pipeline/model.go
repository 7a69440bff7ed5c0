package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/viterbi"
)

// Model file names inside a model directory.
const (
	AlphabetFile = "alphabet.txt"
	CoreFile     = "core.txt"
)

// Model is a trained transducer. It is read-only once returned.
type Model[A, B comparable] struct {
	Alphabet *alphabet.Alphabet[A, B]
	Core     *markov.Core
}

// Decoder returns a state Viterbi decoder over m.
func (m *Model[A, B]) Decoder(opts viterbi.Options[A]) (*viterbi.Decoder[A, B], error) {
	return viterbi.New(m.Alphabet, m.Core, opts)
}

// ChunkDecoder returns a chunk Viterbi decoder over m.
func (m *Model[A, B]) ChunkDecoder(opts viterbi.Options[A]) (*viterbi.ChunkDecoder[A, B], error) {
	return viterbi.NewChunkDecoder(m.Alphabet, m.Core, opts)
}

// SaveModel writes m into dir, creating it if needed.
func SaveModel[A, B comparable](dir string, m *Model[A, B], sym Symbols[A, B]) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	if err := WriteAlphabet(filepath.Join(dir, AlphabetFile), m.Alphabet, sym); err != nil {
		return err
	}

	return writeFile(filepath.Join(dir, CoreFile), func(f *os.File) error {
		return markov.WriteText(f, m.Core)
	})
}

// LoadModel reads a model written by SaveModel.
//
// Errors:
//   - alphabet.ErrMalformed, markov.ErrMalformed for damaged files.
//   - markov.ErrInvalidModel when a core distribution does not sum to one.
//   - viterbi.ErrMismatch when the core does not cover the alphabet.
func LoadModel[A, B comparable](dir string, sym Symbols[A, B]) (*Model[A, B], error) {
	al, err := ReadAlphabet(filepath.Join(dir, AlphabetFile), sym)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, CoreFile))
	if err != nil {
		return nil, fmt.Errorf("model core: %w", err)
	}
	defer f.Close()
	core, err := readCore(f)
	if err != nil {
		return nil, err
	}
	if core.Symbols() != al.Len() {
		return nil, fmt.Errorf("alphabet %d, core %d: %w", al.Len(), core.Symbols(), viterbi.ErrMismatch)
	}

	return &Model[A, B]{Alphabet: al, Core: core}, nil
}

// ReadAlphabet reads an alphabet text file.
func ReadAlphabet[A, B comparable](path string, sym Symbols[A, B]) (*alphabet.Alphabet[A, B], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open alphabet: %w", err)
	}
	defer f.Close()

	return alphabet.ReadText(f, sym.Above, sym.Below)
}

// WriteAlphabet writes al as an alphabet text file.
func WriteAlphabet[A, B comparable](path string, al *alphabet.Alphabet[A, B], sym Symbols[A, B]) error {
	return writeFile(path, func(f *os.File) error {
		return alphabet.WriteText(f, al, sym.Above, sym.Below)
	})
}

func writeFile(path string, write func(*os.File) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() { err = errors.Join(err, f.Close()) }()

	return write(f)
}
