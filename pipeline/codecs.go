package pipeline

import (
	"io"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/alphabet"
	"github.com/katalvlaran/hmmalign/markov"
	"github.com/katalvlaran/hmmalign/stage"
)

// Symbols holds the text codecs for above and below symbols.
type Symbols[A, B comparable] struct {
	Above alphabet.SymbolCodec[A]
	Below alphabet.SymbolCodec[B]
}

// StringSymbols serves corpora split into string tokens.
func StringSymbols() Symbols[string, string] {
	return Symbols[string, string]{Above: alphabet.StringCodec{}, Below: alphabet.StringCodec{}}
}

// AlphabetCodec persists an alphabet in its text format.
func AlphabetCodec[A, B comparable](sym Symbols[A, B]) stage.Codec[*alphabet.Alphabet[A, B]] {
	return stage.CodecFuncs[*alphabet.Alphabet[A, B]]{
		EncodeFunc: func(w io.Writer, al *alphabet.Alphabet[A, B]) error {
			return alphabet.WriteText(w, al, sym.Above, sym.Below)
		},
		DecodeFunc: func(r io.Reader) (*alphabet.Alphabet[A, B], error) {
			return alphabet.ReadText(r, sym.Above, sym.Below)
		},
	}
}

// GraphsCodec persists a graph list with its header record.
func GraphsCodec() stage.Codec[[]*alignment.Graph] {
	return stage.CodecFuncs[[]*alignment.Graph]{
		EncodeFunc: alignment.WriteGraphs,
		DecodeFunc: func(r io.Reader) ([]*alignment.Graph, error) {
			_, graphs, err := alignment.ReadGraphs(r)
			return graphs, err
		},
	}
}

// CoreCodec persists a Markov core. Decoding rejects a core whose
// distributions do not sum to one.
func CoreCodec() stage.Codec[*markov.Core] {
	return stage.CodecFuncs[*markov.Core]{
		EncodeFunc: markov.WriteText,
		DecodeFunc: readCore,
	}
}

// readCore parses a core and validates it with markov.DefaultTolerance.
func readCore(r io.Reader) (*markov.Core, error) {
	core, err := markov.ReadText(r)
	if err != nil {
		return nil, err
	}
	if err := core.Validate(markov.DefaultTolerance); err != nil {
		return nil, err
	}

	return core, nil
}
