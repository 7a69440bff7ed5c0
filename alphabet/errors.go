package alphabet

import "errors"

var (
	// ErrMalformed indicates a persisted alphabet could not be parsed.
	ErrMalformed = errors.New("alphabet: malformed")

	// ErrBadSymbol indicates a symbol cannot be written without ambiguity.
	ErrBadSymbol = errors.New("alphabet: symbol cannot be encoded")

	// ErrNoPrebuilt indicates StrategyPrebuilt was chosen without an alphabet.
	ErrNoPrebuilt = errors.New("alphabet: prebuilt strategy requires an alphabet")

	// ErrBadThreshold indicates a threshold outside [0, 1].
	ErrBadThreshold = errors.New("alphabet: threshold must be in [0,1]")
)
