package markov

import "errors"

var (
	// ErrInvalidModel indicates a distribution that does not sum to one, a
	// NaN parameter, or tables of inconsistent shape.
	ErrInvalidModel = errors.New("markov: invalid model")

	// ErrMalformed indicates a persisted core could not be parsed.
	ErrMalformed = errors.New("markov: malformed")
)
