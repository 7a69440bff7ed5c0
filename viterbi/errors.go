package viterbi

import "errors"

var (
	// ErrUnknownSymbol indicates an above-symbol absent from the alphabet
	// under a policy that cannot handle it.
	ErrUnknownSymbol = errors.New("viterbi: unknown above symbol")

	// ErrMismatch indicates an alphabet and core of different sizes.
	ErrMismatch = errors.New("viterbi: alphabet size does not match core symbols")

	// ErrNoAncestors indicates UnknownAncestor without an Ancestors function.
	ErrNoAncestors = errors.New("viterbi: ancestor policy requires Ancestors")

	// ErrNoPath indicates every state sequence has zero probability.
	ErrNoPath = errors.New("viterbi: no path with positive probability")
)
