package baumwelch

import "errors"

var (
	// ErrInvalidState indicates input the trainer cannot use: a graph whose
	// codes exceed the core, an above-sequence shorter than two symbols, an
	// empty source, or an epoch in which no graph had positive likelihood.
	ErrInvalidState = errors.New("baumwelch: invalid state")

	// ErrNilInspector indicates Train was called without an inspector.
	ErrNilInspector = errors.New("baumwelch: inspector is nil")

	// ErrBadOptions indicates invalid Options.
	ErrBadOptions = errors.New("baumwelch: invalid options")
)
