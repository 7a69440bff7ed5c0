package viterbi

import (
	"fmt"
	"log/slog"

	"github.com/katalvlaran/hmmalign/metrics"
)

// UnknownPolicy selects how above-symbols absent from the alphabet are
// handled.
type UnknownPolicy int

const (
	// UnknownFail rejects the input with ErrUnknownSymbol.
	UnknownFail UnknownPolicy = iota
	// UnknownCertain scores the position by transitions only.
	UnknownCertain
	// UnknownAncestor borrows emissions from Options.Ancestors.
	UnknownAncestor
)

var policyNames = [...]string{"fail", "certain", "ancestor"}

// String implements fmt.Stringer.
func (p UnknownPolicy) String() string {
	if p >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}

	return fmt.Sprintf("UnknownPolicy(%d)", int(p))
}

// ParseUnknownPolicy is the inverse of String.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	for i, n := range policyNames {
		if n == s {
			return UnknownPolicy(i), nil
		}
	}

	return 0, fmt.Errorf("viterbi: unknown policy %q", s)
}

// Options configures Decoder and ChunkDecoder.
type Options[A comparable] struct {
	Unknown UnknownPolicy

	// Ancestors lists the symbols whose emissions stand in for an unknown
	// symbol. Required by UnknownAncestor; members absent from the
	// alphabet are ignored.
	Ancestors func(A) []A

	Logger  *slog.Logger
	Metrics *metrics.Decoding
}

// DefaultOptions returns the soft UnknownCertain policy: an unseen symbol
// is logged and decoded as emitting nothing. UnknownFail is opt-in.
func DefaultOptions[A comparable]() Options[A] {
	return Options[A]{Unknown: UnknownCertain}
}

func (o Options[A]) validate() error {
	if o.Unknown < UnknownFail || o.Unknown > UnknownAncestor {
		return fmt.Errorf("viterbi: invalid policy %d", int(o.Unknown))
	}
	if o.Unknown == UnknownAncestor && o.Ancestors == nil {
		return ErrNoAncestors
	}

	return nil
}

func (o Options[A]) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}

	return o.Logger
}
