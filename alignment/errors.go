package alignment

import "errors"

var (
	// ErrNotAlignable indicates the pair admits no chunking under the current
	// bounds and encoder. It is an expected outcome: callers skip and count it.
	ErrNotAlignable = errors.New("alignment: sequence pair is not alignable")

	// ErrBadBounds indicates MinBelow < 0 or MinBelow > MaxBelow.
	ErrBadBounds = errors.New("alignment: invalid emission length bounds")

	// ErrNilEncoder indicates Build was called without an encoder.
	ErrNilEncoder = errors.New("alignment: encoder must not be nil")

	// ErrMalformed indicates a serialized graph batch is structurally invalid.
	ErrMalformed = errors.New("alignment: malformed graph data")
)
