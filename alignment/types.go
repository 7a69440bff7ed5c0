package alignment

import "fmt"

// Encoder maps one chunk (an above-symbol and a below-subsequence) to its
// dense alphabet code. ok == false means the chunk is not a legal edge.
// Implementations must be deterministic and must not retain below.
type Encoder[A, B any] func(above A, below []B) (code int, ok bool)

// Bounds limits how many below-symbols one above-symbol may emit.
type Bounds struct {
	MinBelow int // inclusive lower bound, ≥ 0
	MaxBelow int // inclusive upper bound, ≥ MinBelow
}

// DefaultBounds returns MinBelow=0, MaxBelow=2.
func DefaultBounds() Bounds {
	return Bounds{MinBelow: 0, MaxBelow: 2}
}

// Validate reports ErrBadBounds for negative or inverted bounds.
func (b Bounds) Validate() error {
	if b.MinBelow < 0 || b.MaxBelow < b.MinBelow {
		return fmt.Errorf("min=%d max=%d: %w", b.MinBelow, b.MaxBelow, ErrBadBounds)
	}

	return nil
}

// Edge is one incoming edge of a node: the chunk (source → this node)
// labelled with its alphabet code. The destination is implied by the node
// that owns the edge.
type Edge struct {
	FromA, FromB int
	Code         int
}

// Step is a fully qualified edge, used when enumerating paths.
type Step struct {
	FromA, FromB int
	ToA, ToB     int
	Code         int
}

// Consumed returns how many below-symbols the step emits.
func (s Step) Consumed() int { return s.ToB - s.FromB }
