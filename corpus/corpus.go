package corpus

import (
	"errors"
	"io"
)

// ErrNilCorpus indicates a nil Corpus was passed where one is required.
var ErrNilCorpus = errors.New("corpus: corpus is nil")

// Pair is one training example: the above-sequence and the below-sequence
// it transduces to.
type Pair[A, B any] struct {
	Above []A
	Below []B
}

// Cursor iterates one pass over a corpus.
type Cursor[A, B any] interface {
	// Next returns the next pair, or io.EOF when the pass is complete.
	Next() (Pair[A, B], error)
	// Close releases resources held by the cursor.
	Close() error
}

// Corpus is a restartable sequence of pairs.
type Corpus[A, B any] interface {
	Open() (Cursor[A, B], error)
}

// Slice is an in-memory corpus.
type Slice[A, B any] []Pair[A, B]

// Open returns a cursor over the slice.
func (s Slice[A, B]) Open() (Cursor[A, B], error) {
	return &sliceCursor[A, B]{pairs: s}, nil
}

type sliceCursor[A, B any] struct {
	pairs []Pair[A, B]
	pos   int
}

func (c *sliceCursor[A, B]) Next() (Pair[A, B], error) {
	if c.pos >= len(c.pairs) {
		return Pair[A, B]{}, io.EOF
	}
	p := c.pairs[c.pos]
	c.pos++

	return p, nil
}

func (c *sliceCursor[A, B]) Close() error { return nil }

// ReadAll drains one pass of c into memory.
func ReadAll[A, B any](c Corpus[A, B]) ([]Pair[A, B], error) {
	if c == nil {
		return nil, ErrNilCorpus
	}
	cur, err := c.Open()
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []Pair[A, B]
	for {
		p, err := cur.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
}

// Filter wraps c so that only pairs satisfying keep are produced.
func Filter[A, B any](c Corpus[A, B], keep func(Pair[A, B]) bool) Corpus[A, B] {
	return filtered[A, B]{inner: c, keep: keep}
}

type filtered[A, B any] struct {
	inner Corpus[A, B]
	keep  func(Pair[A, B]) bool
}

func (f filtered[A, B]) Open() (Cursor[A, B], error) {
	cur, err := f.inner.Open()
	if err != nil {
		return nil, err
	}

	return &filteredCursor[A, B]{Cursor: cur, keep: f.keep}, nil
}

type filteredCursor[A, B any] struct {
	Cursor[A, B]
	keep func(Pair[A, B]) bool
}

func (c *filteredCursor[A, B]) Next() (Pair[A, B], error) {
	for {
		p, err := c.Cursor.Next()
		if err != nil || c.keep(p) {
			return p, err
		}
	}
}
