package alphabet

import (
	"slices"

	"github.com/katalvlaran/hmmalign/alignment"
)

// Chunk is one alphabet entry.
type Chunk[A, B comparable] struct {
	Above A
	Below []B
}

// Equal reports whether two chunks carry the same symbols.
func (c Chunk[A, B]) Equal(o Chunk[A, B]) bool {
	return c.Above == o.Above && slices.Equal(c.Below, o.Below)
}

type trieNode[B comparable] struct {
	code int // -1 when no chunk ends here
	next map[B]*trieNode[B]
}

func newTrieNode[B comparable]() *trieNode[B] {
	return &trieNode[B]{code: -1}
}

// Alphabet is a dense chunk ↔ code mapping. Codes are assigned in insertion
// order starting at 0. The zero value is not usable; call New.
type Alphabet[A, B comparable] struct {
	roots   map[A]*trieNode[B]
	chunks  []Chunk[A, B]
	symbols []A         // above-symbols in first-seen order
	byAbove map[A][]int // codes per above-symbol, ascending
	minB    int
	maxB    int
	header  alignment.Header
}

// New returns an empty alphabet.
func New[A, B comparable]() *Alphabet[A, B] {
	return &Alphabet[A, B]{
		roots:   make(map[A]*trieNode[B]),
		byAbove: make(map[A][]int),
	}
}

// Add interns the chunk and returns its code. Adding an existing chunk
// returns the existing code. below is copied.
func (al *Alphabet[A, B]) Add(above A, below []B) int {
	node, ok := al.roots[above]
	if !ok {
		node = newTrieNode[B]()
		al.roots[above] = node
		al.symbols = append(al.symbols, above)
	}
	for _, s := range below {
		nx, ok := node.next[s]
		if !ok {
			if node.next == nil {
				node.next = make(map[B]*trieNode[B])
			}
			nx = newTrieNode[B]()
			node.next[s] = nx
		}
		node = nx
	}
	if node.code >= 0 {
		return node.code
	}

	code := len(al.chunks)
	node.code = code
	al.chunks = append(al.chunks, Chunk[A, B]{Above: above, Below: slices.Clone(below)})
	al.byAbove[above] = append(al.byAbove[above], code)
	if code == 0 || len(below) < al.minB {
		al.minB = len(below)
	}
	if code == 0 || len(below) > al.maxB {
		al.maxB = len(below)
	}

	return code
}

// Encode returns the code of the chunk, or ok == false if it is absent.
func (al *Alphabet[A, B]) Encode(above A, below []B) (int, bool) {
	node, ok := al.roots[above]
	if !ok {
		return 0, false
	}
	for _, s := range below {
		if node = node.next[s]; node == nil {
			return 0, false
		}
	}
	if node.code < 0 {
		return 0, false
	}

	return node.code, true
}

// Encoder adapts Encode for alignment.Build.
func (al *Alphabet[A, B]) Encoder() alignment.Encoder[A, B] {
	return al.Encode
}

// Interner returns a permissive encoder that adds every chunk it is asked
// about.
func (al *Alphabet[A, B]) Interner() alignment.Encoder[A, B] {
	return func(above A, below []B) (int, bool) {
		return al.Add(above, below), true
	}
}

// Decode returns the chunk for code. The returned Below slice is shared
// with the alphabet and must not be modified.
func (al *Alphabet[A, B]) Decode(code int) (Chunk[A, B], bool) {
	if code < 0 || code >= len(al.chunks) {
		return Chunk[A, B]{}, false
	}

	return al.chunks[code], true
}

// Len returns the number of codes.
func (al *Alphabet[A, B]) Len() int { return len(al.chunks) }

// MinBelow returns the shortest below-length of any chunk (0 if empty).
func (al *Alphabet[A, B]) MinBelow() int { return al.minB }

// MaxBelow returns the longest below-length of any chunk (0 if empty).
func (al *Alphabet[A, B]) MaxBelow() int { return al.maxB }

// Bounds returns the alignment bounds implied by the stored chunks.
func (al *Alphabet[A, B]) Bounds() alignment.Bounds {
	return alignment.Bounds{MinBelow: al.minB, MaxBelow: al.maxB}
}

// Symbols returns the above-symbols in first-seen order.
func (al *Alphabet[A, B]) Symbols() []A { return slices.Clone(al.symbols) }

// HasSymbol reports whether any chunk starts with above.
func (al *Alphabet[A, B]) HasSymbol(above A) bool {
	_, ok := al.byAbove[above]
	return ok
}

// CodesFor returns the codes whose above-symbol is above, ascending.
func (al *Alphabet[A, B]) CodesFor(above A) []int {
	return slices.Clone(al.byAbove[above])
}

// Header returns the graph-batch header recorded with the alphabet.
func (al *Alphabet[A, B]) Header() alignment.Header { return al.header }

// SetHeader records the maximum dimensions seen while building.
func (al *Alphabet[A, B]) SetHeader(h alignment.Header) { al.header = h }

// Equal reports whether both alphabets map the same chunks to the same
// codes.
func (al *Alphabet[A, B]) Equal(o *Alphabet[A, B]) bool {
	if al.Len() != o.Len() {
		return false
	}
	for i := range al.chunks {
		if !al.chunks[i].Equal(o.chunks[i]) {
			return false
		}
	}

	return true
}
