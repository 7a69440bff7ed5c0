package alignment_test

import (
	"github.com/katalvlaran/hmmalign/alignment"
)

// interner is a permissive encoder that assigns codes in first-query order.
type interner struct {
	codes map[string]int
	deny  func(a rune, below []rune) bool
}

func newInterner() *interner { return &interner{codes: map[string]int{}} }

func (in *interner) encode(a rune, below []rune) (int, bool) {
	if in.deny != nil && in.deny(a, below) {
		return 0, false
	}
	key := string(a) + ":" + string(below)
	c, ok := in.codes[key]
	if !ok {
		c = len(in.codes)
		in.codes[key] = c
	}
	return c, true
}

func (in *interner) encoder() alignment.Encoder[rune, rune] { return in.encode }

func build(above, below string, lo, hi int, in *interner) (*alignment.Graph, error) {
	return alignment.Build([]rune(above), []rune(below), alignment.Bounds{MinBelow: lo, MaxBelow: hi}, in.encoder())
}
