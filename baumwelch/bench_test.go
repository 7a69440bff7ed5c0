package baumwelch_test

import (
	"testing"

	"github.com/katalvlaran/hmmalign/alignment"
	"github.com/katalvlaran/hmmalign/baumwelch"
)

// BenchmarkEpoch measures one epoch over a small spelling corpus.
func BenchmarkEpoch(b *testing.B) {
	al, graphs := interned(b, alignment.DefaultBounds(), spelling...)
	core := randomCore(b, 4, al.Len(), 1)
	tr, err := baumwelch.New(baumwelch.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	src := baumwelch.SliceSource(graphs)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tr.Train(core, src, baumwelch.StopAfter(1)); err != nil {
			b.Fatal(err)
		}
	}
}
