package alignment_test

import (
	"strings"
	"testing"
)

// BenchmarkBuild_Word measures graph construction on a word-sized pair.
func BenchmarkBuild_Word(b *testing.B) {
	in := newInterner()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := build("CALLED", "kold", 0, 2, in); err != nil {
			b.Fatalf("Build failed: %v", err)
		}
	}
}

// BenchmarkBuild_Long measures a longer pair where the feasibility prune matters.
func BenchmarkBuild_Long(b *testing.B) {
	above := strings.Repeat("abcdefgh", 8)
	below := strings.Repeat("xyzw", 20)
	in := newInterner()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := build(above, below, 0, 3, in); err != nil {
			b.Fatalf("Build failed: %v", err)
		}
	}
}
