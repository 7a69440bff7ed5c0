// SPDX-License-Identifier: MIT

// Package alphabet maintains the dense, bidirectional mapping between chunks
// and integer codes, and builds that mapping from a training corpus.
//
// 🚀 What is a chunk?
//
//	A chunk is one above-symbol together with the (possibly empty) run of
//	below-symbols it emits. "C" → "k", "A" → "o", "LL" is not a chunk since
//	the above side is a single symbol, but "L" → "" is.
//
// 🔍 Lookup
//
//	Encode walks a per-above-symbol trie keyed by below-symbols, so encoding
//	a chunk costs O(len(below)) map lookups and never allocates. Decode is a
//	slice index.
//
// 🏗 Building
//
//	Build scans every corpus pair with a permissive interner, records each
//	chunk on a surviving alignment edge as a candidate, and then selects a
//	subset according to the Strategy:
//
//	  • StrategyComplete: every candidate.
//	  • StrategyGreedy:   candidates by descending edge frequency until the
//	                      fraction of unalignable pairs drops to Threshold,
//	                      then (optionally) shrink from the least frequent.
//	  • StrategyPrebuilt: keep a caller-supplied alphabet.
//
// Complexity:
//
//	Encode:  O(len(below))
//	Decode:  O(1)
//	Candidates: O(Σ n·m·(hi−lo+1)) encoder calls, parallel over pairs.
//	Greedy:  O(K/k · G) reachability passes, K candidates, step k = 1%.
//
// 💾 Persistence
//
//	WriteText/ReadText use a line format: a header "maxAbove,maxBelow,
//	maxEdges", then one record per code "id;above;below,…;". The older
//	comma-only form "id,above,below…" is read for backward compatibility.
package alphabet
