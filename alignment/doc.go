// SPDX-License-Identifier: MIT

// Package alignment builds the alignment graph of one (above, below)
// sequence pair: the DAG of every admissible way to cut the pair into
// chunks of exactly one above-symbol and between MinBelow and MaxBelow
// below-symbols.
//
// 🚀 Grid model
//
//	Node (a,b) means "a above-symbols and b below-symbols consumed". Nodes
//	live in a flat arena indexed row-major by a*(|below|+1)+b, so the
//	forward/backward passes of the trainer are plain nested loops.
//
//	  b →   0    1    2    3
//	a=0   (root)
//	a=1         ●────●
//	a=2                   (terminal)
//
//	Each retained node owns its incoming edges (source_a, source_b, code).
//	Only nodes that lie on some root→terminal path survive construction.
//
// ✨ Key features:
//   - feasibility prune: a split is skipped when the remaining above-symbols
//     could not consume the remaining below-symbols under the bounds
//   - encoder-driven: a chunk the encoder rejects is simply not an edge
//   - deterministic: identical inputs give an identical edge set and order
//   - text codec for caching batches of graphs
//
// Complexity:
//
//   - Time:   O(|above| · |below| · (MaxBelow − MinBelow + 1)) encoder calls
//   - Memory: O(|above| · |below|) nodes plus the surviving edges
package alignment
