// SPDX-License-Identifier: MIT

// Package viterbi decodes the most probable below-sequence for an
// above-sequence under a trained (alphabet, core) pair.
//
// Decoder (state Viterbi):
//
//	Decoding commits to exactly one chunk per above-symbol and one state
//	transition per position. For every state s and above-symbol x the
//	decoder caches, at construction time,
//
//	  mass[s][x] = logsumexp over chunks c of x of emission[s][c]
//	  best[s][x] = argmax over chunks c of x of emission[s][c]
//
//	so that one DP step costs O(S²) regardless of alphabet size:
//
//	  score[0][s] = initial[s] + mass[s][above[0]]
//	  score[t][s] = mass[s][above[t]] + max_s' (score[t-1][s'] + trans[s'][s])
//
//	After the last position the best final state is backtracked and the
//	cached best chunk of every visited (state, symbol) is concatenated.
//
// Unknown above-symbols:
//
//	UnknownFail:     ErrUnknownSymbol.
//	UnknownCertain:  emission treated as certain; the position is scored
//	                  by transitions only and emits nothing (default).
//	UnknownAncestor: emission borrowed from the known members of
//	                  Options.Ancestors(x), averaged in probability space.
//
// ChunkDecoder (chunk Viterbi):
//
//	DP states are alphabet codes instead of HMM states. The core is folded
//	into a first-order model over chunks,
//
//	  init(c)   = logsumexp_s initial[s] + emission[s][c]
//	  T(c', c)  = logsumexp_s pred(s | c') + emission[s][c]
//	  pred(s|c')= logsumexp_s' post(s' | c') + trans[s'][s]
//
//	where post(·|c') is the emission column of c' normalised over states.
//	Candidates at position t are the chunks whose above-symbol is above[t].
//
// Complexity:
//
//	Decoder:      O(n·S²) time, O(n·S) memory.
//	ChunkDecoder: O(n·k²) time with k chunks per symbol, O(K²) model.
//
// Both decoders are immutable after construction and safe for concurrent use.
package viterbi
