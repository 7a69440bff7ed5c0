// SPDX-License-Identifier: MIT

// Package baumwelch re-estimates a markov.Core from alignment graphs with
// the Expectation-Maximization algorithm, generalising forward-backward
// from a chain to the alignment DAG. All arithmetic is in natural-log
// space via package logspace.
//
// ⚙️ Per graph (Expectation):
//
//  1. Forward: nodes in row-major order. For destination state d of node v
//     and incoming edge (u, code):
//     emit[d][code] + (initial[d] if u is the root
//     else logsumexp_s(alpha[u][s] + trans[s][d])).
//     alpha[v][d] is the log-sum over incoming edges.
//  2. Backward: nodes in reverse order, beta[terminal][*] = log 1, pushed
//     back along the same edges.
//  3. Likelihood R = logsumexp_s(alpha[terminal][s]).
//  4. Posterior gamma[v][s] = alpha[v][s] + beta[v][s] − R.
//  5. Expected counts per edge for initial, transition and emission.
//
// 🔁 Epoch loop (Trainer.Train):
//
//	Accumulate GraphsPerEpoch graphs (cycling the source), add Smoothing to
//	every count, normalise into new tables, Replace them in the core and
//	Validate. The Inspector runs before the first epoch and after each one;
//	it is the only way to stop training.
//
// Complexity per graph: O(nodes·S² + edges·S²) time, O(nodes·S) scratch.
//
// A Trainer owns its Scratch and must not be used concurrently.
package baumwelch
