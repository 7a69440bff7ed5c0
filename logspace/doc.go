// SPDX-License-Identifier: MIT

// Package logspace provides the natural-log arithmetic used by the Markov
// core, the Baum-Welch trainer and the Viterbi decoders.
//
// 🚀 Why a sentinel?
//
//	Probabilities multiply into vanishingly small numbers long before an
//	alignment graph is fully traversed, so every table in hmmalign stores
//	ln(p). ln(0) is represented by the finite constant LogZero instead of
//	-Inf: the value stays comparable with ordinary log-probabilities,
//	survives text round-trips, and never produces NaN when two "zeros" are
//	subtracted.
//
// ✨ Primitives:
//   - Eln / Eexp       : ln and exp that honour the sentinel
//   - Product / Div    : addition and subtraction in log space
//   - Sum / SumSlice   : numerically stable log-sum-exp (the running
//     maximum is factored out before exponentiating)
//
// Every function is total: none of them returns NaN or ±Inf for inputs that
// are themselves finite or LogZero.
package logspace
