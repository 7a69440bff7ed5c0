// SPDX-License-Identifier: MIT

// Package matrix provides the dense, row-major float64 tables that back the
// Markov core (transition S×S and emission S×E log-probability tables).
//
// What & Why:
//
//	HMM parameter tables are read in the innermost loops of Baum-Welch and
//	Viterbi. Dense keeps every row contiguous so hot paths can take a Row()
//	slice once and index it directly, while the public At/Set surface stays
//	bounds-checked and returns sentinel errors instead of panicking.
//
// Complexity:
//
//	NewDense/Filled: O(r*c); At/Set/Row: O(1); Clone: O(r*c).
package matrix
