// SPDX-License-Identifier: MIT

// Package markov holds the parameters of a discrete hidden Markov model in
// natural-log space: an initial distribution over S states, an S×S
// transition table and an S×E emission table over E alphabet codes.
//
// Every probability is stored as its natural log; log(0) is represented by
// logspace.LogZero so that tables stay finite and comparable. A Core is
// mutated only through Replace, which the Baum-Welch trainer calls once per
// epoch, and is read-only afterwards.
//
// Text format (WriteText/ReadText):
//
//	states,symbols
//	initial[0] … initial[S-1]
//	transition row 0
//	…
//	transition row S-1
//	emission row 0
//	…
//	emission row S-1
//
// Values are space-separated log-probabilities printed with %.17g, so a
// round trip is exact.
package markov
