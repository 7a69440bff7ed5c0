// SPDX-License-Identifier: MIT

// Package hmmalign learns one-to-many sequence transductions, such as
// spelling to pronunciation, with a hidden Markov model trained on
// unaligned pairs.
//
// Every above-symbol emits a short run of below-symbols (a chunk). The
// system never sees the correct chunking: it builds, per training pair,
// the DAG of every admissible chunking and lets Baum-Welch weigh them.
//
// Data flow:
//
//	corpus ─► alphabet ─► alignment graphs ─► baumwelch ─► markov.Core
//	                 │                                          │
//	                 └──────────────► viterbi ◄─────────────────┘
//
// Packages:
//
//	logspace/  natural-log arithmetic with a finite log(0) sentinel
//	matrix/    dense row-major float tables
//	corpus/    restartable sources of sequence pairs (slice, TSV)
//	alignment/ the alignment graph factory and its text codec
//	alphabet/  chunk alphabet, candidate pool, greedy growth, shrink
//	markov/    initial, transition and emission log-probabilities
//	baumwelch/ EM trainer with epoch inspectors
//	viterbi/   state and chunk Viterbi decoders, unknown-symbol policies
//	stage/     load-or-compute checkpoints (memory, directory, SQLite)
//	metrics/   Prometheus collectors
//	config/    YAML configuration
//	logging/   slog construction
//	pipeline/  the end-to-end training run and model files
//
// The hmmalign command under cmd/ drives the pipeline:
//
//	hmmalign train  --corpus words.tsv --out model/
//	hmmalign decode --model model/ CALLED
package hmmalign
