// SPDX-License-Identifier: MIT

// Package pipeline wires the core packages into one training run:
//
//	corpus → alphabet stage → graphs stage → core stage → Model
//
// Each stage is a stage.Stage: with a store configured, a rerun loads the
// artifacts already produced instead of recomputing them, so an
// interrupted run resumes after its last completed stage. A Model is the
// trained (Alphabet, Core) pair; SaveModel and LoadModel persist it as a
// directory holding alphabet.txt and core.txt.
//
// Symbols carries the SymbolCodecs used for every text artifact, which
// keeps the pipeline generic over the above and below symbol types.
package pipeline
