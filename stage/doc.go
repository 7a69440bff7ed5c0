// SPDX-License-Identifier: MIT

// Package stage runs expensive pipeline steps at most once per cache:
// load the persisted artifact if present, otherwise compute it and persist
// it.
//
// A Stage is parameterised only by its name and a Codec. The same
// abstraction serves the alphabet, the graph batch and the trained core;
// only the codec differs. Stores are interchangeable:
//
//	SQLiteStore: one row per stage in a SQLite file (WAL mode), tagged
//	             with the run id that produced it.
//	DirStore:    one file per stage in a directory.
//	MemoryStore: process-local map, for tests.
//
// A cached artifact that fails to decode is reported, never recomputed in
// place: it indicates corruption or a stale format and must be removed
// explicitly.
package stage
