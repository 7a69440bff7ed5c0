// SPDX-License-Identifier: MIT

// Package corpus provides restartable sources of (above, below) training
// pairs.
//
// A Corpus can be opened any number of times; each Open returns a fresh
// Cursor positioned at the first pair. Cursors are synchronous pulls that
// return io.EOF after the last pair. The Baum-Welch trainer relies on this to
// cycle through a corpus indefinitely, and the alphabet builder relies on it
// to scan a corpus more than once.
package corpus
