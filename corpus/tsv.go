package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Splitter turns one TSV column into a symbol sequence.
type Splitter func(string) []string

// Runes splits a column into its characters.
func Runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}

// Fields splits a column on whitespace, for pre-tokenised data such as
// space-separated phonemes.
func Fields(s string) []string { return strings.Fields(s) }

// SplitterByName maps "runes" and "fields" to their Splitter.
func SplitterByName(name string) (Splitter, error) {
	switch name {
	case "", "runes":
		return Runes, nil
	case "fields", "spaces":
		return Fields, nil
	}

	return nil, fmt.Errorf("corpus: unknown splitter %q", name)
}

// TSV reads pairs from tab-separated lines "above<TAB>below". Blank lines
// and lines starting with '#' are ignored; lines without exactly two
// columns are skipped with a warning.
type TSV struct {
	open   func() (io.ReadCloser, error)
	split  Splitter
	name   string
	logger *slog.Logger
}

// NewTSVFile returns a corpus reading path on every Open.
func NewTSVFile(path string, split Splitter, logger *slog.Logger) *TSV {
	return &TSV{
		open:   func() (io.ReadCloser, error) { return os.Open(path) },
		split:  split,
		name:   path,
		logger: logger,
	}
}

// NewTSV returns a corpus over the text produced by open. open is invoked
// on every Open so the corpus stays restartable.
func NewTSV(open func() (io.ReadCloser, error), split Splitter, logger *slog.Logger) *TSV {
	return &TSV{open: open, split: split, name: "tsv", logger: logger}
}

// Open starts a new pass.
func (t *TSV) Open() (Cursor[string, string], error) {
	rc, err := t.open()
	if err != nil {
		return nil, fmt.Errorf("corpus: open %s: %w", t.name, err)
	}
	split := t.split
	if split == nil {
		split = Runes
	}
	logger := t.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	return &tsvCursor{rc: rc, sc: sc, split: split, name: t.name, logger: logger}, nil
}

type tsvCursor struct {
	rc     io.ReadCloser
	sc     *bufio.Scanner
	split  Splitter
	name   string
	line   int
	logger *slog.Logger
}

func (c *tsvCursor) Next() (Pair[string, string], error) {
	for c.sc.Scan() {
		c.line++
		text := strings.TrimRight(c.sc.Text(), "\r")
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		cols := strings.Split(text, "\t")
		if len(cols) != 2 {
			c.logger.Warn("skipping line without exactly two columns", "file", c.name, "line", c.line)
			continue
		}

		return Pair[string, string]{Above: c.split(cols[0]), Below: c.split(cols[1])}, nil
	}
	if err := c.sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return Pair[string, string]{}, fmt.Errorf("corpus: read %s: %w", c.name, err)
	}

	return Pair[string, string]{}, io.EOF
}

func (c *tsvCursor) Close() error { return c.rc.Close() }
