package markov

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/hmmalign/matrix"
)

// WriteText serialises c in the format described in the package doc.
func WriteText(w io.Writer, c *Core) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d,%d\n", c.states, c.symbols)
	writeRow(bw, c.initial)
	for i := 0; i < c.states; i++ {
		writeRow(bw, c.trans.MustRow(i))
	}
	for i := 0; i < c.states; i++ {
		writeRow(bw, c.emit.MustRow(i))
	}

	return bw.Flush()
}

func writeRow(bw *bufio.Writer, row []float64) {
	for j, v := range row {
		if j > 0 {
			bw.WriteByte(' ')
		}
		bw.WriteString(strconv.FormatFloat(v, 'g', 17, 64))
	}
	bw.WriteByte('\n')
}

// ReadText parses a core written by WriteText. The result is not validated;
// call Validate when the source is untrusted.
func ReadText(r io.Reader) (*Core, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64<<20)

	// 1. Header
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			if s := strings.TrimSpace(sc.Text()); s != "" {
				return s, true
			}
		}
		return "", false
	}
	head, ok := next()
	if !ok {
		return nil, fmt.Errorf("missing header: %w", ErrMalformed)
	}
	parts := strings.Split(head, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("header %q: %w", head, ErrMalformed)
	}
	states, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	symbols, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || states < 1 || symbols < 1 {
		return nil, fmt.Errorf("header %q: %w", head, ErrMalformed)
	}
	c, err := alloc(states, symbols)
	if err != nil {
		return nil, err
	}

	// 2. Rows: initial, S transition rows, S emission rows
	readRow := func(dst []float64, what string) error {
		s, ok := next()
		if !ok {
			return fmt.Errorf("%s: unexpected end of input: %w", what, ErrMalformed)
		}
		fields := strings.Fields(s)
		if len(fields) != len(dst) {
			return fmt.Errorf("line %d: %s has %d values, want %d: %w", line, what, len(fields), len(dst), ErrMalformed)
		}
		for j, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, what, ErrMalformed)
			}
			dst[j] = v
		}
		return nil
	}
	if err := readRow(c.initial, "initial"); err != nil {
		return nil, err
	}
	for _, t := range []struct {
		m    *matrix.Dense
		name string
	}{{c.trans, "transition"}, {c.emit, "emission"}} {
		for i := 0; i < states; i++ {
			if err := readRow(t.m.MustRow(i), fmt.Sprintf("%s[%d]", t.name, i)); err != nil {
				return nil, err
			}
		}
	}
	if extra, ok := next(); ok {
		return nil, fmt.Errorf("line %d: trailing data %q: %w", line, extra, ErrMalformed)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return c, nil
}
