package alphabet

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/hmmalign/alignment"
)

// WriteText serialises al: the header line followed by one record per code
// in code order, "id;above;below1,below2,…;".
func WriteText[A, B comparable](w io.Writer, al *Alphabet[A, B], ac SymbolCodec[A], bc SymbolCodec[B]) error {
	bw := bufio.NewWriter(w)
	h := al.Header()
	fmt.Fprintf(bw, "%d,%d,%d\n", h.MaxAbove, h.MaxBelow, h.MaxEdges)

	below := make([]string, 0, al.MaxBelow())
	for code, ch := range al.chunks {
		above, err := ac.Format(ch.Above)
		if err != nil {
			return err
		}
		below = below[:0]
		for _, s := range ch.Below {
			txt, err := bc.Format(s)
			if err != nil {
				return err
			}
			below = append(below, txt)
		}
		fmt.Fprintf(bw, "%d;%s;%s;\n", code, above, strings.Join(below, ","))
	}

	return bw.Flush()
}

// ReadText parses an alphabet written by WriteText, or the legacy form
// "id,above,below…" in which fields may be padded with spaces. Ids must run
// 0,1,2,… in order and chunks must be distinct.
func ReadText[A, B comparable](r io.Reader, ac SymbolCodec[A], bc SymbolCodec[B]) (*Alphabet[A, B], error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	al := New[A, B]()
	line := 0
	seenHeader := false
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if !seenHeader {
			h, err := parseHeader(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			al.SetHeader(h)
			seenHeader = true
			continue
		}

		var (
			id    int
			above A
			below []B
			err   error
		)
		if strings.Contains(text, ";") {
			id, above, below, err = parseRecord(text, ac, bc)
		} else {
			id, above, below, err = parseLegacy(text, ac, bc)
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if id != al.Len() {
			return nil, fmt.Errorf("line %d: id %d out of sequence (want %d): %w", line, id, al.Len(), ErrMalformed)
		}
		if code := al.Add(above, below); code != id {
			return nil, fmt.Errorf("line %d: duplicate chunk of id %d: %w", line, code, ErrMalformed)
		}
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if !seenHeader {
		return nil, fmt.Errorf("missing header: %w", ErrMalformed)
	}

	return al, nil
}

func parseHeader(s string) (alignment.Header, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return alignment.Header{}, fmt.Errorf("header %q: %w", s, ErrMalformed)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return alignment.Header{}, fmt.Errorf("header %q: %w", s, ErrMalformed)
		}
		v[i] = n
	}

	return alignment.Header{MaxAbove: v[0], MaxBelow: v[1], MaxEdges: v[2]}, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("id %q: %w", s, ErrMalformed)
	}

	return id, nil
}

func parseRecord[A, B comparable](s string, ac SymbolCodec[A], bc SymbolCodec[B]) (int, A, []B, error) {
	var zero A
	parts := strings.Split(s, ";")
	if len(parts) == 4 && parts[3] == "" {
		parts = parts[:3]
	}
	if len(parts) != 3 {
		return 0, zero, nil, fmt.Errorf("record %q: %w", s, ErrMalformed)
	}
	id, err := parseID(parts[0])
	if err != nil {
		return 0, zero, nil, err
	}
	// One-to-many: the above field holds exactly one symbol.
	if strings.Contains(parts[1], ",") {
		return 0, zero, nil, fmt.Errorf("record %q: multiple above symbols: %w", s, ErrMalformed)
	}
	above, err := ac.Parse(parts[1])
	if err != nil {
		return 0, zero, nil, err
	}
	var below []B
	if parts[2] != "" {
		below, err = parseSymbols(strings.Split(parts[2], ","), bc)
		if err != nil {
			return 0, zero, nil, err
		}
	}

	return id, above, below, nil
}

func parseLegacy[A, B comparable](s string, ac SymbolCodec[A], bc SymbolCodec[B]) (int, A, []B, error) {
	var zero A
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return 0, zero, nil, fmt.Errorf("record %q: %w", s, ErrMalformed)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	id, err := parseID(parts[0])
	if err != nil {
		return 0, zero, nil, err
	}
	above, err := ac.Parse(parts[1])
	if err != nil {
		return 0, zero, nil, err
	}
	rest := parts[2:]
	if len(rest) == 1 && rest[0] == "" {
		rest = nil
	}
	below, err := parseSymbols(rest, bc)
	if err != nil {
		return 0, zero, nil, err
	}

	return id, above, below, nil
}

func parseSymbols[B any](fields []string, bc SymbolCodec[B]) ([]B, error) {
	out := make([]B, 0, len(fields))
	for _, f := range fields {
		v, err := bc.Parse(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}

	return out, nil
}
