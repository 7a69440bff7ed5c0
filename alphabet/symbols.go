package alphabet

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SymbolCodec converts symbols to and from their text form in persisted
// alphabets. Format must reject symbols whose text would be ambiguous.
type SymbolCodec[T any] interface {
	Format(T) (string, error)
	Parse(string) (T, error)
}

// delimiters are reserved by the text format.
const delimiters = ",;\t\r\n"

// StringCodec writes string symbols verbatim. Empty symbols and symbols
// containing a delimiter are rejected.
type StringCodec struct{}

// Format implements SymbolCodec.
func (StringCodec) Format(s string) (string, error) {
	if s == "" || strings.ContainsAny(s, delimiters) {
		return "", fmt.Errorf("%q: %w", s, ErrBadSymbol)
	}

	return s, nil
}

// Parse implements SymbolCodec.
func (StringCodec) Parse(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("empty symbol: %w", ErrMalformed)
	}

	return s, nil
}

// RuneCodec writes printable runes directly and everything else (spaces,
// delimiters, control characters) as U+XXXX.
type RuneCodec struct{}

// Format implements SymbolCodec.
func (RuneCodec) Format(r rune) (string, error) {
	if !utf8.ValidRune(r) {
		return "", fmt.Errorf("rune %d: %w", r, ErrBadSymbol)
	}
	if unicode.IsSpace(r) || !unicode.IsPrint(r) || strings.ContainsRune(delimiters, r) {
		return fmt.Sprintf("U+%04X", r), nil
	}

	return string(r), nil
}

// Parse implements SymbolCodec.
func (RuneCodec) Parse(s string) (rune, error) {
	if hex, ok := strings.CutPrefix(s, "U+"); ok {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, fmt.Errorf("rune %q: %w", s, ErrMalformed)
		}

		return rune(v), nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("rune %q: %w", s, ErrMalformed)
	}

	return r, nil
}
