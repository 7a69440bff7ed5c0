package stage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	// ErrBadName indicates an empty stage name or one containing a path
	// separator.
	ErrBadName = errors.New("stage: invalid name")

	// ErrCorrupt indicates a cached artifact that could not be decoded.
	ErrCorrupt = errors.New("stage: cached artifact is corrupt")

	// ErrNilCodec indicates a Stage without a Codec.
	ErrNilCodec = errors.New("stage: codec is nil")
)

// Codec converts a stage value to and from bytes.
type Codec[T any] interface {
	Encode(w io.Writer, v T) error
	Decode(r io.Reader) (T, error)
}

// CodecFuncs adapts a pair of functions to Codec.
type CodecFuncs[T any] struct {
	EncodeFunc func(io.Writer, T) error
	DecodeFunc func(io.Reader) (T, error)
}

// Encode implements Codec.
func (c CodecFuncs[T]) Encode(w io.Writer, v T) error { return c.EncodeFunc(w, v) }

// Decode implements Codec.
func (c CodecFuncs[T]) Decode(r io.Reader) (T, error) { return c.DecodeFunc(r) }

// Store persists stage artifacts by name.
type Store interface {
	// Load returns the artifact and true, or false when none is stored.
	Load(ctx context.Context, name string) ([]byte, bool, error)
	Save(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}

// Stage is one cacheable step.
type Stage[T any] struct {
	Name   string
	Codec  Codec[T]
	Logger *slog.Logger
}

// ValidateName reports ErrBadName for names unusable as keys or file names.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%q: %w", name, ErrBadName)
	}

	return nil
}

// Run returns the cached value when store holds one (cached == true);
// otherwise it calls compute and saves the result. A nil store disables
// caching.
func (s Stage[T]) Run(ctx context.Context, store Store, compute func(context.Context) (T, error)) (value T, cached bool, err error) {
	// 1. Validate
	if err := ValidateName(s.Name); err != nil {
		return value, false, err
	}
	if s.Codec == nil {
		return value, false, ErrNilCodec
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	// 2. Cache lookup
	if store != nil {
		data, ok, err := store.Load(ctx, s.Name)
		if err != nil {
			return value, false, fmt.Errorf("stage %s: load: %w", s.Name, err)
		}
		if ok {
			v, err := s.Codec.Decode(bytes.NewReader(data))
			if err != nil {
				return value, false, fmt.Errorf("stage %s: %w: %w", s.Name, ErrCorrupt, err)
			}
			logger.Info("stage loaded from cache", "stage", s.Name, "bytes", len(data))
			return v, true, nil
		}
	}

	// 3. Compute and persist
	logger.Info("stage computing", "stage", s.Name)
	v, err := compute(ctx)
	if err != nil {
		return value, false, fmt.Errorf("stage %s: %w", s.Name, err)
	}
	if store == nil {
		return v, false, nil
	}
	var buf bytes.Buffer
	if err := s.Codec.Encode(&buf, v); err != nil {
		return value, false, fmt.Errorf("stage %s: encode: %w", s.Name, err)
	}
	if err := store.Save(ctx, s.Name, buf.Bytes()); err != nil {
		return value, false, fmt.Errorf("stage %s: save: %w", s.Name, err)
	}
	logger.Debug("stage persisted", "stage", s.Name, "bytes", buf.Len())

	return v, false, nil
}
