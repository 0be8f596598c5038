// Package digits exposes the pi digit corpus as addressable character ranges.
//
// Offsets address fractional digits: offset 0 is the first digit after the
// decimal point. Sources are read-only once initialized and safe for
// concurrent readers.
package digits

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned when a source is read before Initialize
	// succeeds or after Close.
	ErrNotInitialized = errors.New("digit source not initialized")
	// ErrCorrupt is returned when the corpus resource is empty or malformed.
	ErrCorrupt = errors.New("digit corpus is corrupt")
)

// Source provides random access to the digit corpus.
type Source interface {
	// Initialize loads or maps the corpus. Calls after the first success are no-ops.
	Initialize(ctx context.Context) error
	// ReadRange returns the digits in [offset, offset+length) clipped to the corpus.
	// Out-of-range offsets and non-positive lengths yield "".
	ReadRange(offset, length int) (string, error)
	// TotalLength returns the number of addressable digits.
	TotalLength() int
	// Close releases resources. It is safe to call more than once.
	Close() error
}

// Kind selects a concrete Source implementation.
type Kind string

const (
	KindMmap   Kind = "mmap"
	KindMemory Kind = "memory"
)

// Options configures Open.
type Options struct {
	Kind           Kind
	Path           string
	FallbackDigits int
}

// DefaultFallbackDigits is the size of the generated corpus used when the
// resource cannot be loaded.
const DefaultFallbackDigits = 10000

// Open builds the configured source wrapped in the fallback policy. The
// returned source still needs Initialize.
func Open(opts Options) (*FallbackSource, error) {
	var primary, recovery Source
	switch opts.Kind {
	case KindMmap, "":
		primary = NewMmapSource(opts.Path)
		recovery = NewFileSource(opts.Path)
	case KindMemory:
		primary = NewFileSource(opts.Path)
	default:
		return nil, fmt.Errorf("unknown corpus source %q (available: mmap, memory)", opts.Kind)
	}
	n := opts.FallbackDigits
	if n <= 0 {
		n = DefaultFallbackDigits
	}
	src := NewFallbackSource(primary, n)
	if recovery != nil {
		src.WithRecovery(recovery)
	}
	return src, nil
}

// clip resolves [offset, offset+length) against a corpus of total digits.
func clip(total, offset, length int) (start, end int, ok bool) {
	if offset < 0 || offset >= total || length <= 0 {
		return 0, 0, false
	}
	end = offset + length
	if end > total || end < offset {
		end = total
	}
	return offset, end, true
}
