package digits

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/verte-zerg/pidigits/internal/generator"
)

// FallbackSource initializes a primary source and, when that fails,
// substitutes a generated corpus of pi digits so callers always observe a
// non-empty, well-formed corpus. The failure stays visible via Degraded.
// A primary rejected as ErrCorrupt is first retried through the recovery
// source, if one is set.
type FallbackSource struct {
	primary        Source
	recovery       Source
	fallbackDigits int

	mu     sync.RWMutex
	active Source
	cause  error
}

// NewFallbackSource wraps primary with a generated fallback of n digits.
func NewFallbackSource(primary Source, n int) *FallbackSource {
	return &FallbackSource{primary: primary, fallbackDigits: n}
}

// WithRecovery sets the source tried when the primary reports ErrCorrupt.
func (s *FallbackSource) WithRecovery(src Source) *FallbackSource {
	s.recovery = src
	return s
}

// Initialize implements Source.
func (s *FallbackSource) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil
	}
	err := s.primary.Initialize(ctx)
	if err == nil {
		s.active = s.primary
		s.cause = nil
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if s.recovery != nil && errors.Is(err, ErrCorrupt) {
		rerr := s.recovery.Initialize(ctx)
		if rerr == nil {
			s.active = s.recovery
			s.cause = nil
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = fmt.Errorf("%w (recovery: %v)", err, rerr)
	}
	fb := NewMemorySource(generator.PiDigits(s.fallbackDigits))
	if ferr := fb.Initialize(ctx); ferr != nil {
		return fmt.Errorf("failed to initialize fallback corpus: %w (primary: %v)", ferr, err)
	}
	s.active = fb
	s.cause = err
	return nil
}

// Degraded returns the primary failure when the fallback corpus is in use.
func (s *FallbackSource) Degraded() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cause
}

// ReadRange implements Source.
func (s *FallbackSource) ReadRange(offset, length int) (string, error) {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == nil {
		return "", ErrNotInitialized
	}
	return active.ReadRange(offset, length)
}

// TotalLength implements Source.
func (s *FallbackSource) TotalLength() int {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == nil {
		return 0
	}
	return active.TotalLength()
}

// Close implements Source.
func (s *FallbackSource) Close() error {
	s.mu.Lock()
	active := s.active
	s.active = nil
	s.mu.Unlock()
	var firstErr error
	if active != nil && active != s.primary {
		firstErr = active.Close()
	}
	if err := s.primary.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if s.recovery != nil && active != s.recovery {
		if err := s.recovery.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
