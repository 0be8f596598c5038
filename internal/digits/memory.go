package digits

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// MemorySource holds the whole corpus in memory.
type MemorySource struct {
	load func() (string, error)

	mu    sync.RWMutex
	data  string
	ready bool
}

// NewMemorySource serves a fixed digit string.
func NewMemorySource(digits string) *MemorySource {
	return &MemorySource{load: func() (string, error) {
		return normalize([]byte(digits))
	}}
}

// NewFileSource reads and normalizes the corpus file at path on Initialize.
func NewFileSource(path string) *MemorySource {
	return &MemorySource{load: func() (string, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read corpus: %w", err)
		}
		return normalize(raw)
	}}
}

// Initialize implements Source.
func (s *MemorySource) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := s.load()
	if err != nil {
		return err
	}
	s.data = data
	s.ready = true
	return nil
}

// ReadRange implements Source.
func (s *MemorySource) ReadRange(offset, length int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return "", ErrNotInitialized
	}
	start, end, ok := clip(len(s.data), offset, length)
	if !ok {
		return "", nil
	}
	return s.data[start:end], nil
}

// TotalLength implements Source.
func (s *MemorySource) TotalLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Close implements Source.
func (s *MemorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = ""
	s.ready = false
	return nil
}
