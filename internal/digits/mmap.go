package digits

import (
	"context"
	"fmt"
	"os"
	"sync"
)

// MmapSource maps the corpus file read-only and slices digits in place.
type MmapSource struct {
	path string

	mu    sync.RWMutex
	file  *os.File
	data  []byte
	start int
	end   int
	ready bool
}

// NewMmapSource returns a source backed by a memory map of path.
func NewMmapSource(path string) *MmapSource {
	return &MmapSource{path: path}
}

// Initialize implements Source.
func (s *MmapSource) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat corpus: %w", err)
	}
	if info.Size() == 0 {
		_ = f.Close()
		return fmt.Errorf("%w: empty file", ErrCorrupt)
	}
	data, err := mapFile(f, int(info.Size()))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to map corpus: %w", err)
	}
	start, end, err := contiguousRegion(data)
	if err != nil {
		if uerr := unmapFile(data); uerr != nil {
			// Best-effort unmap on validation failure.
			_ = uerr
		}
		_ = f.Close()
		return err
	}
	s.file = f
	s.data = data
	s.start = start
	s.end = end
	s.ready = true
	return nil
}

// ReadRange implements Source.
func (s *MmapSource) ReadRange(offset, length int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return "", ErrNotInitialized
	}
	start, end, ok := clip(s.end-s.start, offset, length)
	if !ok {
		return "", nil
	}
	// string() copies, so the result outlives the mapping.
	return string(s.data[s.start+start : s.start+end]), nil
}

// TotalLength implements Source.
func (s *MmapSource) TotalLength() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return 0
	}
	return s.end - s.start
}

// Close implements Source.
func (s *MmapSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	if s.data != nil {
		if err := unmapFile(s.data); err != nil {
			firstErr = fmt.Errorf("failed to unmap corpus: %w", err)
		}
		s.data = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close corpus: %w", err)
		}
		s.file = nil
	}
	s.ready = false
	return firstErr
}
