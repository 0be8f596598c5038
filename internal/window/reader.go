// Package window answers arbitrary offset/length digit queries through a
// chunk cache layered over a digit source.
package window

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/verte-zerg/pidigits/internal/chunkcache"
	"github.com/verte-zerg/pidigits/internal/digits"
	"github.com/verte-zerg/pidigits/internal/model"
)

const (
	// DefaultChunkSize is the number of digits per cached chunk.
	DefaultChunkSize = 5000
	// DefaultCacheCapacity is the number of chunks kept in memory.
	DefaultCacheCapacity = 50
	// DefaultPreloadWindow is the span warmed around a scroll position.
	DefaultPreloadWindow = 10000

	defaultPreloadConcurrency = 4
)

// Reader serves digit windows using chunk-granularity caching.
type Reader struct {
	src            digits.Source
	cache          chunkcache.Cache
	chunkSize      int
	preloadLimit   int
	onPreloadError func(error)

	loads    singleflight.Group
	preloads sync.WaitGroup

	mu          sync.Mutex
	initialized bool
	closed      bool
}

// Option configures a Reader.
type Option func(*Reader)

// WithChunkSize overrides the chunk size.
func WithChunkSize(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// WithPreloadConcurrency bounds the number of chunks loaded in parallel by a preload.
func WithPreloadConcurrency(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.preloadLimit = n
		}
	}
}

// WithPreloadErrorHandler receives preload failures, which are otherwise dropped.
func WithPreloadErrorHandler(fn func(error)) Option {
	return func(r *Reader) {
		r.onPreloadError = fn
	}
}

// New returns a Reader over src using cache for chunk storage.
func New(src digits.Source, cache chunkcache.Cache, opts ...Option) *Reader {
	r := &Reader{
		src:          src,
		cache:        cache,
		chunkSize:    DefaultChunkSize,
		preloadLimit: defaultPreloadConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Initialize initializes the underlying source once.
func (r *Reader) Initialize(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return digits.ErrNotInitialized
	}
	if r.initialized {
		return nil
	}
	if err := r.src.Initialize(ctx); err != nil {
		return err
	}
	r.initialized = true
	return nil
}

func (r *Reader) ensureInitialized(ctx context.Context) error {
	r.mu.Lock()
	ready := r.initialized && !r.closed
	r.mu.Unlock()
	if ready {
		return nil
	}
	return r.Initialize(ctx)
}

// ChunkSize returns the configured chunk size.
func (r *Reader) ChunkSize() int { return r.chunkSize }

// ReadDigits returns up to length digits starting at offset, clipped at the
// end of the corpus. Out-of-range offsets and non-positive lengths yield "".
func (r *Reader) ReadDigits(ctx context.Context, offset, length int) (string, error) {
	if err := r.ensureInitialized(ctx); err != nil {
		return "", err
	}
	total := r.src.TotalLength()
	if offset < 0 || offset >= total || length <= 0 {
		return "", nil
	}
	if length > total-offset {
		length = total - offset
	}

	size := r.chunkSize
	startChunk := offset / size
	endChunk := (offset + length - 1) / size
	startPos := offset % size

	if startChunk == endChunk {
		chunk, err := r.chunk(ctx, startChunk)
		if err != nil {
			return "", err
		}
		return slice(chunk, startPos, startPos+length), nil
	}

	var b strings.Builder
	b.Grow(length)
	for idx := startChunk; idx <= endChunk; idx++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		chunk, err := r.chunk(ctx, idx)
		if err != nil {
			return "", err
		}
		switch idx {
		case startChunk:
			b.WriteString(slice(chunk, startPos, len(chunk)))
		case endChunk:
			// An end offset on a chunk boundary means the whole last chunk, not none of it.
			endPos := (offset + length) % size
			if endPos == 0 {
				endPos = size
			}
			b.WriteString(slice(chunk, 0, endPos))
		default:
			b.WriteString(chunk)
		}
	}
	return b.String(), nil
}

func slice(chunk string, from, to int) string {
	if to > len(chunk) {
		to = len(chunk)
	}
	if from >= to {
		return ""
	}
	return chunk[from:to]
}

// chunk returns a chunk from the cache, loading it from the source on a miss.
// Concurrent misses for the same index share one load, which does not depend
// on any single caller's context.
func (r *Reader) chunk(ctx context.Context, index int) (string, error) {
	if chunk, ok := r.cache.Get(index); ok {
		return chunk, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err, _ := r.loads.Do(strconv.Itoa(index), func() (any, error) {
		chunk, err := r.src.ReadRange(index*r.chunkSize, r.chunkSize)
		if err != nil {
			return "", err
		}
		if chunk != "" {
			r.cache.Put(index, chunk)
		}
		return chunk, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// TotalDigits returns the corpus length.
func (r *Reader) TotalDigits() int {
	return r.src.TotalLength()
}

// CacheStats reports chunk cache effectiveness.
func (r *Reader) CacheStats() model.CacheStats {
	return r.cache.Stats()
}

// ClearCache drops every cached chunk.
func (r *Reader) ClearCache() {
	r.cache.Clear()
}

// Close waits for outstanding preloads, clears the cache and closes the source.
func (r *Reader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.preloads.Wait()
	r.cache.Clear()
	return r.src.Close()
}
