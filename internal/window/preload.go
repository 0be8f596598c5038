package window

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PreloadWindow warms every chunk overlapping
// [center-size/2, center+size/2) and blocks until done. Failures never
// propagate; they go to the preload error handler when one is set.
func (r *Reader) PreloadWindow(ctx context.Context, center, size int) {
	if err := r.ensureInitialized(ctx); err != nil {
		r.reportPreload(err)
		return
	}
	r.preload(ctx, center, size)
}

func (r *Reader) preload(ctx context.Context, center, size int) {
	if size <= 0 {
		size = DefaultPreloadWindow
	}
	total := r.src.TotalLength()
	start := max(center-size/2, 0)
	end := min(center+size/2, total)
	if end <= start {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.preloadLimit)
	for idx := start / r.chunkSize; idx <= (end-1)/r.chunkSize; idx++ {
		if ctx.Err() != nil {
			break
		}
		if r.cache.Contains(idx) {
			continue
		}
		g.Go(func() error {
			if _, err := r.chunk(gctx, idx); err != nil {
				r.reportPreload(err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// PreloadWindowAsync runs PreloadWindow in the background. Work queued
// before Close still runs to completion; Close waits for it.
func (r *Reader) PreloadWindowAsync(ctx context.Context, center, size int) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.preloads.Add(1)
	r.mu.Unlock()
	go func() {
		defer r.preloads.Done()
		ok, err := r.initializeQueued(ctx)
		if err != nil {
			r.reportPreload(err)
			return
		}
		if ok {
			r.preload(ctx, center, size)
		}
	}()
}

// initializeQueued prepares the source for preload work registered before
// Close. The source stays open until that work is done, so closed only
// matters when the source was never initialized.
func (r *Reader) initializeQueued(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.initialized {
		return true, nil
	}
	if r.closed {
		return false, nil
	}
	if err := r.src.Initialize(ctx); err != nil {
		return false, err
	}
	r.initialized = true
	return true, nil
}

func (r *Reader) reportPreload(err error) {
	if r.onPreloadError != nil {
		r.onPreloadError(err)
	}
}
