package main

import (
	"context"
	"fmt"

	"github.com/verte-zerg/pidigits/internal/chunkcache"
	"github.com/verte-zerg/pidigits/internal/config"
	"github.com/verte-zerg/pidigits/internal/digits"
	"github.com/verte-zerg/pidigits/internal/window"
)

const (
	digitsFallbackDefault = digits.DefaultFallbackDigits
	windowChunkDefault    = window.DefaultChunkSize
	windowCacheDefault    = window.DefaultCacheCapacity
	windowPreloadDefault  = window.DefaultPreloadWindow
)

var corpusPath string

// corpusSettings is the resolved corpus and cache configuration.
type corpusSettings struct {
	path           string
	kind           digits.Kind
	fallbackDigits int
	chunkSize      int
	capacity       int
	policy         chunkcache.Policy
	preloadWindow  int
}

func resolveCorpusSettings(fileCfg config.FileConfig) (corpusSettings, error) {
	s := corpusSettings{
		path:           config.DefaultCorpusPath(),
		kind:           digits.KindMmap,
		fallbackDigits: digitsFallbackDefault,
		chunkSize:      windowChunkDefault,
		capacity:       windowCacheDefault,
		policy:         chunkcache.PolicyFIFO,
		preloadWindow:  windowPreloadDefault,
	}
	if corpusPath != "" {
		s.path = corpusPath
	} else if fileCfg.Corpus.Path != nil {
		s.path = *fileCfg.Corpus.Path
	}
	if fileCfg.Corpus.Source != nil {
		s.kind = digits.Kind(*fileCfg.Corpus.Source)
	}
	if v := fileCfg.Corpus.FallbackDigits; v != nil {
		s.fallbackDigits = *v
	}
	if v := fileCfg.Cache.ChunkSize; v != nil {
		s.chunkSize = *v
	}
	if v := fileCfg.Cache.Capacity; v != nil {
		s.capacity = *v
	}
	if v := fileCfg.Cache.PreloadWindow; v != nil {
		s.preloadWindow = *v
	}
	if fileCfg.Cache.Policy != nil {
		policy, err := chunkcache.ParsePolicy(*fileCfg.Cache.Policy)
		if err != nil {
			return corpusSettings{}, err
		}
		s.policy = policy
	}
	if s.chunkSize <= 0 {
		return corpusSettings{}, fmt.Errorf("cache chunk-size must be > 0")
	}
	if s.capacity <= 0 {
		return corpusSettings{}, fmt.Errorf("cache capacity must be > 0")
	}
	if s.fallbackDigits <= 0 {
		return corpusSettings{}, fmt.Errorf("corpus fallback-digits must be > 0")
	}
	return s, nil
}

// openReader builds the corpus source, chunk cache and windowed reader and
// initializes them. A corpus that cannot be loaded degrades to the computed
// fallback with a warning.
func openReader(ctx context.Context, s corpusSettings) (*window.Reader, error) {
	src, err := digits.Open(digits.Options{Kind: s.kind, Path: s.path, FallbackDigits: s.fallbackDigits})
	if err != nil {
		return nil, err
	}
	cache, err := chunkcache.New(s.policy, s.capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk cache: %w", err)
	}
	reader := window.New(src, cache,
		window.WithChunkSize(s.chunkSize),
		window.WithPreloadErrorHandler(func(err error) {
			logErrf("preload failed: %v\n", err)
		}),
	)

	if err := reader.Initialize(ctx); err != nil {
		closeReader(reader)
		return nil, fmt.Errorf("failed to load digit corpus: %w", err)
	}
	if derr := src.Degraded(); derr != nil {
		logErrf("using %d computed digits: %v\n", reader.TotalDigits(), derr)
		logErrln("Generate a corpus with: pidigits generate --digits 1000000")
	}
	return reader, nil
}

func closeReader(r *window.Reader) {
	if cerr := r.Close(); cerr != nil {
		logErrf("failed to close digit corpus: %v\n", cerr)
	}
}
