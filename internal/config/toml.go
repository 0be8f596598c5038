// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Corpus     CorpusConfig     `toml:"corpus"`
	Cache      CacheConfig      `toml:"cache"`
	Calculator CalculatorConfig `toml:"calculator"`
	Memorize   MemorizeConfig   `toml:"memorize"`
}

// CorpusConfig maps digit corpus settings.
type CorpusConfig struct {
	Path           *string `toml:"path"`
	Source         *string `toml:"source"`
	FallbackDigits *int    `toml:"fallback-digits"`
}

// CacheConfig maps chunk cache settings.
type CacheConfig struct {
	ChunkSize     *int    `toml:"chunk-size"`
	Capacity      *int    `toml:"capacity"`
	Policy        *string `toml:"policy"`
	PreloadWindow *int    `toml:"preload-window"`
}

// CalculatorConfig maps streaming calculation settings.
type CalculatorConfig struct {
	Algorithm *string  `toml:"algorithm"`
	PaceScale *float64 `toml:"pace-scale"`
}

// MemorizeConfig maps memorization drill settings.
type MemorizeConfig struct {
	Mode         *string `toml:"mode"`
	TargetDigits *int    `toml:"target-digits"`
	Start        *int    `toml:"start"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
