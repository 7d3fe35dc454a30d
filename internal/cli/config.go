package cli

import (
	"github.com/BurntSushi/toml"

	"github.com/gfatools/getblunted/pkg/errors"
)

// Config holds the tunables a config file may set; flags override it.
type Config struct {
	// Workers bounds the parallel phases; 0 means one per CPU.
	Workers int `toml:"workers"`
	// ExactCoverBound gates the exact biclique cover.
	ExactCoverBound int `toml:"exact_cover_bound"`
	// CacheDir enables alignment memoization when set.
	CacheDir string `toml:"cache_dir"`
	// CacheMaxEntries bounds the memoization store; least-recently-used
	// alignments are pruned past it. 0 means 4096.
	CacheMaxEntries int `toml:"cache_max_entries"`
	// DebugDir receives per-phase GFA snapshots when set.
	DebugDir string `toml:"debug_dir"`

	// Alignment scoring.
	Match    int `toml:"match"`
	Mismatch int `toml:"mismatch"`
	Gap      int `toml:"gap"`
}

// loadConfig decodes a TOML config file. An empty path returns the zero
// config; a path that does not exist is an error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	return cfg, nil
}
