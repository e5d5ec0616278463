// Package config loads the engine's storage and buffer pool settings from a
// TOML document into a typed Config, falling back to defaults for anything
// the file omits or when no file is given.
package config

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the fully resolved set of engine settings.
type Config struct {
	// StorageRoot is the directory holding the catalog file and all
	// per-inode data/head files.
	StorageRoot string
	// BufferPoolSize is the number of frames the buffer pool holds.
	BufferPoolSize int
	// LogLevel is passed straight through to logger.Init.
	LogLevel string
}

// Default returns a Config usable without any TOML file present.
func Default() Config {
	return Config{
		StorageRoot:    "./data",
		BufferPoolSize: 64,
		LogLevel:       "info",
	}
}

// Load reads path and overlays it onto Default(). Missing keys keep their
// default value; a missing file is not an error (the default storage root
// is still usable).
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}

	tree, err := toml.LoadBytes(raw)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}

	if v, ok := tree.Get("storage_root").(string); ok {
		cfg.StorageRoot = v
	}
	if v, ok := tree.Get("buffer_pool_size").(int64); ok {
		cfg.BufferPoolSize = int(v)
	}
	if v, ok := tree.Get("log_level").(string); ok {
		cfg.LogLevel = v
	}
	return cfg, nil
}
