// Package config loads the dashboard's deployment configuration: where the
// two persistence targets live and the tuning knobs the core exposes.
// Capacity is deliberately not configurable - the layout is a fixed-size
// array by design.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration file shape.
type Config struct {
	// Profile keys the preferences record in the durable store.
	Profile string `yaml:"profile"`

	// DurablePath is the SQLite database file.
	DurablePath string `yaml:"durable_path"`

	// MirrorPath is the mirror blob file.
	MirrorPath string `yaml:"mirror_path"`

	// MirrorQuotaBytes caps the mirrored blob size. Zero means the
	// mirror package default.
	MirrorQuotaBytes int `yaml:"mirror_quota_bytes"`

	// ReorderWindowMS is the drag-commit debounce window in
	// milliseconds. Zero means the engine default.
	ReorderWindowMS int `yaml:"reorder_window_ms"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".dialdeck")
	return Config{
		Profile:     "default",
		DurablePath: filepath.Join(dir, "prefs.db"),
		MirrorPath:  filepath.Join(dir, "mirror.json"),
	}
}

// Load reads and validates a configuration file. A missing file is not an
// error: it yields Default(), so a bare install runs without any setup.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field-level constraints.
func (c Config) Validate() error {
	if c.Profile == "" {
		return errors.New("profile must not be empty")
	}
	if c.DurablePath == "" {
		return errors.New("durable_path must not be empty")
	}
	if c.MirrorPath == "" {
		return errors.New("mirror_path must not be empty")
	}
	if c.MirrorQuotaBytes < 0 {
		return fmt.Errorf("mirror_quota_bytes must not be negative, got %d", c.MirrorQuotaBytes)
	}
	if c.ReorderWindowMS < 0 {
		return fmt.Errorf("reorder_window_ms must not be negative, got %d", c.ReorderWindowMS)
	}
	return nil
}

// ReorderWindow returns the debounce window as a duration, zero when unset.
func (c Config) ReorderWindow() time.Duration {
	return time.Duration(c.ReorderWindowMS) * time.Millisecond
}
