// Package config loads editor configuration from TOML files with
// environment overrides. Geometry defaults mirror the constants the
// timeline packages ship with, so running without a config file is
// identical to running with an empty one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Load reads configuration from standard locations with environment
// overrides. Search order: ~/.kinocutrc,
// $XDG_CONFIG_HOME/kinocut/config.toml, ~/.config/kinocut/config.toml.
func Load() (*Config, error) {
	cfg := &Config{}

	path := findConfigFile()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// findConfigFile returns the first existing config file path.
func findConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	paths := []string{
		filepath.Join(home, ".kinocutrc"),
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "kinocut", "config.toml"))

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnvOverrides applies KINOCUT_* environment variables on top of
// whatever the file provided. Unparseable values are ignored.
func applyEnvOverrides(cfg *Config) {
	// Timeline
	if v := os.Getenv("KINOCUT_PX_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Timeline.PxPerSecond = f
		}
	}
	if v := os.Getenv("KINOCUT_SNAP_TOLERANCE_PX"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Timeline.SnapTolerancePx = f
		}
	}

	// Autosave
	if v := os.Getenv("KINOCUT_AUTOSAVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Autosave.Enabled = b
		}
	}
	if v := os.Getenv("KINOCUT_AUTOSAVE_PATH"); v != "" {
		cfg.Autosave.Path = v
	}

	// TUI
	if v := os.Getenv("KINOCUT_TUI_REFRESH_MS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.TUI.RefreshMs = i
		}
	}

	// Log
	if v := os.Getenv("KINOCUT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KINOCUT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}
