package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// appName is the directory under XDG_CONFIG_HOME holding the config file.
const appName = "bottombar"

// Format is a config file syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatForPath picks the syntax from the file extension. Anything other
// than .yaml or .yml is TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/bottombar/config.toml, then config.yaml
//  2. ~/.config/bottombar/config.toml, then config.yaml
//
// If no file exists, returns DefaultConfig() with env overrides applied.
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, cfg.Validate()
}

// LoadFromFile reads configuration from a specific file path. A missing
// file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader reads configuration in the given format, applies env
// overrides and validates the result.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		md, err := toml.NewDecoder(r).Decode(cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", undecoded)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Bar: BarConfig{
			Separator:    " | ",
			Marker:       "…",
			Resize:       "auto",
			PollInterval: Duration{time.Second},
			SyncOutput:   "auto",
			Output:       "stdout",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BOTTOMBAR_SEPARATOR"); v != "" {
		cfg.Bar.Separator = v
	}
	if v := os.Getenv("BOTTOMBAR_MARKER"); v != "" {
		cfg.Bar.Marker = v
	}
	if v := os.Getenv("BOTTOMBAR_RESIZE"); v != "" {
		cfg.Bar.Resize = v
	}
	if v := os.Getenv("BOTTOMBAR_SYNC_OUTPUT"); v != "" {
		cfg.Bar.SyncOutput = v
	}
	if v := os.Getenv("BOTTOMBAR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	dirs := []string{xdgConfigHome(home)}

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	if defaultXDG := filepath.Join(home, ".config"); dirs[0] != defaultXDG {
		dirs = append(dirs, defaultXDG)
	}

	var paths []string
	for _, d := range dirs {
		paths = append(paths,
			filepath.Join(d, appName, "config.toml"),
			filepath.Join(d, appName, "config.yaml"),
		)
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}
