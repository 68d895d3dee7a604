package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Config is the complete bottombar configuration.
type Config struct {
	Bar   BarConfig    `toml:"bar" yaml:"bar"`
	Log   LogConfig    `toml:"log" yaml:"log"`
	Items []ItemConfig `toml:"items" yaml:"items"`
}

// BarConfig controls drawing and terminal handling.
type BarConfig struct {
	Separator    string   `toml:"separator" yaml:"separator"`
	Marker       string   `toml:"marker" yaml:"marker"`
	ErrorText    string   `toml:"error_text" yaml:"error_text"`
	Resize       string   `toml:"resize" yaml:"resize"`               // auto | poll
	PollInterval Duration `toml:"poll_interval" yaml:"poll_interval"` // size polling without SIGWINCH
	SyncOutput   string   `toml:"sync_output" yaml:"sync_output"`     // auto | on | off
	Output       string   `toml:"output" yaml:"output"`               // stdout | stderr
	// Preset names a built-in item set used when Items is empty.
	Preset string `toml:"preset" yaml:"preset"`
}

// LogConfig controls diagnostics. Logs never go to the bar's stream.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"` // debug | info | warn | error
	File  string `toml:"file" yaml:"file"`   // empty discards
}

// ItemConfig declares one bar item.
type ItemConfig struct {
	Kind    string   `toml:"kind" yaml:"kind"`
	Label   string   `toml:"label" yaml:"label"`
	Align   string   `toml:"align" yaml:"align"`
	Refresh Duration `toml:"refresh" yaml:"refresh"`
	Drift   bool     `toml:"drift" yaml:"drift"`
	Text    string   `toml:"text" yaml:"text"`     // kind=text
	Format  string   `toml:"format" yaml:"format"` // clock layout or spinner name
	Path    string   `toml:"path" yaml:"path"`     // disk mount or watched file
	Style   string   `toml:"style" yaml:"style"`   // "threshold" colours metrics
}

// Item kinds.
const (
	KindText    = "text"
	KindClock   = "clock"
	KindElapsed = "elapsed"
	KindCPU     = "cpu"
	KindMem     = "mem"
	KindLoad    = "load"
	KindDisk    = "disk"
	KindUptime  = "uptime"
	KindSpinner = "spinner"
	KindFile    = "file"
)

var validKinds = map[string]bool{
	KindText: true, KindClock: true, KindElapsed: true, KindCPU: true,
	KindMem: true, KindLoad: true, KindDisk: true, KindUptime: true,
	KindSpinner: true, KindFile: true,
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(field, value string, allowed ...string) {
		for _, a := range allowed {
			if value == a {
				return
			}
		}
		errs = append(errs, fmt.Errorf("%s: %q is not one of %s", field, value, strings.Join(allowed, ", ")))
	}

	check("bar.resize", c.Bar.Resize, "", "auto", "poll")
	check("bar.sync_output", c.Bar.SyncOutput, "", "auto", "on", "off")
	check("bar.output", c.Bar.Output, "", "stdout", "stderr")
	check("log.level", strings.ToLower(c.Log.Level), "", "debug", "info", "warn", "error")
	if c.Bar.Preset != "" && !IsPreset(c.Bar.Preset) {
		errs = append(errs, fmt.Errorf("bar.preset: unknown preset %q", c.Bar.Preset))
	}

	for i, it := range c.Items {
		field := fmt.Sprintf("items[%d]", i)
		if !validKinds[it.Kind] {
			errs = append(errs, fmt.Errorf("%s.kind: unknown kind %q", field, it.Kind))
		}
		check(field+".align", strings.ToLower(it.Align), "", "left", "right")
		check(field+".style", it.Style, "", "threshold")
		if it.Kind == KindFile && it.Path == "" {
			errs = append(errs, fmt.Errorf("%s.path: required for kind %q", field, it.Kind))
		}
	}
	return errors.Join(errs...)
}

// SlogLevel maps Log.Level to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SyncOutput returns the forced synchronized output setting, or nil when
// the terminal should decide.
func (c *Config) SyncOutput() *bool {
	var on bool
	switch c.Bar.SyncOutput {
	case "on":
		on = true
	case "off":
		on = false
	default:
		return nil
	}
	return &on
}

// EffectiveItems returns the configured items, or the preset's items when
// none are configured.
func (c *Config) EffectiveItems() []ItemConfig {
	if len(c.Items) > 0 || c.Bar.Preset == "" {
		return c.Items
	}
	return Preset(c.Bar.Preset)
}
