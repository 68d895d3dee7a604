package config

import (
	"slices"
	"time"
)

var presetNames = []string{"clock", "minimal", "system"}

// IsPreset reports whether name is a built-in item set.
func IsPreset(name string) bool {
	return slices.Contains(presetNames, name)
}

// PresetNames returns the built-in item set names in sorted order.
func PresetNames() []string {
	return slices.Clone(presetNames)
}

// Preset returns the items of a built-in set, or nil for unknown names.
//
//	clock:   [clock]
//	minimal: [elapsed]                          [clock]
//	system:  [cpu | mem | load]     [disk / | uptime | clock]
func Preset(name string) []ItemConfig {
	switch name {
	case "clock":
		return []ItemConfig{clockItem()}
	case "minimal":
		return []ItemConfig{
			{Kind: KindElapsed, Refresh: Duration{time.Second}},
			clockItem(),
		}
	case "system":
		return []ItemConfig{
			{Kind: KindCPU, Label: "cpu", Refresh: Duration{2 * time.Second}, Drift: true, Style: "threshold"},
			{Kind: KindMem, Label: "mem", Refresh: Duration{2 * time.Second}, Drift: true, Style: "threshold"},
			{Kind: KindLoad, Label: "load", Refresh: Duration{5 * time.Second}, Drift: true},
			{Kind: KindDisk, Label: "disk", Path: "/", Align: "right", Refresh: Duration{30 * time.Second}, Drift: true, Style: "threshold"},
			{Kind: KindUptime, Label: "up", Align: "right", Refresh: Duration{time.Minute}, Drift: true},
			clockItem(),
		}
	}
	return nil
}

func clockItem() ItemConfig {
	return ItemConfig{Kind: KindClock, Align: "right", Format: "15:04:05", Refresh: Duration{time.Second}}
}
