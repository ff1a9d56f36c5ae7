package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawConfig is one config file as written. Nil fields were not set.
type RawConfig struct {
	Include           IncludeList `yaml:"include"`
	ToggleHotkey      *string     `yaml:"toggle_hotkey"`
	EnableOnStart     *bool       `yaml:"enable_on_start"`
	Desktops          *[]int      `yaml:"desktops"`
	LogLevel          *string     `yaml:"log_level"`
	ReconcileInterval *int        `yaml:"reconcile_interval"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.ToggleHotkey != nil {
		out.ToggleHotkey = overlay.ToggleHotkey
	}
	if overlay.EnableOnStart != nil {
		out.EnableOnStart = overlay.EnableOnStart
	}
	if overlay.Desktops != nil {
		out.Desktops = overlay.Desktops
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}
	if overlay.ReconcileInterval != nil {
		out.ReconcileInterval = overlay.ReconcileInterval
	}
	return out
}

// apply lays the raw settings over the defaults.
func (c RawConfig) apply() *Config {
	cfg := DefaultConfig()

	if c.ToggleHotkey != nil {
		cfg.ToggleHotkey = *c.ToggleHotkey
	}
	if c.EnableOnStart != nil {
		cfg.EnableOnStart = *c.EnableOnStart
	}
	if c.Desktops != nil {
		cfg.Desktops = append([]int(nil), (*c.Desktops)...)
	}
	if c.LogLevel != nil {
		cfg.LogLevel = *c.LogLevel
	}
	if c.ReconcileInterval != nil {
		cfg.ReconcileInterval = *c.ReconcileInterval
	}
	return cfg
}
