package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the effective daemon configuration.
type Config struct {
	// ToggleHotkey flips maximize mode. Empty disables the hotkey.
	ToggleHotkey string `yaml:"toggle_hotkey"`
	// EnableOnStart turns the mode on as soon as the daemon is ready.
	EnableOnStart bool `yaml:"enable_on_start"`
	// Desktops are the watched virtual desktops. Empty means the desktop
	// that is current when the mode is enabled.
	Desktops []int  `yaml:"desktops"`
	LogLevel string `yaml:"log_level"`
	// ReconcileInterval is in seconds. 0 disables the reconciler.
	ReconcileInterval int `yaml:"reconcile_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		ToggleHotkey:      "Mod4-Mod1-m", // Super+Alt+M
		EnableOnStart:     false,
		Desktops:          nil,
		LogLevel:          "info",
		ReconcileInterval: 10,
	}
}

// ValidationError reports an invalid setting, optionally with the file
// position it was written at.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (c *Config) Validate() error {
	if c.ToggleHotkey != "" && strings.TrimSpace(c.ToggleHotkey) == "" {
		return &ValidationError{Path: "toggle_hotkey", Err: fmt.Errorf("toggle_hotkey must not be blank")}
	}
	seen := make(map[int]struct{}, len(c.Desktops))
	for i, d := range c.Desktops {
		if d < 0 {
			return &ValidationError{Path: "desktops", Err: fmt.Errorf("desktops[%d] must be >= 0", i)}
		}
		if _, ok := seen[d]; ok {
			return &ValidationError{Path: "desktops", Err: fmt.Errorf("desktop %d listed twice", d)}
		}
		seen[d] = struct{}{}
	}
	if _, err := parseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	if c.ReconcileInterval < 0 {
		return &ValidationError{Path: "reconcile_interval", Err: fmt.Errorf("reconcile_interval must be >= 0")}
	}
	return nil
}

// SlogLevel maps log_level to a slog level. Invalid values fall back to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ReconcileEvery returns the reconciler period, 0 when disabled.
func (c *Config) ReconcileEvery() time.Duration {
	return time.Duration(c.ReconcileInterval) * time.Second
}

// YAML renders the effective config in the file format.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warning, error")
}
