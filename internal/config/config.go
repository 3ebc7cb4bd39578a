// Package config resolves runtime settings from three layers: built-in
// defaults, an optional YAML file, then SEQFLOW_* environment variables.
// Later layers win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	DesktopNotifications bool   `yaml:"desktop_notifications"`
	LookAheadMinutes     int    `yaml:"look_ahead_minutes"`
	NotifyBeforeMinutes  int    `yaml:"notify_before_minutes"`
	RescanMinutes        int    `yaml:"rescan_minutes"`
	UnitHourPx           int    `yaml:"unit_hour_px"`
	ReminderBuffer       int    `yaml:"reminder_buffer"`
	CalendarPath         string `yaml:"calendar_path"`
	ImportPath           string `yaml:"import_path"`
}

func Default() RuntimeConfig {
	return RuntimeConfig{
		DesktopNotifications: false,
		LookAheadMinutes:     60,
		NotifyBeforeMinutes:  5,
		RescanMinutes:        5,
		UnitHourPx:           6,
		ReminderBuffer:       64,
		CalendarPath:         "",
		ImportPath:           "tasks.yaml",
	}
}

// Load resolves the effective config. The file path comes from
// SEQFLOW_CONFIG or falls back to the user config dir; a missing file is
// fine.
func Load() (RuntimeConfig, error) {
	cfg := Default()
	path := strings.TrimSpace(os.Getenv("SEQFLOW_CONFIG"))
	if path == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			path = filepath.Join(dir, "seqflow", "config.yaml")
		}
	}
	if path != "" {
		loaded, err := LoadFile(path, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	return FromEnv(cfg), nil
}

// LoadFile overlays the YAML file at path onto base. A missing file
// returns base unchanged.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return base, nil
	}
	if err != nil {
		return base, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg.sanitized(), nil
}

// FromEnv overlays SEQFLOW_* environment variables onto base.
func FromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvBool("SEQFLOW_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("SEQFLOW_LOOK_AHEAD_MINUTES"); ok && v > 0 {
		cfg.LookAheadMinutes = v
	}
	if v, ok := getEnvInt("SEQFLOW_NOTIFY_BEFORE_MINUTES"); ok && v > 0 {
		cfg.NotifyBeforeMinutes = v
	}
	if v, ok := getEnvInt("SEQFLOW_RESCAN_MINUTES"); ok && v > 0 {
		cfg.RescanMinutes = v
	}
	if v, ok := getEnvInt("SEQFLOW_UNIT_HOUR_PX"); ok && v > 0 {
		cfg.UnitHourPx = v
	}
	if v, ok := getEnvInt("SEQFLOW_REMINDER_BUFFER"); ok && v > 0 {
		cfg.ReminderBuffer = v
	}
	if v := strings.TrimSpace(os.Getenv("SEQFLOW_CALENDAR_PATH")); v != "" {
		cfg.CalendarPath = v
	}
	if v := strings.TrimSpace(os.Getenv("SEQFLOW_IMPORT_PATH")); v != "" {
		cfg.ImportPath = v
	}
	return cfg
}

// sanitized floors nonsensical file values back to defaults.
func (c RuntimeConfig) sanitized() RuntimeConfig {
	def := Default()
	if c.LookAheadMinutes <= 0 {
		c.LookAheadMinutes = def.LookAheadMinutes
	}
	if c.NotifyBeforeMinutes <= 0 {
		c.NotifyBeforeMinutes = def.NotifyBeforeMinutes
	}
	if c.RescanMinutes <= 0 {
		c.RescanMinutes = def.RescanMinutes
	}
	if c.UnitHourPx <= 0 {
		c.UnitHourPx = def.UnitHourPx
	}
	if c.ReminderBuffer <= 0 {
		c.ReminderBuffer = def.ReminderBuffer
	}
	return c
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
