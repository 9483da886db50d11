// Package config loads the application's YAML configuration, falling back
// to sensible defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so config files can say "30s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Player   PlayerConfig   `yaml:"player"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type SyncConfig struct {
	// Window is the minimum time between profile writes.
	Window Duration `yaml:"window"`
	// Threshold is the buffered event count past which a write happens
	// immediately, regardless of the window.
	Threshold int `yaml:"threshold"`
}

type PlayerConfig struct {
	// TickInterval is the listening heartbeat period.
	TickInterval Duration `yaml:"tick_interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".passport-radio")
	return Config{
		Database: DatabaseConfig{Path: filepath.Join(dir, "passport.db")},
		Sync:     SyncConfig{Window: Duration(time.Minute), Threshold: 10},
		Player:   PlayerConfig{TickInterval: Duration(time.Second)},
		Log:      LogConfig{Level: "info", File: filepath.Join(dir, "passport.log")},
	}
}

// Load reads the config file at path. A missing file is not an error; the
// defaults are returned as-is. Fields present in the file override the
// defaults, fields absent keep them.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.Window <= 0 {
		cfg.Sync.Window = Duration(time.Minute)
	}
	if cfg.Sync.Threshold <= 0 {
		cfg.Sync.Threshold = 10
	}
	if cfg.Player.TickInterval <= 0 {
		cfg.Player.TickInterval = Duration(time.Second)
	}

	return cfg, nil
}
