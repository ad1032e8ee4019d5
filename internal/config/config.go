// Package config handles client and tool configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Controls ControlsConfig `yaml:"controls"`
	World    WorldConfig    `yaml:"world"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FPSLimit   int     `yaml:"fps_limit"`
	FOV        float32 `yaml:"fov"`
	Wireframe  bool    `yaml:"wireframe"`
}

// ControlsConfig holds input settings.
type ControlsConfig struct {
	MouseSensitivity float32 `yaml:"mouse_sensitivity"`
	InvertY          bool    `yaml:"invert_y"`
}

// WorldConfig selects the world to generate and where it is stored.
type WorldConfig struct {
	Seed int64 `yaml:"seed"`
	// AssetsDir overrides the embedded blocks.yaml / biome.yaml when set.
	AssetsDir string `yaml:"assets_dir"`
	// SaveDir enables chunk persistence when set.
	SaveDir     string `yaml:"save_dir"`
	MeshWorkers int    `yaml:"mesh_workers"` // 0 = one per CPU
}

// MetricsConfig holds the prometheus endpoint settings.
type MetricsConfig struct {
	ListenAddr string `yaml:"listen_addr"` // empty disables the endpoint
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
			FOV:        70,
		},
		Controls: ControlsConfig{
			MouseSensitivity: 0.15,
		},
		World: WorldConfig{
			Seed:        1337,
			MeshWorkers: 0,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.FOV <= 10 || c.Graphics.FOV >= 170 {
		return fmt.Errorf("%w: fov %.1f outside (10, 170)", ErrInvalid, c.Graphics.FOV)
	}
	if c.Graphics.FPSLimit < 0 {
		return fmt.Errorf("%w: fps_limit %d is negative", ErrInvalid, c.Graphics.FPSLimit)
	}
	if c.Controls.MouseSensitivity <= 0 {
		return fmt.Errorf("%w: mouse_sensitivity must be positive", ErrInvalid)
	}
	if c.World.MeshWorkers < 0 {
		return fmt.Errorf("%w: mesh_workers %d is negative", ErrInvalid, c.World.MeshWorkers)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}
