package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.FOV != 70 {
		t.Errorf("expected fov 70, got %f", cfg.Graphics.FOV)
	}

	if cfg.World.Seed != 1337 {
		t.Errorf("expected seed 1337, got %d", cfg.World.Seed)
	}
	if cfg.World.SaveDir != "" {
		t.Errorf("expected persistence off by default, got %q", cfg.World.SaveDir)
	}
	if cfg.Metrics.ListenAddr != "" {
		t.Errorf("expected metrics endpoint off by default, got %q", cfg.Metrics.ListenAddr)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  fov: 90

controls:
  mouse_sensitivity: 0.3
  invert_y: true

world:
  seed: -42
  assets_dir: "packs/desert"
  save_dir: "saves/one"
  mesh_workers: 4

metrics:
  listen_addr: ":2112"

logging:
  level: "debug"
  log_file: "blueycraft.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	// Unset keys keep their defaults.
	if !cfg.Graphics.VSync {
		t.Error("expected vsync default to survive the merge")
	}
	if !cfg.Controls.InvertY || cfg.Controls.MouseSensitivity != 0.3 {
		t.Errorf("unexpected controls: %+v", cfg.Controls)
	}
	if cfg.World.Seed != -42 {
		t.Errorf("expected seed -42, got %d", cfg.World.Seed)
	}
	if cfg.World.AssetsDir != "packs/desert" || cfg.World.SaveDir != "saves/one" {
		t.Errorf("unexpected world dirs: %+v", cfg.World)
	}
	if cfg.World.MeshWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.World.MeshWorkers)
	}
	if cfg.Metrics.ListenAddr != ":2112" {
		t.Errorf("expected metrics addr :2112, got %s", cfg.Metrics.ListenAddr)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "blueycraft.log" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Graphics.FOV = 179 }},
		{"negative fps", func(c *Config) { c.Graphics.FPSLimit = -1 }},
		{"zero sensitivity", func(c *Config) { c.Controls.MouseSensitivity = 0 }},
		{"negative workers", func(c *Config) { c.World.MeshWorkers = -2 }},
		{"unknown level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "blueycraft.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find blueycraft.yaml in current directory")
	}
}

func newFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parsing %v: %v", args, err)
	}
	return f
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "zero seed is explicit",
			args: []string{"-seed", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.World.Seed != 0 {
					t.Errorf("expected seed 0, got %d", cfg.World.Seed)
				}
			},
		},
		{
			name: "seed untouched without flag",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if cfg.World.Seed != 1337 {
					t.Errorf("expected default seed, got %d", cfg.World.Seed)
				}
				if cfg.World.MeshWorkers != 0 {
					t.Errorf("expected default workers, got %d", cfg.World.MeshWorkers)
				}
			},
		},
		{
			name: "fullscreen flag",
			args: []string{"-fullscreen"},
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
		},
		{
			name: "width and height flags",
			args: []string{"-width", "2560", "-height", "1440"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
		},
		{
			name: "world flags",
			args: []string{"-save-dir", "/tmp/w", "-assets", "/tmp/a", "-workers", "3", "-metrics-addr", ":9000"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.World.SaveDir != "/tmp/w" || cfg.World.AssetsDir != "/tmp/a" {
					t.Errorf("unexpected world dirs: %+v", cfg.World)
				}
				if cfg.World.MeshWorkers != 3 {
					t.Errorf("expected 3 workers, got %d", cfg.World.MeshWorkers)
				}
				if cfg.Metrics.ListenAddr != ":9000" {
					t.Errorf("expected :9000, got %s", cfg.Metrics.ListenAddr)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			newFlags(t, tt.args...).Apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
world:
  seed: 5
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(newFlags(t, "-config", configPath, "-width", "1920"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from flag, height and seed from file.
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
	if cfg.World.Seed != 5 {
		t.Errorf("expected seed 5 from file, got %d", cfg.World.Seed)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("logging:\n  level: loud\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(newFlags(t, "-config", configPath)); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.World.Seed = 99
	cfg.Metrics.ListenAddr = "127.0.0.1:2112"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading: %v", err)
	}
	if loaded.World.Seed != 99 || loaded.Metrics.ListenAddr != "127.0.0.1:2112" {
		t.Errorf("unexpected reloaded config: %+v", loaded)
	}
}
