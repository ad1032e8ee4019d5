package config

import "flag"

// Flags holds command-line overrides bound to a FlagSet.
type Flags struct {
	fs *flag.FlagSet

	config      *string
	debug       *bool
	seed        *int64
	windowed    *bool
	fullscreen  *bool
	width       *int
	height      *int
	assetsDir   *string
	saveDir     *string
	workers     *int
	metricsAddr *string
}

// BindFlags registers the config flags on fs. Parse fs before calling Load.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:          fs,
		config:      fs.String("config", "", "Path to config file"),
		debug:       fs.Bool("debug", false, "Enable debug logging"),
		seed:        fs.Int64("seed", 0, "World seed"),
		windowed:    fs.Bool("windowed", false, "Run in windowed mode"),
		fullscreen:  fs.Bool("fullscreen", false, "Run in fullscreen mode"),
		width:       fs.Int("width", 0, "Window width"),
		height:      fs.Int("height", 0, "Window height"),
		assetsDir:   fs.String("assets", "", "Directory overriding blocks.yaml and biome.yaml"),
		saveDir:     fs.String("save-dir", "", "Directory for persisted chunks"),
		workers:     fs.Int("workers", -1, "Generation and meshing workers (0 = one per CPU)"),
		metricsAddr: fs.String("metrics-addr", "", "Serve prometheus metrics on this address"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// Apply applies flag overrides to cfg.
func (f *Flags) Apply(cfg *Config) {
	if f == nil {
		return
	}

	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	// Zero is a valid seed, so only an explicit -seed overrides.
	if f.isSet("seed") {
		cfg.World.Seed = *f.seed
	}
	if *f.windowed {
		cfg.Graphics.Fullscreen = false
	}
	if *f.fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *f.width > 0 {
		cfg.Graphics.Width = *f.width
	}
	if *f.height > 0 {
		cfg.Graphics.Height = *f.height
	}
	if *f.assetsDir != "" {
		cfg.World.AssetsDir = *f.assetsDir
	}
	if *f.saveDir != "" {
		cfg.World.SaveDir = *f.saveDir
	}
	if *f.workers >= 0 {
		cfg.World.MeshWorkers = *f.workers
	}
	if *f.metricsAddr != "" {
		cfg.Metrics.ListenAddr = *f.metricsAddr
	}
}

func (f *Flags) isSet(name string) bool {
	set := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			set = true
		}
	})
	return set
}
