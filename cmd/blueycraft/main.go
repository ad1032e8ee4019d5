// Package main is the entry point for the Blueycraft client.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/blueycraft/internal/assets"
	"github.com/Faultbox/blueycraft/internal/config"
	"github.com/Faultbox/blueycraft/internal/game"
	"github.com/Faultbox/blueycraft/internal/logger"
	"github.com/Faultbox/blueycraft/internal/metrics"
	"github.com/Faultbox/blueycraft/internal/storage"
	"github.com/Faultbox/blueycraft/internal/world"
)

func main() {
	flags := config.BindFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.FileConfig{
			Path:       cfg.Logging.LogFile,
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAgeDays: cfg.Logging.MaxAgeDays,
			Compress:   true,
		}
	}
	if err := logger.Init(logger.Options{Level: cfg.Logging.Level, File: fileCfg, Console: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Blueycraft ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("game error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("game closed normally")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pack, err := assets.LoadDir(cfg.World.AssetsDir)
	if err != nil {
		return fmt.Errorf("loading assets: %w", err)
	}

	m := metrics.New()
	if cfg.Metrics.ListenAddr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.ListenAddr, logger.Log); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	opts := world.Options{
		Seed:    cfg.World.Seed,
		Pack:    pack,
		Metrics: m,
		Logger:  logger.Log,
		Workers: cfg.World.MeshWorkers,
	}
	if cfg.World.SaveDir != "" {
		store, err := storage.Open(cfg.World.SaveDir, logger.Log)
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Warn("closing chunk store", zap.Error(err))
			}
		}()
		opts.Store = store
	}

	w, err := world.New(opts)
	if err != nil {
		return err
	}
	defer w.Close()

	g, err := game.New(cfg, w, m)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}
	defer g.Close()

	return g.Run(ctx)
}
