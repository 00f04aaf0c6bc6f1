package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"hidecan/internal/aes"
	"hidecan/internal/archive"
	hcfg "hidecan/internal/config"
	"hidecan/internal/logger"
	"hidecan/internal/server"
	"hidecan/internal/service"
	"hidecan/internal/store"
	"hidecan/internal/store/gormstore"
)

// AppBuilder assembles the application. The Fn hooks exist so tests can
// substitute individual stages.
type AppBuilder struct {
	cfg *hcfg.Config

	metaStoreFn func(string) (*gormstore.GormStore, error)
	archiveFn   func(string) (*archive.Store, error)
	registryFn  func(string) (*aes.Registry, error)
	httpFn      func(server.HTTPConfig) (*server.HTTPServer, error)

	cacheOverride store.DatasetCache
}

type AppBuilderOption func(*AppBuilder)

// WithDatasetCache replaces the default in-memory cache.
func WithDatasetCache(c store.DatasetCache) AppBuilderOption {
	return func(b *AppBuilder) { b.cacheOverride = c }
}

func NewAppBuilder(cfg *hcfg.Config, opts ...AppBuilderOption) *AppBuilder {
	b := &AppBuilder{
		cfg:         cfg,
		metaStoreFn: gormstore.NewGormStore,
		archiveFn:   archive.NewStore,
		registryFn:  loadRegistry,
		httpFn:      server.NewHTTPServer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// loadRegistry opens the aesthetics registry; a missing file is tolerated
// and built-in profiles apply alone.
func loadRegistry(path string) (*aes.Registry, error) {
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warnf("aesthetics file %s not found, using built-in profiles", path)
		return nil, nil
	}
	return aes.NewRegistry(path)
}

func (b *AppBuilder) Build(ctx context.Context) (*App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if b.cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	cfg := b.cfg
	logger.SetLevel(cfg.App.LogLevel)

	meta, err := b.metaStoreFn(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening metadata store failed: %w", err)
	}
	arch, err := b.archiveFn(cfg.Store.ArchiveDir)
	if err != nil {
		meta.Close()
		return nil, fmt.Errorf("opening feature archive failed: %w", err)
	}
	registry, err := b.registryFn(cfg.Aes.ProfilesPath)
	if err != nil {
		meta.Close()
		arch.Close()
		return nil, fmt.Errorf("loading aesthetics profiles failed: %w", err)
	}
	if registry != nil {
		snap := registry.Snapshot()
		logger.Infof("aesthetics profiles loaded path=%s count=%d", cfg.Aes.ProfilesPath, len(snap.Profiles))
		registry.Subscribe(func(s aes.Snapshot) {
			logger.Infof("aesthetics profiles reloaded version=%d count=%d", s.Version, len(s.Profiles))
		})
	}

	cache := b.cacheOverride
	if cache == nil {
		cache = store.NewMemoryDatasetCache()
	}
	datasets := service.NewDatasetService(meta, arch, cache)
	plots := service.NewPlotService(datasets, meta, registry, service.RenderOptions{
		PointSize:     cfg.Plot.PointSize,
		DensityBinBP:  cfg.Plot.DensityBinBP,
		DensityWindow: cfg.Plot.DensityWindow,
		PNGTimeout:    time.Duration(cfg.Plot.PNGTimeoutSeconds) * time.Second,
	})

	httpSrv, err := b.httpFn(server.HTTPConfig{
		Addr:     cfg.Server.Addr,
		Datasets: datasets,
		Plots:    plots,
	})
	if err != nil {
		meta.Close()
		arch.Close()
		return nil, fmt.Errorf("building http server failed: %w", err)
	}

	return &App{
		cfg:      cfg,
		http:     httpSrv,
		registry: registry,
		datasets: datasets,
		plots:    plots,
		closers:  []func() error{meta.Close, arch.Close},
	}, nil
}
