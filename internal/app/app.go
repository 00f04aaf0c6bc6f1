package app

import (
	"context"
	"fmt"

	"hidecan/internal/aes"
	hcfg "hidecan/internal/config"
	"hidecan/internal/logger"
	"hidecan/internal/server"
	"hidecan/internal/service"

	"golang.org/x/sync/errgroup"
)

// App owns application level orchestration: config, stores, services and
// the HTTP server.
type App struct {
	cfg      *hcfg.Config
	http     *server.HTTPServer
	registry *aes.Registry
	datasets *service.DatasetService
	plots    *service.PlotService
	closers  []func() error
}

// NewApp builds the application from config without starting it.
func NewApp(cfg *hcfg.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)
	return buildAppWithWire(context.Background(), cfg)
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	if a.http == nil {
		return fmt.Errorf("http server not initialized")
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Infof("http server listening on %s", a.cfg.Server.Addr)
		if err := a.http.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})
	err := group.Wait()
	a.Close()
	return err
}

// Close releases store handles.
func (a *App) Close() {
	if a == nil {
		return
	}
	for _, fn := range a.closers {
		if err := fn(); err != nil {
			logger.Warnf("close failed: %v", err)
		}
	}
	a.closers = nil
}

// Datasets exposes the dataset service (for the CLI and tests).
func (a *App) Datasets() *service.DatasetService {
	if a == nil {
		return nil
	}
	return a.datasets
}

// Plots exposes the plot service (for the CLI and tests).
func (a *App) Plots() *service.PlotService {
	if a == nil {
		return nil
	}
	return a.plots
}

// Registry exposes the aesthetics registry; nil when no profile file is
// configured.
func (a *App) Registry() *aes.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}
