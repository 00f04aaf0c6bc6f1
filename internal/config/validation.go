package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// validate performs basic sanity checks on the merged configuration.
func validate(c *Config) error {
	if err := c.App.validate(); err != nil {
		return err
	}
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Store.validate(); err != nil {
		return err
	}
	if err := c.Plot.validate(); err != nil {
		return err
	}
	return nil
}

func (a *AppConfig) validate() error {
	level := strings.ToLower(strings.TrimSpace(a.LogLevel))
	if _, ok := validLogLevels[level]; !ok {
		return fmt.Errorf("app.log_level must be one of debug/info/warn/error, got %q", a.LogLevel)
	}
	return nil
}

func (s *ServerConfig) validate() error {
	if strings.TrimSpace(s.Addr) == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	return nil
}

func (s *StoreConfig) validate() error {
	if strings.TrimSpace(s.Path) == "" {
		return fmt.Errorf("store.path cannot be empty")
	}
	if strings.TrimSpace(s.ArchiveDir) == "" {
		return fmt.Errorf("store.archive_dir cannot be empty")
	}
	return nil
}

func (p *PlotConfig) validate() error {
	if p.PointSize <= 0 {
		return fmt.Errorf("plot.point_size must be > 0")
	}
	if p.DensityBinBP <= 0 {
		return fmt.Errorf("plot.density_bin_bp must be > 0")
	}
	if p.DensityWindow <= 0 {
		return fmt.Errorf("plot.density_window must be > 0")
	}
	if p.PNGTimeoutSeconds <= 0 {
		return fmt.Errorf("plot.png_timeout_seconds must be > 0")
	}
	return nil
}
