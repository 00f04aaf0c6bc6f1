package config

import "strings"

const (
	defaultAppEnv          = "dev"
	defaultAppLogLevel     = "info"
	defaultAppLogPath      = "/data/logs/hidecan.log"
	defaultAppReportPath   = "/data/logs/hidecan-report.log"
	defaultServerAddr      = ":9990"
	defaultStorePath       = "/data/db/hidecan.db"
	defaultArchiveDir      = "/data/db/archive"
	defaultPlotPointSize   = 9
	defaultDensityBinBP    = 1_000_000
	defaultDensityWindow   = 5
	defaultPNGTimeout      = 20
	defaultAesProfilesPath = "configs/aesthetics.yaml"
)

// fieldDefault describes the default rule of a single field.
type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}

// applyDefaults fills defaults for every sub config.
func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Server.applyDefaults(keys)
	c.Store.applyDefaults(keys)
	c.Plot.applyDefaults(keys)
	c.Aes.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.log_path", &a.LogPath, defaultAppLogPath),
		stringFieldDefault("app.report_path", &a.ReportPath, defaultAppReportPath),
	)
}

func (s *ServerConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("server.addr", &s.Addr, defaultServerAddr),
	)
}

func (s *StoreConfig) applyDefaults(keys keySet) {
	if s == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("store.path", &s.Path, defaultStorePath),
		stringFieldDefault("store.archive_dir", &s.ArchiveDir, defaultArchiveDir),
	)
}

func (p *PlotConfig) applyDefaults(keys keySet) {
	if p == nil {
		return
	}
	applyFieldDefaults(keys,
		fieldDefault{
			key:   "plot.point_size",
			need:  func() bool { return p.PointSize <= 0 },
			apply: func() { p.PointSize = defaultPlotPointSize },
		},
		fieldDefault{
			key:   "plot.density_bin_bp",
			need:  func() bool { return p.DensityBinBP <= 0 },
			apply: func() { p.DensityBinBP = defaultDensityBinBP },
		},
		fieldDefault{
			key:   "plot.density_window",
			need:  func() bool { return p.DensityWindow <= 0 },
			apply: func() { p.DensityWindow = defaultDensityWindow },
		},
		fieldDefault{
			key:   "plot.png_timeout_seconds",
			need:  func() bool { return p.PNGTimeoutSeconds <= 0 },
			apply: func() { p.PNGTimeoutSeconds = defaultPNGTimeout },
		},
	)
}

func (a *AesConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("aes.profiles_path", &a.ProfilesPath, defaultAesProfilesPath),
	)
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
