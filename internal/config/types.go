package config

import "strings"

// Config is the top-level configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Plot   PlotConfig   `yaml:"plot"`
	Aes    AesConfig    `yaml:"aes"`
}

type AppConfig struct {
	Env        string `yaml:"env"`
	LogLevel   string `yaml:"log_level"`
	LogPath    string `yaml:"log_path"`
	ReportPath string `yaml:"report_path"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StoreConfig struct {
	// Path of the metadata/plots sqlite database.
	Path string `yaml:"path"`
	// ArchiveDir holds one sqlite file of feature rows per dataset.
	ArchiveDir string `yaml:"archive_dir"`
}

type PlotConfig struct {
	PointSize         int   `yaml:"point_size"`
	DensityBinBP      int64 `yaml:"density_bin_bp"`
	DensityWindow     int   `yaml:"density_window"`
	PNGTimeoutSeconds int   `yaml:"png_timeout_seconds"`
}

type AesConfig struct {
	// ProfilesPath of the hot-reloaded aesthetics YAML; empty disables the
	// registry and built-in profiles apply alone.
	ProfilesPath string `yaml:"profiles_path"`
}

type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}
