package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Env)
	assert.Equal(t, defaultAppLogLevel, cfg.App.LogLevel)
	assert.Equal(t, defaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, defaultStorePath, cfg.Store.Path)
	assert.Equal(t, defaultArchiveDir, cfg.Store.ArchiveDir)
	assert.Equal(t, defaultPlotPointSize, cfg.Plot.PointSize)
	assert.Equal(t, int64(defaultDensityBinBP), cfg.Plot.DensityBinBP)
	assert.Equal(t, defaultDensityWindow, cfg.Plot.DensityWindow)
	assert.Equal(t, defaultPNGTimeout, cfg.Plot.PNGTimeoutSeconds)
	assert.Equal(t, defaultAesProfilesPath, cfg.Aes.ProfilesPath)
}

func TestLoadIncludeMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "server:\n  addr: \":7001\"\nplot:\n  point_size: 6\n")
	path := writeFile(t, dir, "config.yaml", "include:\n  - base.yaml\nplot:\n  point_size: 12\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	// base provides the addr, the top-level file wins on point_size.
	assert.Equal(t, ":7001", cfg.Server.Addr)
	assert.Equal(t, 12, cfg.Plot.PointSize)
}

func TestLoadIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "include:\n  - b.yaml\n")
	writeFile(t, dir, "b.yaml", "include:\n  - a.yaml\n")

	_, err := Load(filepath.Join(dir, "a.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle")
}

func TestLoadInvalidLogLevel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "app:\n  log_level: loud\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.log_level")
}

func TestLoadExplicitZeroRespected(t *testing.T) {
	dir := t.TempDir()
	// point_size set explicitly keeps its value even though 0 would
	// normally trigger the default; validation then rejects it.
	path := writeFile(t, dir, "config.yaml", "plot:\n  point_size: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plot.point_size")
}
