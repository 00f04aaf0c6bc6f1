package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	hcfg "hidecan/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *hcfg.Config {
	t.Helper()
	dir := t.TempDir()
	return &hcfg.Config{
		App:    hcfg.AppConfig{LogLevel: "info"},
		Server: hcfg.ServerConfig{Addr: ":0"},
		Store: hcfg.StoreConfig{
			Path:       filepath.Join(dir, "meta.db"),
			ArchiveDir: filepath.Join(dir, "archive"),
		},
		Plot: hcfg.PlotConfig{PointSize: 9, DensityBinBP: 1_000_000, DensityWindow: 5, PNGTimeoutSeconds: 20},
		Aes:  hcfg.AesConfig{ProfilesPath: filepath.Join(dir, "missing.yaml")},
	}
}

func TestBuildApp(t *testing.T) {
	a, err := NewAppBuilder(testConfig(t)).Build(context.Background())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Datasets())
	assert.NotNil(t, a.Plots())
	// missing aesthetics file falls back to built-in profiles
	assert.Nil(t, a.Registry())
}

func TestBuildAppNilConfig(t *testing.T) {
	_, err := NewApp(nil)
	assert.Error(t, err)
}

func TestBuildAppWithProfileFile(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "aes.yaml")
	writeProfiles(t, path)
	cfg.Aes.ProfilesPath = path

	a, err := NewApp(cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Registry())
	p, ok := a.Registry().Profile("qtl")
	require.True(t, ok)
	assert.Equal(t, "QTL regions", p.YLabel)
}

func writeProfiles(t *testing.T, path string) {
	t.Helper()
	content := "profiles:\n  qtl:\n    y_label: QTL regions\n    point_shape: rect\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
