package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "kabuscreen.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "https://query2.finance.yahoo.com", cfg.Quote.BaseURL)
	assert.InDelta(t, 2.0, cfg.Quote.RequestsPerSec, 0.001)
	assert.Equal(t, 30, cfg.Quote.TimeoutSecs)
	assert.Equal(t, 24, cfg.Quote.CacheTTLHours)
	assert.Equal(t, "data/data_j.tsv", cfg.Export.InputPath)
	assert.Equal(t, "exports", cfg.Export.OutputDir)
	assert.Equal(t, "shift_jis", cfg.Export.Encoding)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/kabuscreen
export:
  output_dir: /data/exports
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/kabuscreen", cfg.Store.DatabaseURL)
	assert.Equal(t, "/data/exports", cfg.Export.OutputDir)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults still apply for unset values
	assert.Equal(t, "data/data_j.tsv", cfg.Export.InputPath)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("KABUSCREEN_STORE_DRIVER", "postgres")
	t.Setenv("KABUSCREEN_INSIGHT_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "sk-test", cfg.Insight.Key)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	require.Error(t, err)
}
