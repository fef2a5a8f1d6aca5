package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trrebwatch/pkg/contracts/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TRREB_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data", cfg.Paths.DataDir)
	assert.Equal(t, 2016, cfg.Download.StartYear)
	assert.Equal(t, 5, cfg.Download.Workers)
	assert.Equal(t, "https://api.x.ai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.False(t, cfg.Batch.Overwrite)
	assert.Empty(t, cfg.Database.DSN)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TRREB_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("TRREB_LOGGING_LEVEL", "debug")
	t.Setenv("TRREB_DOWNLOAD_WORKERS", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2, cfg.Download.Workers)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "trrebwatch.yaml")
	yaml := `
logging:
  level: warn
  format: text
  output: console
paths:
  data_dir: /tmp/trreb-data
`
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0o644))
	t.Setenv("TRREB_CONFIG", configFile)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "/tmp/trreb-data", cfg.Paths.DataDir)
}

func TestLoad_InvalidLevel(t *testing.T) {
	t.Setenv("TRREB_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("TRREB_LOGGING_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	p := NewPaths(PathsConfig{DataDir: "data"})

	assert.Equal(t, filepath.Join("data", "pdfs", "mw1601.pdf"), p.PDFPath(2016, 1))
	assert.Equal(t, filepath.Join("data", "pdfs", "mw2412.pdf"), p.PDFPath(2024, 12))
	assert.Equal(t,
		filepath.Join("data", "extracted", "detached", "2020-03.csv"),
		p.ExtractedPath(domain.PropertyDetached, 2020, 3))
}

func TestPaths_EnsureDirectories(t *testing.T) {
	p := NewPaths(PathsConfig{DataDir: t.TempDir()})
	require.NoError(t, p.EnsureDirectories())

	for _, dir := range []string{
		p.PDFDir(),
		p.ExtractedDir(domain.PropertyAllHomeTypes),
		p.ExtractedDir(domain.PropertyDetached),
		p.ProcessedDir(domain.PropertyAllHomeTypes),
		p.ReportsDir(),
		p.LogsDir(),
	} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}
}
