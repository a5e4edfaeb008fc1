package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reducto.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
format = "json"
verbose = true
journal = "runs.db"
log_level = "warn"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{Format: "json", Verbose: true, Journal: "runs.db", LogLevel: "warn"}, *cfg)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `journal = "x.db"`))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "x.db", cfg.Journal)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
format = "json"
journal = "file.db"
`)
	t.Setenv("REDUCTO_JOURNAL", "env.db")
	t.Setenv("REDUCTO_VERBOSE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format, "unset env leaves file value")
	assert.Equal(t, "env.db", cfg.Journal)
	assert.True(t, cfg.Verbose)
}

func TestLoad_ExpandsEnvReferences(t *testing.T) {
	t.Setenv("RUN_DIR", "/tmp/runs")
	cfg, err := Load(writeConfig(t, `journal = "${RUN_DIR}/journal.db"`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/runs/journal.db", cfg.Journal)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "reading config file")

	_, err = Load(writeConfig(t, `format = [`))
	assert.ErrorContains(t, err, "parsing config")

	_, err = Load(writeConfig(t, `format = "yaml"`))
	assert.ErrorContains(t, err, "format must be text or json")

	t.Setenv("REDUCTO_VERBOSE", "not-a-bool")
	_, err = Load("")
	assert.ErrorContains(t, err, "parse env:")
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "loud"
	assert.ErrorContains(t, cfg.Validate(), "log_level")
}

func TestLevel(t *testing.T) {
	cases := []struct {
		cfg  Config
		want slog.Level
	}{
		{Config{LogLevel: "debug"}, slog.LevelDebug},
		{Config{LogLevel: "INFO"}, slog.LevelInfo},
		{Config{LogLevel: "warn"}, slog.LevelWarn},
		{Config{LogLevel: "error"}, slog.LevelError},
		{Config{LogLevel: "error", Verbose: true}, slog.LevelDebug},
		{Config{LogLevel: "bogus"}, slog.LevelInfo},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.cfg.Level(), "%+v", tc.cfg)
	}
}
