package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 16, cfg.Walk.Length)
	assert.Equal(t, int64(42), cfg.Walk.Seed)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  port: 9090
  log_format: json
session:
  ttl: 5m
walk:
  distribution: uniform
  seed: 7
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "json", cfg.App.LogFormat)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "uniform", cfg.Walk.Distribution)
	assert.Equal(t, int64(7), cfg.Walk.Seed)
	assert.Equal(t, 100.0, cfg.Walk.StartPrice)
}

func TestLoadEnvironmentWinsOverYAML(t *testing.T) {
	path := writeConfig(t, "app:\n  port: 9090\n")
	t.Setenv("APP_PORT", "7070")
	t.Setenv("SESSION_SWEEP_INTERVAL", "30s")
	t.Setenv("WALK_STEP_STDDEV", "0.5")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.App.Port)
	assert.Equal(t, 30*time.Second, cfg.Session.SweepInterval)
	assert.Equal(t, 0.5, cfg.Walk.StepStdDev)
}

func TestLoadErrors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "app: [port"))
		assert.Error(t, err)
	})

	t.Run("malformed env", func(t *testing.T) {
		t.Setenv("APP_PORT", "eighty")
		_, err := Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.App.Port = 70000 }, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.App.LogLevel = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.App.LogFormat = "xml" }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.Upload.MaxBytes = 0 }, wantErr: true},
		{name: "negative ttl", mutate: func(c *Config) { c.Session.TTL = -time.Second }, wantErr: true},
		{name: "zero sweep", mutate: func(c *Config) { c.Session.SweepInterval = 0 }, wantErr: true},
		{name: "bad walk", mutate: func(c *Config) { c.Walk.Length = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Walk.Seed = 3
	cfg.Session.MaxSessions = 5

	assert.Equal(t, int64(3), cfg.GeneratorConfig().Seed)
	assert.Equal(t, 16, cfg.GeneratorConfig().Length)
	assert.Equal(t, 5, cfg.StorageConfig().MaxSessions)
	assert.Equal(t, 30*time.Minute, cfg.StorageConfig().SessionTTL)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, AppConfig{Name: "walk", LogLevel: "warn", LogFormat: "json"})

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"service":"walk"`)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	_, err = ParseLevel("verbose")
	assert.Error(t, err)
}
