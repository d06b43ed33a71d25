// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigil-dev/rolodex/internal/config"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.Networking.Listen)
	assert.Equal(t, []string{"*"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "json", cfg.Storage.Format)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Zero(t, cfg.Networking.RateLimit.RequestsPerSecond)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "rolodex.yaml")

	content := `
networking:
  listen: "0.0.0.0:9999"
  cors_origins: ["http://a.local", "http://b.local"]
storage:
  backend: sqlite
data_dir: /var/lib/rolodex
log:
  format: json
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Networking.Listen)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Networking.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "json", cfg.Storage.Format, "unset keys keep their defaults")
	assert.Equal(t, "/var/lib/rolodex", cfg.DataDir)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_DefaultTemplateIsValid(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "rolodex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, config.DefaultConfigYAML, 0o644))

	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:5000", cfg.Networking.Listen)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROLODEX_NETWORKING_LISTEN", "10.0.0.1:8080")
	t.Setenv("ROLODEX_STORAGE_FORMAT", "yaml")
	t.Setenv("ROLODEX_DATA_DIR", "/tmp/book")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", cfg.Networking.Listen)
	assert.Equal(t, "yaml", cfg.Storage.Format)
	assert.Equal(t, "/tmp/book", cfg.DataDir)
}

func TestLoad_EnvCORSList(t *testing.T) {
	t.Setenv("ROLODEX_NETWORKING_CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Networking.CORSOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, sigilerr.HasCode(err, sigilerr.CodeConfigLoadReadFailure))
}

func TestLoad_ValidationCalledAtLoadTime(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "rolodex.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("storage:\n  backend: postgres\n"), 0o644))

	_, err := config.Load(cfgPath)
	require.Error(t, err)
	assert.True(t, sigilerr.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "storage.backend")
}

func validConfig() *config.Config {
	return &config.Config{
		Networking: config.NetworkingConfig{
			Listen:      "127.0.0.1:5000",
			CORSOrigins: []string{"*"},
		},
		Storage: config.StorageConfig{Backend: "file", Format: "json"},
		DataDir: "./data",
		Log:     config.LogConfig{Level: "info", Format: "text"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"empty listen", func(c *config.Config) { c.Networking.Listen = "" }, "networking.listen must not be empty"},
		{"listen without port", func(c *config.Config) { c.Networking.Listen = "localhost" }, "valid host:port"},
		{"listen non-numeric port", func(c *config.Config) { c.Networking.Listen = "localhost:http" }, "port must be a number"},
		{"listen port out of range", func(c *config.Config) { c.Networking.Listen = ":70000" }, "between 1 and 65535"},
		{"blank cors origin", func(c *config.Config) { c.Networking.CORSOrigins = []string{" "} }, "cors_origins[0]"},
		{"negative rate", func(c *config.Config) { c.Networking.RateLimit.RequestsPerSecond = -1 }, "requests_per_second"},
		{"rate without burst", func(c *config.Config) { c.Networking.RateLimit.RequestsPerSecond = 5 }, "rate_limit.burst"},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "redis" }, "storage.backend"},
		{"unknown format", func(c *config.Config) { c.Storage.Format = "toml" }, "storage.format"},
		{"empty data dir", func(c *config.Config) { c.DataDir = "" }, "data_dir"},
		{"unknown log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"unknown log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			errs := cfg.Validate()
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.want)
			assert.True(t, sigilerr.HasCode(errs[0], sigilerr.CodeConfigValidateInvalidValue))
		})
	}
}

func TestValidate_MemoryBackendNeedsNoDataDir(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Backend = "memory"
	cfg.DataDir = ""
	assert.Empty(t, cfg.Validate())
}

func TestValidate_LogLevelCaseInsensitive(t *testing.T) {
	cfg := validConfig()
	cfg.Log.Level = "DEBUG"
	cfg.Log.Format = "JSON"
	assert.Empty(t, cfg.Validate())
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Networking.Listen = ""
	cfg.Storage.Backend = "nope"
	cfg.Log.Level = "loud"

	errs := cfg.Validate()
	assert.Len(t, errs, 3)
}

func TestFromViper_FlagStyleOverride(t *testing.T) {
	v := viper.New()
	config.SetDefaults(v)
	v.Set("networking.listen", "127.0.0.1:6000")

	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:6000", cfg.Networking.Listen)
}

func TestStorageConfig_Store(t *testing.T) {
	sc := config.StorageConfig{Backend: "sqlite", Format: "yaml"}.Store()
	assert.Equal(t, "sqlite", sc.Backend)
	assert.Equal(t, "yaml", sc.Format)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "ROLODEX_DOTENV_PROBE"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))
}

func TestLoadDotEnv_DoesNotOverrideEnv(t *testing.T) {
	const key = "ROLODEX_DOTENV_KEEP"
	t.Setenv(key, "from-env")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(key+"=from-file\n"), 0o600))

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "from-env", os.Getenv(key))
}

func TestLoadDotEnv_MissingFileIsFine(t *testing.T) {
	assert.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	logger := config.LogConfig{Level: "warn", Format: "json"}.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "contact", "alice")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "alice", rec["contact"])
}

func TestLogConfig_LoggerText(t *testing.T) {
	var buf bytes.Buffer
	config.LogConfig{Level: "debug", Format: "text"}.Logger(&buf).Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rolodex.yaml")

	written, err := config.WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfigYAML, data)

	written, err = config.WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, written, "existing file is left alone")
}
