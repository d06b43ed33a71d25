// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package config

import (
	"errors"
	"io/fs"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sigil-dev/rolodex/internal/store"
	sigilerr "github.com/sigil-dev/rolodex/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. ROLODEX_DATA_DIR.
const EnvPrefix = "ROLODEX"

// Config is the top-level rolodex configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	DataDir    string           `mapstructure:"data_dir"`
	Log        LogConfig        `mapstructure:"log"`
}

// NetworkingConfig controls the HTTP listener.
type NetworkingConfig struct {
	Listen      string          `mapstructure:"listen"`
	CORSOrigins []string        `mapstructure:"cors_origins"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig sets per-client request limits. A zero rate disables them.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// StorageConfig selects the storage backend and snapshot format.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Format  string `mapstructure:"format"`
}

// Store converts to the storage factory's config.
func (s StorageConfig) Store() *store.StorageConfig {
	return &store.StorageConfig{Backend: s.Backend, Format: s.Format}
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	validBackends   = []string{"file", "memory", "sqlite"}
	validFormats    = []string{"json", "yaml"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("networking.listen", "127.0.0.1:5000")
	v.SetDefault("networking.cors_origins", []string{"*"})
	v.SetDefault("networking.rate_limit.requests_per_second", 0)
	v.SetDefault("networking.rate_limit.burst", 0)
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.format", "json")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// SetupEnv binds ROLODEX_* environment variables, with "." in keys mapped
// to "_".
func SetupEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadDotEnv loads a .env file into the process environment. Variables
// already set are left alone, and a missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return sigilerr.Wrap(err, sigilerr.CodeConfigLoadReadFailure, "loading env file", sigilerr.FieldPath(path))
	}
	return nil
}

// Load reads configuration from the given path (or defaults only) with
// .env and environment variable overrides.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(""); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)
	SetupEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, sigilerr.Errorf(sigilerr.CodeConfigLoadReadFailure, "reading config %s: %w", path, err)
		}
	}

	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "unmarshalling config: %w", err)
	}

	// Env overrides arrive as one comma-separated string.
	cfg.Networking.CORSOrigins = splitList(cfg.Networking.CORSOrigins)

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "validating config: %w", errors.Join(errs...))
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors, collecting every
// issue rather than stopping at the first.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateLog()...)

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue, "config: networking.listen must not be empty"))
	} else {
		_, portStr, err := net.SplitHostPort(c.Networking.Listen)
		if err != nil {
			errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
				"config: networking.listen must be a valid host:port address, got %q: %w",
				c.Networking.Listen, err,
			))
		} else if port, err := strconv.Atoi(portStr); err != nil {
			errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
				"config: networking.listen port must be a number, got %q", portStr,
			))
		} else if port < 1 || port > 65535 {
			errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
				"config: networking.listen port must be between 1 and 65535, got %d", port,
			))
		}
	}

	for i, origin := range c.Networking.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
				"config: networking.cors_origins[%d] must not be empty", i,
			))
		}
	}

	rl := c.Networking.RateLimit
	if rl.RequestsPerSecond < 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: networking.rate_limit.requests_per_second must not be negative, got %g", rl.RequestsPerSecond,
		))
	}
	if rl.RequestsPerSecond > 0 && rl.Burst <= 0 {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: networking.rate_limit.burst must be positive when a rate is set, got %d", rl.Burst,
		))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	if !slices.Contains(validBackends, c.Storage.Backend) {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of %v, got %q", validBackends, c.Storage.Backend,
		))
	}
	if !slices.Contains(validFormats, c.Storage.Format) {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: storage.format must be one of %v, got %q", validFormats, c.Storage.Format,
		))
	}
	if c.Storage.Backend != "memory" && c.DataDir == "" {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: data_dir must not be empty for the %s backend", c.Storage.Backend,
		))
	}

	return errs
}

func (c *Config) validateLog() []error {
	var errs []error

	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: log.level must be one of %v, got %q", validLogLevels, c.Log.Level,
		))
	}
	if !slices.Contains(validLogFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, sigilerr.Errorf(sigilerr.CodeConfigValidateInvalidValue,
			"config: log.format must be one of %v, got %q", validLogFormats, c.Log.Format,
		))
	}

	return errs
}

func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for part := range strings.SplitSeq(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
