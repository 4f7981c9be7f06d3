// Package config loads the quill-mockd configuration from YAML by
// environment name, with ${VAR} and ${VAR:-default} expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the mock server configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Paging    PagingConfig    `yaml:"paging"`
	Auth      AuthConfig      `yaml:"auth"`
	Fixtures  FixturesConfig  `yaml:"fixtures"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	Tokens []string `yaml:"tokens"` // accepted bearer tokens; empty = accept any
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// RateLimitConfig simulates the remote service's call budget.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	Burst             int     `yaml:"burst"`
	WindowSec         int     `yaml:"window_sec"` // reset window advertised in headers
}

// PagingConfig holds pagination settings.
type PagingConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// FixturesConfig points at the seeded databases and pages.
type FixturesConfig struct {
	Path string `yaml:"path"` // JSON fixture file; empty = builtin demo data
}

// Load reads config/<env>.yaml, expands environment references, applies
// defaults and validates the result.
func Load(env string) (Config, error) {
	path, err := locate(env)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 3
	}
	if c.RateLimit.WindowSec <= 0 {
		c.RateLimit.WindowSec = 60
	}
	if c.Paging.DefaultPageSize <= 0 {
		c.Paging.DefaultPageSize = 20
	}
	if c.Paging.MaxPageSize <= 0 {
		c.Paging.MaxPageSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return fmt.Errorf("rate_limit.requests_per_second must not be negative, got %f",
			c.RateLimit.RequestsPerSecond)
	}
	if c.Paging.MaxPageSize < c.Paging.DefaultPageSize {
		return fmt.Errorf("paging.max_page_size (%d) must be >= default_page_size (%d)",
			c.Paging.MaxPageSize, c.Paging.DefaultPageSize)
	}
	return nil
}

// locate finds config/<env>.yaml next to the working directory or, when run
// from a test or another directory, next to the module root.
func locate(env string) (string, error) {
	filename := env + ".yaml"

	candidates := []string{filepath.Join("config", filename)}
	if _, src, _, ok := runtime.Caller(0); ok {
		// internal/config/config.go -> module root
		root := filepath.Dir(filepath.Dir(filepath.Dir(src)))
		candidates = append(candidates, filepath.Join(root, "config", filename))
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("config %s not found (looked in %s)",
		filename, strings.Join(candidates, ", "))
}

// expandEnvVars replaces ${VAR} with the variable's value and ${VAR:-def}
// with def when VAR is unset or empty.
func expandEnvVars(data []byte) []byte {
	return []byte(os.Expand(string(data), func(expr string) string {
		name, def, hasDefault := strings.Cut(expr, ":-")
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return ""
	}))
}
