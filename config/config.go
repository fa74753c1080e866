// Package config loads client configuration: built-in defaults, then an
// optional YAML file, then environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultAPIURL      = "http://localhost:3000/api"
	defaultHTTPTimeout = 30 * time.Second

	envAPIURL      = "STOREFRONT_API_URL"
	envDataDir     = "STOREFRONT_DATA_DIR"
	envHTTPTimeout = "STOREFRONT_HTTP_TIMEOUT"
	envLogLevel    = "STOREFRONT_LOG_LEVEL"
)

type Config struct {
	// APIURL is the base URL of the storefront REST API.
	APIURL string `yaml:"api_url"`

	// DataDir holds the per-profile database backing the local cart slot.
	DataDir string `yaml:"data_dir"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// Default returns the built-in configuration. DataDir lands under the
// platform user config directory when one is available.
func Default() Config {
	dataDir := ".storefront"
	if base, err := os.UserConfigDir(); err == nil {
		dataDir = filepath.Join(base, "storefront")
	}

	return Config{
		APIURL:      defaultAPIURL,
		DataDir:     dataDir,
		HTTPTimeout: defaultHTTPTimeout,
		LogLevel:    "info",
	}
}

// Load builds the configuration from defaults, the YAML file at path (a
// missing file is fine when path is empty), and the environment.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err = yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.APIURL = getEnv(envAPIURL, cfg.APIURL)
	cfg.DataDir = getEnv(envDataDir, cfg.DataDir)
	cfg.LogLevel = getEnv(envLogLevel, cfg.LogLevel)
	cfg.HTTPTimeout = getEnvDuration(envHTTPTimeout, cfg.HTTPTimeout)

	return cfg, nil
}

// DatabasePath is where the sqlite profile database lives.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "storefront.db")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
