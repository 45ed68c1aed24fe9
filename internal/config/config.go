// Package config loads catalog-loader settings from a TOML file, the
// environment and built-in defaults, in increasing order of precedence
// below command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/Sternrassler/catalog-loader/pkg/catalog"
	"github.com/Sternrassler/catalog-loader/pkg/client"
	"github.com/Sternrassler/catalog-loader/pkg/logging"
)

// Default configuration values.
const (
	DefaultRedisURL = "localhost:6379"
	DefaultAddr     = ":8080"
	DefaultTheme    = "light"
)

// Config represents the catalog-loader configuration.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	HTTP    HTTPConfig    `toml:"http"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	View    ViewConfig    `toml:"view"`
}

// CatalogConfig holds load parameters.
type CatalogConfig struct {
	IndexURL    string `toml:"index_url"`
	Limit       int    `toml:"limit"`
	Concurrency int    `toml:"concurrency"`  // 0 = all details at once
	ItemTimeout string `toml:"item_timeout"` // Go duration, empty = none
}

// HTTPConfig holds upstream client settings.
type HTTPConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"` // Go duration, empty = none
}

// CacheConfig holds the Redis response cache settings.
type CacheConfig struct {
	Enabled  bool   `toml:"enabled"`
	RedisURL string `toml:"redis_url"` // host:port
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// ServerConfig holds settings for the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// ViewConfig holds rendering settings.
type ViewConfig struct {
	Theme string `toml:"theme"` // light, dark
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			IndexURL: catalog.DefaultIndexURL,
			Limit:    catalog.DefaultLimit,
		},
		HTTP: HTTPConfig{
			UserAgent: client.DefaultUserAgent,
		},
		Cache: CacheConfig{
			Enabled:  false,
			RedisURL: DefaultRedisURL,
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
		Server: ServerConfig{
			Addr: DefaultAddr,
		},
		View: ViewConfig{
			Theme: DefaultTheme,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "catalog-loader", "config.toml")
}

// LoadConfig loads configuration from path, then applies environment
// overrides. An empty path uses ConfigPath; a missing file yields defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Catalog.IndexURL = getEnv("CATALOG_INDEX_URL", c.Catalog.IndexURL)
	c.HTTP.UserAgent = getEnv("USER_AGENT", c.HTTP.UserAgent)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
		c.Cache.Enabled = true
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}

	var err error
	if c.Catalog.Limit, err = getEnvInt("CATALOG_LIMIT", c.Catalog.Limit); err != nil {
		return err
	}
	if c.Catalog.Concurrency, err = getEnvInt("CATALOG_CONCURRENCY", c.Catalog.Concurrency); err != nil {
		return err
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Catalog.IndexURL == "" {
		return errors.New("catalog.index_url is required")
	}
	if c.Catalog.Limit <= 0 {
		return fmt.Errorf("catalog.limit must be > 0 (got %d)", c.Catalog.Limit)
	}
	if c.Catalog.Concurrency < 0 {
		return fmt.Errorf("catalog.concurrency must be >= 0 (got %d)", c.Catalog.Concurrency)
	}
	if _, err := parseDuration("catalog.item_timeout", c.Catalog.ItemTimeout); err != nil {
		return err
	}
	if _, err := parseDuration("http.timeout", c.HTTP.Timeout); err != nil {
		return err
	}
	if c.HTTP.UserAgent == "" {
		return errors.New("http.user_agent is required")
	}
	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return errors.New("cache.redis_url is required when the cache is enabled")
	}
	if !logging.ValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.View.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("view.theme %q is not one of light, dark", c.View.Theme)
	}
	return nil
}

// ItemTimeout returns the parsed per-detail timeout; zero when unset.
func (c *Config) ItemTimeout() time.Duration {
	d, _ := parseDuration("catalog.item_timeout", c.Catalog.ItemTimeout)
	return d
}

// HTTPTimeout returns the parsed request timeout; zero when unset.
func (c *Config) HTTPTimeout() time.Duration {
	d, _ := parseDuration("http.timeout", c.HTTP.Timeout)
	return d
}

// LoaderConfig returns the catalog loader settings.
func (c *Config) LoaderConfig() catalog.Config {
	return catalog.Config{
		Concurrency: c.Catalog.Concurrency,
		ItemTimeout: c.ItemTimeout(),
	}
}

// LoggingConfig returns the logger settings; output defaults to stderr.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Log.Level)
	cfg.Pretty = c.Log.Pretty
	return cfg
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be >= 0 (got %s)", field, d)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
