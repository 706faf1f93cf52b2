// Package config loads and validates scanner configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shelfscan/shelfscan/internal/catalog"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scan     ScanConfig       `mapstructure:"scan"`
	Input    InputConfig      `mapstructure:"input"`
	Output   OutputConfig     `mapstructure:"output"`
	Catalogs catalog.Registry `mapstructure:"catalogs"`
	Server   ServerConfig     `mapstructure:"server"`
	Logging  LoggingConfig    `mapstructure:"logging"`
}

// ScanConfig governs the worker pool and the rendering sessions.
type ScanConfig struct {
	Workers          int     `mapstructure:"workers"`
	SettleTimeoutSec int     `mapstructure:"settle_timeout_seconds"`
	PollIntervalMs   int     `mapstructure:"poll_interval_ms"`
	UserAgent        string  `mapstructure:"user_agent"`
	CatalogQPS       float64 `mapstructure:"catalog_qps"`
	CacheSize        int     `mapstructure:"cache_size"`
}

// InputConfig locates the reading-list export.
type InputConfig struct {
	Path  string `mapstructure:"path"`
	Shelf string `mapstructure:"shelf"`
}

// OutputConfig controls result serialization.
type OutputConfig struct {
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

// ServerConfig toggles the progress/metrics HTTP endpoint.
type ServerConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. An empty path skips the config
// file and relies on defaults plus SHELFSCAN_* environment variables.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHELFSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scan.workers", 16)
	v.SetDefault("scan.settle_timeout_seconds", 15)
	v.SetDefault("scan.poll_interval_ms", 250)
	v.SetDefault("scan.user_agent", "")
	v.SetDefault("scan.catalog_qps", 0)
	v.SetDefault("scan.cache_size", 256)
	v.SetDefault("input.path", "reading_list.csv")
	v.SetDefault("input.shelf", "to-read")
	v.SetDefault("output.path", "results.csv")
	v.SetDefault("output.format", "csv")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be > 0")
	}
	if c.Scan.SettleTimeoutSec <= 0 {
		return fmt.Errorf("scan.settle_timeout_seconds must be > 0")
	}
	if c.Scan.PollIntervalMs <= 0 {
		return fmt.Errorf("scan.poll_interval_ms must be > 0")
	}
	switch c.Output.Format {
	case "csv", "jsonl":
	default:
		return fmt.Errorf("output.format must be csv or jsonl")
	}
	if c.Server.Enabled && c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0 when the server is enabled")
	}
	return nil
}

// SettleTimeout converts the settle timeout to a duration.
func (c Config) SettleTimeout() time.Duration {
	return time.Duration(c.Scan.SettleTimeoutSec) * time.Second
}

// PollInterval converts the readiness poll interval to a duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.Scan.PollIntervalMs) * time.Millisecond
}
