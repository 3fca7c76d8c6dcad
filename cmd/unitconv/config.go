package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	CatalogBuiltin  = "builtin"
	CatalogSQLite   = "sqlite"
	CatalogMsgpack  = "msgpack"
	CatalogProtobuf = "protobuf"

	defaultRatesURL     = "https://open.er-api.com/v6/latest/USD"
	defaultRatesTimeout = 10 * time.Second
)

// Config is the YAML configuration of the CLI.
type Config struct {
	LogLevel  string        `yaml:"log_level"`
	LogFormat string        `yaml:"log_format"`
	Rates     RatesConfig   `yaml:"rates"`
	Catalog   CatalogConfig `yaml:"catalog"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

type RatesConfig struct {
	// Disabled skips the live fetch and always uses the fallback table.
	Disabled bool          `yaml:"disabled"`
	URL      string        `yaml:"url"`
	Timeout  time.Duration `yaml:"timeout"`
}

// CatalogConfig selects where categories come from.
type CatalogConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. ":9090".
	Addr string `yaml:"addr"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Rates: RatesConfig{
			URL:     defaultRatesURL,
			Timeout: defaultRatesTimeout,
		},
		Catalog: CatalogConfig{Source: CatalogBuiltin},
	}
}

// LoadConfig reads path over the defaults. An empty path yields the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		errs = append(errs, fmt.Errorf("invalid log level: %q", c.LogLevel))
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.LogFormat)) {
		errs = append(errs, fmt.Errorf("invalid log format: %q", c.LogFormat))
	}
	if !c.Rates.Disabled {
		if c.Rates.URL == "" {
			errs = append(errs, errors.New("rates.url is required unless rates are disabled"))
		}
		if c.Rates.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("invalid rates.timeout: %s", c.Rates.Timeout))
		}
	}
	switch c.Catalog.Source {
	case CatalogBuiltin:
	case CatalogSQLite, CatalogMsgpack, CatalogProtobuf:
		if c.Catalog.Path == "" {
			errs = append(errs, fmt.Errorf("catalog.path is required for source %q", c.Catalog.Source))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid catalog.source: %q", c.Catalog.Source))
	}
	return errors.Join(errs...)
}
