// Package config loads bus settings from a TOML or YAML file and the
// environment.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/openframebox/eventbus"
)

// Environment variables that override file settings.
const (
	EnvLogLevel         = "EVENTBUS_LOG_LEVEL"
	EnvPatternScan      = "EVENTBUS_PATTERN_SCAN"
	EnvMetricsEnabled   = "EVENTBUS_METRICS"
	EnvMetricsNamespace = "EVENTBUS_METRICS_NAMESPACE"
)

// Config holds bus configuration.
type Config struct {
	LogLevel         string `toml:"log_level" yaml:"log_level"`
	PatternScan      bool   `toml:"pattern_scan" yaml:"pattern_scan"`
	MetricsEnabled   bool   `toml:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsNamespace string `toml:"metrics_namespace" yaml:"metrics_namespace"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		LogLevel:         "info",
		MetricsNamespace: "eventbus",
	}
}

// Load reads path (if non-empty and present) over the defaults, then applies
// environment overrides. The format is picked from the file extension.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// File doesn't exist, not an error
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := cfg.decode(filepath.Ext(path), data); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes data in the given format ("toml", "yaml" or "yml") over the
// defaults. The environment is not consulted.
func Parse(format string, data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(format, data); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(format string, data []byte) error {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(c)
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.MetricsNamespace = getEnv(EnvMetricsNamespace, c.MetricsNamespace)

	var err error
	if c.PatternScan, err = getEnvBool(EnvPatternScan, c.PatternScan); err != nil {
		return err
	}
	if c.MetricsEnabled, err = getEnvBool(EnvMetricsEnabled, c.MetricsEnabled); err != nil {
		return err
	}
	return nil
}

// Options builds bus options from the configuration. Logs are written to w
// as JSON; metrics, when enabled, are registered with reg.
func (c *Config) Options(w io.Writer, reg prometheus.Registerer) ([]eventbus.Option, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	opts := []eventbus.Option{
		eventbus.WithLogger(zerolog.New(w).Level(level).With().Timestamp().Logger()),
	}
	if c.PatternScan {
		opts = append(opts, eventbus.WithPatternScan())
	}
	if c.MetricsEnabled {
		opts = append(opts, eventbus.WithMetrics(eventbus.NewMetrics(reg, c.MetricsNamespace)))
	}
	return opts, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
