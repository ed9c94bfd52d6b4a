// Package config provides configuration loading for the unbcli command
// using koanf: defaults, then an optional YAML file, then UNB_ environment
// variables, highest last.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultBaseURL is the production API base path.
	DefaultBaseURL = "https://unbelievaboat.com/api/v1"

	// DefaultTimeout is the per-request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultTelemetrySamplingRate samples every trace.
	DefaultTelemetrySamplingRate = 1.0

	// envPrefix is the prefix for environment overrides, e.g. UNB_API_TOKEN.
	envPrefix = "UNB_"
)

// Config is the root configuration structure.
type Config struct {
	API       APIConfig       `koanf:"api"       validate:"required"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// APIConfig configures the API client.
type APIConfig struct {
	// Token is the application token from unbelievaboat.com/applications.
	Token string `koanf:"token" validate:"required"`

	// BaseURL is the API base path.
	BaseURL string `koanf:"base_url" validate:"required,url"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `koanf:"timeout" validate:"required,min=1s"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `koanf:"level"  validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json text"`
	File   string `koanf:"file"`
}

// TelemetryConfig configures OpenTelemetry export.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint" validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"gte=0,lte=1"`
}

// defaults are the base configuration before file and env overrides.
func defaults() map[string]any {
	return map[string]any{
		"api.base_url":            DefaultBaseURL,
		"api.timeout":             DefaultTimeout,
		"log.level":               "info",
		"log.format":              "text",
		"telemetry.sampling_rate": DefaultTelemetrySamplingRate,
	}
}

// Load reads configuration from defaults, the optional YAML file at path,
// and UNB_-prefixed environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	// UNB_API_TOKEN → api.token, UNB_API_BASE_URL → api.base_url: the
	// section is everything before the first underscore.
	envProvider := env.Provider(envPrefix, ".", func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if section, rest, found := strings.Cut(key, "_"); found {
			return section + "." + rest
		}
		return key
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// ErrMissingToken is returned when no token is configured at all.
var ErrMissingToken = errors.New("no API token configured: set api.token or UNB_API_TOKEN")
