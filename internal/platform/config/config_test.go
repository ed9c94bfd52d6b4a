package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies the built-in defaults with no file or env.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultTelemetrySamplingRate, cfg.Telemetry.SamplingRate)
	assert.False(t, cfg.Telemetry.Enabled)
}

// TestLoad_File verifies YAML file values override defaults.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  token: file-token
  timeout: 10s
log:
  level: debug
  format: json
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.API.Token)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
}

// TestLoad_MissingFile verifies a named but absent file is an error.
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestLoad_Env verifies UNB_ environment overrides, including keys whose
// tail contains underscores.
func TestLoad_Env(t *testing.T) {
	t.Setenv("UNB_API_TOKEN", "env-token")
	t.Setenv("UNB_API_BASE_URL", "http://localhost:9999/api/v1")
	t.Setenv("UNB_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, "http://localhost:9999/api/v1", cfg.API.BaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

// TestLoad_EnvOverridesFile verifies precedence: env wins over file.
func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  token: file-token\n"), 0o600))

	t.Setenv("UNB_API_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.API.Token)
}

// TestValidate verifies the validation rules.
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: APIConfig{
				Token:   "x",
				BaseURL: DefaultBaseURL,
				Timeout: DefaultTimeout,
			},
			Log:       LogConfig{Level: "info", Format: "text"},
			Telemetry: TelemetryConfig{SamplingRate: 1.0},
		}
	}

	require.NoError(t, valid().Validate())

	missingToken := valid()
	missingToken.API.Token = ""
	assert.Error(t, missingToken.Validate())

	badURL := valid()
	badURL.API.BaseURL = "not a url"
	assert.Error(t, badURL.Validate())

	badLevel := valid()
	badLevel.Log.Level = "loud"
	assert.Error(t, badLevel.Validate())

	badRate := valid()
	badRate.Telemetry.SamplingRate = 2.0
	assert.Error(t, badRate.Validate())

	// Telemetry endpoint is required only when enabled.
	enabled := valid()
	enabled.Telemetry.Enabled = true
	assert.Error(t, enabled.Validate())
	enabled.Telemetry.Endpoint = "localhost:4317"
	assert.NoError(t, enabled.Validate())
}
