package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)

				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)

				assert.Equal(t, "unknown", cfg.Ingest.Convention)
				assert.False(t, cfg.Ingest.SuppressEmpty)
				assert.Equal(t, "grouped", cfg.Ingest.Mode)
				assert.Equal(t, int64(32<<20), cfg.Ingest.MaxUploadBytes)

				assert.Equal(t, "prometheus", cfg.Telemetry.MetricExporter)
			},
		},
		{
			name: "environment overrides",
			env: map[string]string{
				"STOCKPULSE_SERVER_PORT":           "9090",
				"STOCKPULSE_INGEST_CONVENTION":     "zero",
				"STOCKPULSE_INGEST_SUPPRESS_EMPTY": "true",
				"STOCKPULSE_INGEST_WORKERS":        "4",
				"STOCKPULSE_LOGGING_LEVEL":         "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, "zero", cfg.Ingest.Convention)
				assert.True(t, cfg.Ingest.SuppressEmpty)
				assert.Equal(t, 4, cfg.Ingest.Workers)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "yaml file below environment",
			file: `
server:
  port: 7000
  read_timeout: 5s
ingest:
  mode: breakdown
  products_file: dict/products.csv
logging:
  output: sideways
`,
			env: map[string]string{"STOCKPULSE_SERVER_PORT": "7100"},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7100, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "breakdown", cfg.Ingest.Mode)
				assert.Equal(t, "dict/products.csv", cfg.Ingest.ProductsFile)
				assert.Equal(t, "console", cfg.Logging.Output, "unknown outputs fall back to console")
			},
		},
		{
			name:    "invalid convention",
			env:     map[string]string{"STOCKPULSE_INGEST_CONVENTION": "maybe"},
			wantErr: `invalid ingest convention: "maybe"`,
		},
		{
			name:    "invalid port",
			env:     map[string]string{"STOCKPULSE_SERVER_PORT": "70000"},
			wantErr: "invalid server port: 70000",
		},
		{
			name:    "malformed yaml",
			file:    "server: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configFile := ""
			if tt.file != "" {
				configFile = filepath.Join(t.TempDir(), "stockpulse.yaml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.file), 0o644))
			}
			t.Setenv(EnvPrefix+"_CONFIG_FILE", configFile)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.validate())
}

func TestValidateRejectsBadIngest(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode", func(c *Config) { c.Ingest.Mode = "flat" }},
		{"upload size", func(c *Config) { c.Ingest.MaxUploadBytes = 0 }},
		{"workers", func(c *Config) { c.Ingest.Workers = 0 }},
		{"origins", func(c *Config) { c.Security.AllowedOrigins = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
