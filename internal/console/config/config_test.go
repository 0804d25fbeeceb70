package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "studio", cfg.Mode)
	assert.Equal(t, FlagsBackendBolt, cfg.FlagsBackend)
	assert.True(t, strings.HasSuffix(cfg.FlagsPath, filepath.Join("agentconsole", "flags.db")))
	assert.Equal(t, 60*time.Second, cfg.CatalogTTL)
	assert.Equal(t, 5*time.Second, cfg.MetricsTimeout)
	assert.Equal(t, time.Second, cfg.AutosaveDelay)
	assert.True(t, cfg.SeedDemoData)
	assert.True(t, cfg.EnableMCP)
	assert.Equal(t, 0.1, cfg.Logging.SuccessSampleRate)
	require.NoError(t, Validate(cfg))
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONSOLE_MODE", "dev")
	t.Setenv("CONSOLE_FLAGS_BACKEND", "file")
	t.Setenv("CONSOLE_AUTOSAVE_DELAY", "250ms")
	t.Setenv("CONSOLE_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("CONSOLE_LOG_SUCCESS_SAMPLE_RATE", "1")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Mode)
	assert.True(t, strings.HasSuffix(cfg.FlagsPath, "flags.json"))
	assert.Equal(t, 250*time.Millisecond, cfg.AutosaveDelay)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 1.0, cfg.Logging.SuccessSampleRate)
}

func TestNewConfig_ExplicitFlagsPathIsKept(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONSOLE_FLAGS_PATH", "/custom/flags.db")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.Equal(t, "/custom/flags.db", cfg.FlagsPath)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Mode:           "studio",
			FlagsBackend:   FlagsBackendMemory,
			MetricsTimeout: time.Second,
			AutosaveDelay:  time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "prod" }, wantErr: "unknown console mode"},
		{name: "unknown backend", mutate: func(c *Config) { c.FlagsBackend = "redis" }, wantErr: "unknown flags backend"},
		{name: "bolt without path", mutate: func(c *Config) { c.FlagsBackend = FlagsBackendBolt }, wantErr: "flags path"},
		{name: "both catalog sources", mutate: func(c *Config) { c.CatalogPath = "a.yaml"; c.CatalogURL = "http://x" }, wantErr: "mutually exclusive"},
		{name: "zero metrics timeout", mutate: func(c *Config) { c.MetricsTimeout = 0 }, wantErr: "metrics timeout"},
		{name: "zero autosave delay", mutate: func(c *Config) { c.AutosaveDelay = 0 }, wantErr: "autosave delay"},
		{name: "sample rate above one", mutate: func(c *Config) { c.Logging.SuccessSampleRate = 2 }, wantErr: "sample rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Error(t, Validate(nil))
}
