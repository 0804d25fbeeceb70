package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/agentregistry-dev/agentconsole/internal/console/logging"
)

// EnvPrefix is prepended to every configuration variable.
const EnvPrefix = "CONSOLE_"

// Config holds the console server configuration.
type Config struct {
	ServerAddress      string        `env:"SERVER_ADDRESS" envDefault:":8080"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	Mode               string        `env:"MODE" envDefault:"studio"`
	FlagsBackend       string        `env:"FLAGS_BACKEND" envDefault:"bolt"`
	FlagsPath          string        `env:"FLAGS_PATH"`
	CatalogPath        string        `env:"CATALOG_PATH"`
	CatalogURL         string        `env:"CATALOG_URL"`
	CatalogToken       string        `env:"CATALOG_TOKEN"`
	CatalogTTL         time.Duration `env:"CATALOG_TTL" envDefault:"60s"`
	MetricsBaseURL     string        `env:"METRICS_BASE_URL"`
	MetricsToken       string        `env:"METRICS_TOKEN"`
	MetricsTimeout     time.Duration `env:"METRICS_TIMEOUT" envDefault:"5s"`
	AutosaveDelay      time.Duration `env:"AUTOSAVE_DELAY" envDefault:"1s"`
	JWTSecret          string        `env:"JWT_SECRET"`
	JWTIssuer          string        `env:"JWT_ISSUER"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	SeedDemoData       bool          `env:"SEED_DEMO_DATA" envDefault:"true"`
	EnableMCP          bool          `env:"ENABLE_MCP" envDefault:"true"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Logging logging.EventLoggingConfig
}

// Flags backends.
const (
	FlagsBackendBolt   = "bolt"
	FlagsBackendFile   = "file"
	FlagsBackendMemory = "memory"
)

// NewConfig loads an optional .env file from the working directory and parses
// the environment into a Config.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.FlagsPath == "" {
		cfg.FlagsPath = defaultFlagsPath(cfg.FlagsBackend)
	}
	return cfg, nil
}

func defaultFlagsPath(backend string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	name := "flags.db"
	if backend == FlagsBackendFile {
		name = "flags.json"
	}
	return filepath.Join(dir, "agentconsole", name)
}
