package config

import (
	"fmt"

	"github.com/agentregistry-dev/agentconsole/internal/console/flags"
)

// Validate performs runtime validations on the loaded configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if _, err := flags.ParseMode(cfg.Mode); err != nil {
		return err
	}
	switch cfg.FlagsBackend {
	case FlagsBackendBolt, FlagsBackendFile:
		if cfg.FlagsPath == "" {
			return fmt.Errorf("flags path must be set for the %s backend", cfg.FlagsBackend)
		}
	case FlagsBackendMemory:
	default:
		return fmt.Errorf("unknown flags backend %q", cfg.FlagsBackend)
	}
	if cfg.CatalogPath != "" && cfg.CatalogURL != "" {
		return fmt.Errorf("catalog path and catalog url are mutually exclusive")
	}
	if cfg.CatalogTTL < 0 {
		return fmt.Errorf("catalog ttl must not be negative (got %s)", cfg.CatalogTTL)
	}
	if cfg.MetricsTimeout <= 0 {
		return fmt.Errorf("metrics timeout must be positive (got %s)", cfg.MetricsTimeout)
	}
	if cfg.AutosaveDelay <= 0 {
		return fmt.Errorf("autosave delay must be positive (got %s)", cfg.AutosaveDelay)
	}
	if cfg.Logging.SuccessSampleRate < 0 || cfg.Logging.SuccessSampleRate > 1 {
		return fmt.Errorf("log success sample rate must be within [0, 1] (got %v)", cfg.Logging.SuccessSampleRate)
	}
	return nil
}
