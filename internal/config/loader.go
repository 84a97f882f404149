package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file location used when no --config flag is
// given.
const DefaultPath = "shopsage.yaml"

// Load reads the config file at path, falling back to defaults when the
// file does not exist or cannot be parsed. Secrets and connection URLs
// may be overridden through environment variables, which always win
// over file values.
func Load(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		slog.Debug("config file not found, using defaults", "path", path)
	case err != nil:
		slog.Warn("failed to read config file, using defaults", "path", path, "error", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			slog.Warn("failed to parse config file, using defaults", "path", path, "error", err)
			cfg = DefaultConfig()
		}
	}

	applyEnvOverrides(cfg)
	return cfg
}

// Save writes the config as YAML, creating parent directories as
// needed. File mode is restrictive since the config may carry API keys.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_BASE"); v != "" {
		cfg.Model.APIBase = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("MEILI_HOST"); v != "" {
		cfg.Meilisearch.Host = v
	}
	if v := os.Getenv("MEILI_MASTER_KEY"); v != "" {
		cfg.Meilisearch.APIKey = v
	}
}
