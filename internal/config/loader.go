package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads and merges configuration from global and project paths.
// Precedence (highest to lowest): project config, global config, defaults.
// Missing files are not errors; malformed JSON is.
func Load(globalPath, projectPath string) (*EngineConfig, error) {
	cfg := DefaultConfig()

	if globalPath != "" {
		if err := mergeConfigFile(cfg, globalPath); err != nil {
			return nil, fmt.Errorf("loading global config: %w", err)
		}
	}
	if projectPath != "" {
		if err := mergeConfigFile(cfg, projectPath); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
	}
	return cfg, nil
}

// LoadDefault loads configuration from conventional paths.
// Global: ~/.planrun/config.json
// Project: .planrun/config.json (relative to cwd)
func LoadDefault() (*EngineConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting home directory: %w", err)
	}
	return Load(
		filepath.Join(homeDir, ".planrun", "config.json"),
		filepath.Join(".planrun", "config.json"),
	)
}

func mergeConfigFile(base *EngineConfig, path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var loaded EngineConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if loaded.Logging.Level != "" {
		base.Logging.Level = loaded.Logging.Level
	}
	if loaded.Logging.JSON {
		base.Logging.JSON = true
	}
	if loaded.Auth.Command != "" {
		base.Auth.Command = loaded.Auth.Command
	}
	if loaded.Auth.TimeoutSeconds > 0 {
		base.Auth.TimeoutSeconds = loaded.Auth.TimeoutSeconds
	}
	if loaded.HTTP.TimeoutSeconds > 0 {
		base.HTTP.TimeoutSeconds = loaded.HTTP.TimeoutSeconds
	}
	if loaded.HTTP.RetryCount > 0 {
		base.HTTP.RetryCount = loaded.HTTP.RetryCount
	}
	if loaded.MaxConcurrent > 0 {
		base.MaxConcurrent = loaded.MaxConcurrent
	}
	return nil
}
