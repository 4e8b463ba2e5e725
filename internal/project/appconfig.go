package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/FrameCalc/internal/model"
)

// Limits enforced on a loaded config.
const (
	MaxAttemptsLimit  = 10
	RecentExportLimit = 10
)

// ErrInvalidConfig marks a config value the catalog source cannot work with.
var ErrInvalidConfig = errors.New("invalid config")

// DefaultConfigDir returns ~/.framecalc, or ./.framecalc when the home
// directory is unknown.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".framecalc")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// ValidateAppConfig checks the HTTP source settings.
func ValidateAppConfig(cfg model.AppConfig) error {
	switch {
	case cfg.MaxAttempts < 1 || cfg.MaxAttempts > MaxAttemptsLimit:
		return fmt.Errorf("%w: max_attempts must be 1-%d, got %d", ErrInvalidConfig, MaxAttemptsLimit, cfg.MaxAttempts)
	case cfg.RateLimitRPS < 1:
		return fmt.Errorf("%w: rate_limit_rps must be positive, got %d", ErrInvalidConfig, cfg.RateLimitRPS)
	case cfg.RequestTimeoutMs < 0:
		return fmt.Errorf("%w: request_timeout_ms must not be negative, got %d", ErrInvalidConfig, cfg.RequestTimeoutMs)
	}
	return nil
}

// SaveAppConfig writes config as JSON through a temporary file in the same
// directory, so a crash never leaves a half-written config behind.
func SaveAppConfig(path string, config model.AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// LoadAppConfig reads the config at path on top of DefaultAppConfig. A
// missing file yields the defaults. Out-of-range HTTP settings are rejected
// and RecentExports is capped at RecentExportLimit.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return model.AppConfig{}, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, err
	}
	if err := ValidateAppConfig(config); err != nil {
		return model.AppConfig{}, err
	}

	if config.RecentExports == nil {
		config.RecentExports = []string{}
	}
	if len(config.RecentExports) > RecentExportLimit {
		config.RecentExports = config.RecentExports[:RecentExportLimit]
	}
	return config, nil
}
