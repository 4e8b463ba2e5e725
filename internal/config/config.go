// Package config assembles the application configuration from the JSON
// config file, an optional .env file and FRAMECALC_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/piwi3910/FrameCalc/internal/model"
	"github.com/piwi3910/FrameCalc/internal/project"
)

// Environment variables that override the config file.
const (
	EnvProductsURL  = "FRAMECALC_PRODUCTS_URL"
	EnvRulesURL     = "FRAMECALC_RULES_URL"
	EnvProductsFile = "FRAMECALC_PRODUCTS_FILE"
	EnvRulesFile    = "FRAMECALC_RULES_FILE"
	EnvTimeoutMs    = "FRAMECALC_TIMEOUT_MS"
	EnvRateLimitRPS = "FRAMECALC_RATE_LIMIT_RPS"
	EnvMaxAttempts  = "FRAMECALC_MAX_ATTEMPTS"
	EnvLogMode      = "FRAMECALC_LOG_MODE"
	EnvExportDir    = "FRAMECALC_EXPORT_DIR"
)

// Load reads the config file at path (defaults when it is missing) and
// applies environment overrides. With no envFiles a .env in the working
// directory is loaded if present; named envFiles must exist. Variables
// already set in the environment win over .env values.
func Load(path string, envFiles ...string) (model.AppConfig, error) {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return model.AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	if path == "" {
		path = project.DefaultConfigPath()
	}
	cfg, err := project.LoadAppConfig(path)
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("load config %s: %w", path, err)
	}

	cfg.ProductsURL = getEnv(EnvProductsURL, cfg.ProductsURL)
	cfg.RulesURL = getEnv(EnvRulesURL, cfg.RulesURL)
	cfg.ProductsFile = getEnv(EnvProductsFile, cfg.ProductsFile)
	cfg.RulesFile = getEnv(EnvRulesFile, cfg.RulesFile)
	cfg.RequestTimeoutMs = getEnvInt(EnvTimeoutMs, cfg.RequestTimeoutMs)
	cfg.RateLimitRPS = getEnvInt(EnvRateLimitRPS, cfg.RateLimitRPS)
	cfg.MaxAttempts = getEnvInt(EnvMaxAttempts, cfg.MaxAttempts)
	cfg.LogMode = getEnv(EnvLogMode, cfg.LogMode)
	cfg.ExportDir = getEnv(EnvExportDir, cfg.ExportDir)

	if err := project.ValidateAppConfig(cfg); err != nil {
		return model.AppConfig{}, err
	}
	return cfg, nil
}

// Require returns an error when value is blank.
func Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required setting: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
