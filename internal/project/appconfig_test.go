package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/FrameCalc/internal/model"
)

func TestSaveAndLoadAppConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := model.DefaultAppConfig()
	cfg.ProductsFile = "/data/products.json"
	cfg.RulesFile = "/data/rules.yaml"
	cfg.MaxAttempts = 3
	cfg.RecentExports = []string{"/tmp/quote1.pdf", "/tmp/quote2.xlsx"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if loaded.ProductsFile != "/data/products.json" {
		t.Errorf("expected ProductsFile=/data/products.json, got %s", loaded.ProductsFile)
	}
	if !loaded.UsesFiles() {
		t.Error("expected file source after round trip")
	}
	if loaded.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", loaded.MaxAttempts)
	}
	if len(loaded.RecentExports) != 2 {
		t.Errorf("expected 2 recent exports, got %d", len(loaded.RecentExports))
	}
}

func TestLoadAppConfigMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.ProductsURL != model.DefaultProductsURL {
		t.Errorf("expected default products url, got %s", cfg.ProductsURL)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"log_mode": "production"}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.LogMode != "production" {
		t.Errorf("expected LogMode=production, got %s", cfg.LogMode)
	}
	if cfg.RulesURL != model.DefaultRulesURL || cfg.RateLimitRPS != 5 {
		t.Errorf("absent fields should keep defaults, got %+v", cfg)
	}
	if cfg.RecentExports == nil {
		t.Error("RecentExports should not be nil")
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestSaveAppConfigCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "config.json")
	if err := SaveAppConfig(path, model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file was not created: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	p := DefaultConfigPath()
	if !strings.HasSuffix(p, filepath.Join(".framecalc", "config.json")) {
		t.Errorf("unexpected config path %s", p)
	}
}

func TestLoadAppConfigRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"zero attempts", `{"max_attempts": 0}`},
		{"too many attempts", `{"max_attempts": 11}`},
		{"zero rate limit", `{"rate_limit_rps": 0}`},
		{"negative timeout", `{"request_timeout_ms": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			if err := os.WriteFile(path, []byte(tt.json), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadAppConfig(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestLoadAppConfigCapsRecentExports(t *testing.T) {
	cfg := model.DefaultAppConfig()
	for i := 0; i < RecentExportLimit+5; i++ {
		cfg.RecentExports = append(cfg.RecentExports, fmt.Sprintf("/tmp/quote%d.pdf", i))
	}
	path := filepath.Join(t.TempDir(), "config.json")
	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}

	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if len(loaded.RecentExports) != RecentExportLimit {
		t.Errorf("expected %d recent exports, got %d", RecentExportLimit, len(loaded.RecentExports))
	}
	if loaded.RecentExports[0] != "/tmp/quote0.pdf" {
		t.Errorf("newest export should stay first, got %s", loaded.RecentExports[0])
	}
}

func TestSaveAppConfigLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	if err := SaveAppConfig(filepath.Join(dir, "config.json"), model.DefaultAppConfig()); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("expected only config.json, got %v", entries)
	}
}
