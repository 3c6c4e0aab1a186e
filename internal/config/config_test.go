// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.ember.example"
  timeout: "15s"

storage:
  driver: "sqlite"
  path: "./client.db"

push:
  platform: "android"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Backend.BaseURL != "https://api.ember.example" {
		t.Errorf("unexpected base_url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Errorf("unexpected timeout: %v", cfg.Backend.Timeout)
	}
	if cfg.Storage.Driver != DriverSQLite {
		t.Errorf("unexpected driver: %q", cfg.Storage.Driver)
	}
	if cfg.Push.Platform != "android" {
		t.Errorf("unexpected platform: %q", cfg.Push.Platform)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("unexpected log level: %q", cfg.Logging.Level)
	}
}

func TestLoad_DefaultTimeout(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.ember.example"
storage:
  driver: "memory"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.Timeout != DefaultBackendTimeout {
		t.Errorf("got timeout %v, want default %v", cfg.Backend.Timeout, DefaultBackendTimeout)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("EMBER_TEST_BASE_URL", "https://staging.ember.example")

	path := writeConfig(t, `
backend:
  base_url: "${EMBER_TEST_BASE_URL}"
storage:
  driver: "memory"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend.BaseURL != "https://staging.ember.example" {
		t.Errorf("env var not expanded, got %q", cfg.Backend.BaseURL)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: "memory"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "base_url") {
		t.Errorf("expected base_url validation error, got %v", err)
	}
}

func TestLoad_SQLiteRequiresPath(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.ember.example"
storage:
  driver: "sqlite"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "storage.path") {
		t.Errorf("expected storage.path validation error, got %v", err)
	}
}

func TestLoad_RedisRequiresAddr(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.ember.example"
storage:
  driver: "redis"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "redis_addr") {
		t.Errorf("expected redis_addr validation error, got %v", err)
	}
}

func TestLoad_UnknownDriver(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.ember.example"
storage:
  driver: "cassandra"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown storage.driver") {
		t.Errorf("expected unknown driver error, got %v", err)
	}
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, `
backend:
  base_url: "https://api.ember.example"
  timeout: "soon"
storage:
  driver: "memory"
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected duration parse error, got %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
