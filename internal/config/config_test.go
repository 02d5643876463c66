package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "REDIS_ADDR", "PROCESSING_DELAY", "MAX_UPLOAD_BYTES", "TIMEZONE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected Port '8080', got '%s'", cfg.Port)
	}
	if cfg.Upload.ProcessingDelay != 1500*time.Millisecond {
		t.Errorf("Expected 1.5s processing delay, got %s", cfg.Upload.ProcessingDelay)
	}
	if cfg.Upload.MaxBytes != 20*1024*1024 {
		t.Errorf("Expected 20MiB upload cap, got %d", cfg.Upload.MaxBytes)
	}
	if cfg.Session.Lifetime != 12*time.Hour {
		t.Errorf("Expected 12h session lifetime, got %s", cfg.Session.Lifetime)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("Expected CORS origins [*], got %v", cfg.CORSOrigins)
	}
	if cfg.HasDatabase() {
		t.Error("Should not have a database configured")
	}
	if cfg.HasQueue() {
		t.Error("Should not have a queue configured")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PROCESSING_DELAY", "0s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Expected Port '9090', got '%s'", cfg.Port)
	}
	if cfg.Upload.ProcessingDelay != 0 {
		t.Errorf("Expected no processing delay, got %s", cfg.Upload.ProcessingDelay)
	}
	if !cfg.HasQueue() {
		t.Error("Should have a queue configured")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoadDotEnvFile(t *testing.T) {
	_ = os.Unsetenv("DATABASE_URL")
	t.Cleanup(func() { _ = os.Unsetenv("DATABASE_URL") })

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("DATABASE_URL=postgres://localhost/tcxview\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/tcxview" {
		t.Errorf("Expected DatabaseURL from .env, got '%s'", cfg.DatabaseURL)
	}
	if !cfg.HasDatabase() {
		t.Error("Should have a database configured")
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	cfg.Upload.MaxBytes = 1

	if err := cfg.Validate(); err != nil {
		t.Errorf("Should not error with valid config: %v", err)
	}

	cfg.Upload.ProcessingDelay = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative processing delay")
	}

	cfg.Upload.ProcessingDelay = 0
	cfg.Upload.MaxBytes = 0
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero upload cap")
	}

	cfg.Upload.MaxBytes = 1
	cfg.Timezone = "Nowhere/Invalid"
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for unknown timezone")
	}
}
