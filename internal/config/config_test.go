package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/craftwork/handwerk/internal/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	os.Unsetenv("HANDWERK_ADDR")
	os.Unsetenv("HANDWERK_JWT_SECRET")
	os.Unsetenv("HANDWERK_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "handwerk.db" {
		t.Fatalf("expected default db path, got %q", cfg.DatabasePath)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("expected 24h token duration, got %v", cfg.TokenDuration)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("expected 15s api timeout, got %v", cfg.APITimeout)
	}
	if cfg.WorkerCount != 2 {
		t.Fatalf("expected 2 workers, got %d", cfg.WorkerCount)
	}
}

func TestLoadConfig_Env(t *testing.T) {
	os.Setenv("HANDWERK_ADDR", ":9090")
	os.Setenv("HANDWERK_DATABASE_PATH", "/tmp/test.db")
	defer os.Unsetenv("HANDWERK_ADDR")
	defer os.Unsetenv("HANDWERK_DATABASE_PATH")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from env, got %q", cfg.Addr)
	}
	if cfg.DatabasePath != "/tmp/test.db" {
		t.Fatalf("expected db path from env, got %q", cfg.DatabasePath)
	}
}

func TestLoadConfig_YAMLOverridesEnv(t *testing.T) {
	os.Setenv("HANDWERK_ADDR", ":9090")
	defer os.Unsetenv("HANDWERK_ADDR")

	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "addr: \":7070\"\njwt_secret: \"filesecret\"\nworker_count: 8\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.JWTSecret != "filesecret" {
		t.Fatalf("expected jwt secret from file, got %q", cfg.JWTSecret)
	}
	if cfg.WorkerCount != 8 {
		t.Fatalf("expected worker count from file, got %d", cfg.WorkerCount)
	}
	// fields absent from the file keep their defaults
	if cfg.DatabasePath != "handwerk.db" {
		t.Fatalf("expected default db path, got %q", cfg.DatabasePath)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
