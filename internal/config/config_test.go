package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithDefaults_Succeeds(t *testing.T) {
	// Ensure envs are clean to use defaults
	os.Unsetenv("DB_PATH")
	os.Unsetenv("HTTP_ADDRESS")
	os.Unsetenv("GRPC_ADDRESS")
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("TOKEN_TTL")
	os.Unsetenv("SESSION_STORE")
	cfg, err := LoadWithDefaults()
	if err != nil {
		t.Fatalf("LoadWithDefaults: %v", err)
	}
	if cfg.GRPC.Address == "" || cfg.HTTP.Address == "" || cfg.Database.Path == "" || cfg.Auth.JWTSecret == "" {
		t.Fatalf("unexpected empty defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 72*time.Hour || cfg.Session.Type != "memory" || cfg.I18n.DefaultLang != "ar" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	// Clear JWT_SECRET ensures error
	os.Unsetenv("JWT_SECRET")
	// Other vars can be set or default
	t.Setenv("DB_PATH", "test.db")
	t.Setenv("GRPC_ADDRESS", ":1234")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET is not set")
	}
	// When set, it should succeed
	t.Setenv("JWT_SECRET", "x")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with secret set: %v", err)
	}
	if cfg.Database.Path != "test.db" || cfg.GRPC.Address != ":1234" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("TOKEN_TTL", "forever")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid TOKEN_TTL")
	}
	t.Setenv("TOKEN_TTL", "1h")
	t.Setenv("REDIS_DB", "zero")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid REDIS_DB")
	}
}

func TestLoadFile_ResolvesPlaceholders(t *testing.T) {
	os.Unsetenv("CITYMOVER_SECRET")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CITYMOVER_HTTP", ":9090")
	path := filepath.Join(t.TempDir(), "citymover.yaml")
	content := `
http:
  address: "${CITYMOVER_HTTP:8080}"
auth:
  jwt_secret: "${CITYMOVER_SECRET:file-secret}"
  token_ttl: 2h
session:
  type: redis
  redis:
    addr: "127.0.0.1:6380"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Address != ":9090" {
		t.Fatalf("env placeholder not resolved: %q", cfg.HTTP.Address)
	}
	if cfg.Auth.JWTSecret != "file-secret" {
		t.Fatalf("default placeholder not used: %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour || cfg.Session.Type != "redis" || cfg.Session.Redis.Addr != "127.0.0.1:6380" {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.GRPC.Address == "" {
		t.Fatalf("unset keys should keep defaults")
	}
}

func TestLoadFile_EnvSecretWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	path := filepath.Join(t.TempDir(), "citymover.yaml")
	if err := os.WriteFile(path, []byte("auth:\n  jwt_secret: from-file\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Fatalf("JWT_SECRET should override the file, got %q", cfg.Auth.JWTSecret)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestConfig_StringMasksSecret(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "super-secret"}}
	if s := cfg.String(); s == "" || strings.Contains(s, "super-secret") {
		t.Fatalf("secret leaked: %s", s)
	}
}
