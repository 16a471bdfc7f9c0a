package config

import (
	"testing"
	"time"
)

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/patho")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if !cfg.IsDev() {
		t.Error("expected default env to be development")
	}
	if cfg.RequestTimeout != 30 {
		t.Errorf("expected default request timeout 30, got %d", cfg.RequestTimeout)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %s", cfg.Timeout())
	}
	if len(cfg.CORSOrigins) == 0 {
		t.Error("expected default CORS origins")
	}
}

func TestLoadSplitsCORSOrigins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/patho")
	t.Setenv("CORS_ORIGINS", "https://patho.example,https://admin.patho.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSOrigins)
	}
	if cfg.CORSOrigins[1] != "https://admin.patho.example" {
		t.Errorf("unexpected origin: %s", cfg.CORSOrigins[1])
	}
}

func TestValidateProductionRequiresAuth(t *testing.T) {
	cfg := &Config{Env: "production", RequestTimeout: 30}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when production has no auth configuration")
	}

	cfg.JWTSigningKey = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config with signing key, got %v", err)
	}
}

func TestValidateIssuerNeedsJWKS(t *testing.T) {
	cfg := &Config{Env: "production", AuthIssuer: "https://issuer.example", RequestTimeout: 30}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when AUTH_ISSUER is set without AUTH_JWKS_URL")
	}

	cfg.AuthJWKSURL = "https://issuer.example/.well-known/jwks.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConnBounds(t *testing.T) {
	cfg := &Config{Env: "development", RequestTimeout: 30, DBMinConns: 10, DBMaxConns: 5}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when min conns exceed max conns")
	}
}
