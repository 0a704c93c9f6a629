package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/auth_test")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.HTTPPort)
	}
	if cfg.JWTAccessTTL != 30*time.Minute {
		t.Fatalf("expected 30m access TTL, got %v", cfg.JWTAccessTTL)
	}
	if cfg.ResetTTL != 15*time.Minute {
		t.Fatalf("expected 15m reset TTL, got %v", cfg.ResetTTL)
	}
	if cfg.BodyLimitBytes != 1<<20 {
		t.Fatalf("expected 1MiB body limit, got %d", cfg.BodyLimitBytes)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "tooshort")

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	if !strings.Contains(msg, "DATABASE_URL is required") {
		t.Fatalf("expected DATABASE_URL violation in %q", msg)
	}
	if !strings.Contains(msg, "JWT_SECRET must be at least 32 chars") {
		t.Fatalf("expected JWT_SECRET violation in %q", msg)
	}
}

func TestLoadTTLBounds(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
		want  string
	}{
		{"access too long", "JWT_ACCESS_TTL", "48h", "JWT_ACCESS_TTL must be between 1s and 24h"},
		{"reset too long", "RESET_TOKEN_TTL", "2h", "RESET_TOKEN_TTL must be between 1s and 1h"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMalformedDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "JWT_ACCESS_TTL") {
		t.Fatalf("expected parse error for JWT_ACCESS_TTL, got %v", err)
	}
}

func TestCORSOriginsParsed(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example.com, http://b.example.com ,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[1] != "http://b.example.com" {
		t.Fatalf("expected trimmed origin, got %q", cfg.CORSAllowedOrigins[1])
	}
}

func TestResetURL(t *testing.T) {
	cfg := &Config{FrontendURL: "http://localhost:3000/", ResetPasswordPath: "/reset-password/"}
	got := cfg.ResetURL("tok123")
	want := "http://localhost:3000/reset-password/tok123"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
