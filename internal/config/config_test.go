package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("APPOINTMENT_OVERLAP_BUFFER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.OverlapBuffer != 30*time.Minute {
		t.Fatalf("expected default overlap buffer, got %s", cfg.OverlapBuffer)
	}
	if cfg.BusinessOpen != "08:00" || cfg.BusinessClose != "18:00" {
		t.Fatalf("expected default business hours, got %s-%s", cfg.BusinessOpen, cfg.BusinessClose)
	}
	if cfg.MaxTurnHistory != 20 {
		t.Fatalf("expected default turn history, got %d", cfg.MaxTurnHistory)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("APPOINTMENT_OVERLAP_BUFFER", "45m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://teslaelectricidad.pe, https://www.teslaelectricidad.pe")
	t.Setenv("SESSION_TTL", "1h")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if cfg.OverlapBuffer != 45*time.Minute {
		t.Fatalf("expected overlap buffer override, got %s", cfg.OverlapBuffer)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "https://teslaelectricidad.pe" {
		t.Fatalf("expected parsed origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.SessionTTL != time.Hour {
		t.Fatalf("expected session TTL override, got %s", cfg.SessionTTL)
	}
}
