package config

import (
	"testing"
	"time"
)

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.RatePerSecond != 10 || cfg.RateBurst != 20 {
		t.Errorf("expected rate 10 burst 20, got %v/%d", cfg.RatePerSecond, cfg.RateBurst)
	}
	if cfg.MaxBodyBytes != 4<<20 {
		t.Errorf("expected 4MiB body limit, got %d", cfg.MaxBodyBytes)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected 30s shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("expected wildcard CORS, got %v", cfg.CORSOrigins)
	}
}

func TestLoadServerConfig_Env(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_PER_SECOND", "2.5")
	t.Setenv("MAX_BODY_BYTES", "1024")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("GEXLEVELS_CONFIG", "/etc/gexlevels.yaml")

	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "9090" || cfg.MaxBodyBytes != 1024 || cfg.ConfigPath != "/etc/gexlevels.yaml" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.RateBurst != 5 {
		t.Errorf("expected burst to default to twice the rate, got %d", cfg.RateBurst)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSOrigins)
	}
}

func TestLoadServerConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"RATE_PER_SECOND", "fast"},
		{"RATE_PER_SECOND", "-1"},
		{"RATE_BURST", "0"},
		{"MAX_BODY_BYTES", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := LoadServerConfig(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
