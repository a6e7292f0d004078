package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":   "secret",
		"DATABASE_URL": "postgres://localhost/acquisitions",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "3000" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.SignInRateLimit != 10 || cfg.Auth.CookieSecure {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Database.Driver != "pgx" || cfg.Database.MaxOpenConns != 25 {
		t.Fatalf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Mongo.URI != "" || cfg.Redis.Addr != "" {
		t.Fatalf("optional stores must default to disabled")
	}
	if cfg.Policy.GuardLastAdminDemotion {
		t.Fatalf("demotion guard must default to off")
	}
	if cfg.IsProduction() {
		t.Fatalf("development is not production")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                "secret",
		"JWT_TTL":                   "2h",
		"DB_DRIVER":                 "sqlite",
		"DATABASE_URL":              "file:dev.db",
		"REDIS_ADDR":                "localhost:6379",
		"GUARD_LAST_ADMIN_DEMOTION": "true",
		"ENV":                       "production",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour || cfg.Database.Driver != "sqlite" || !cfg.Policy.GuardLastAdminDemotion {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production")
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"DATABASE_URL": "x"}},
		{"missing database url", map[string]string{"JWT_SECRET": "s"}},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "x", "DB_DRIVER": "mysql"}},
		{"bad ttl", map[string]string{"JWT_SECRET": "s", "DATABASE_URL": "x", "JWT_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFrom(context.Background(), envconfig.MapLookuper(tt.env)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
