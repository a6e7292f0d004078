package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=3000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth     AuthConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Audit    AuditConfig
	Policy   PolicyConfig
}

type AuthConfig struct {
	JWTSecret       string        `env:"JWT_SECRET,         required"`
	TokenTTL        time.Duration `env:"JWT_TTL,            default=24h"`
	CookieSecure    bool          `env:"COOKIE_SECURE,      default=false"`
	SignInRateLimit int           `env:"SIGN_IN_RATE_LIMIT, default=10"` // attempts per minute per IP
}

type DatabaseConfig struct {
	Driver       string `env:"DB_DRIVER,         default=pgx"`
	URL          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=25"`
}

// MongoConfig points at the audit store. An empty URI disables auditing.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=acquisitions"`
}

// RedisConfig points at the revocation store. An empty Addr disables it.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type AuditConfig struct {
	Workers int `env:"AUDIT_WORKERS, default=4"`
}

type PolicyConfig struct {
	GuardLastAdminDemotion bool `env:"GUARD_LAST_ADMIN_DEMOTION, default=false"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("config: DB_DRIVER must be pgx or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: JWT_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
