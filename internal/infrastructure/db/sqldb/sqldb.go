// Package sqldb holds the relational storage of users. Postgres (through
// pgx) is the production engine; the embedded SQLite driver serves local
// development and tests. Queries are written with "?" placeholders and
// rebound per driver by sqlx.
package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	defaultTimeout      = 5 * time.Second
	defaultMaxOpenConns = 25
)

// Config captures the settings required to open the users database.
type Config struct {
	Driver       string
	DSN          string
	MaxOpenConns int
	Timeout      time.Duration
}

// Open connects to the configured engine and verifies connectivity with a
// ping. The caller owns the returned handle.
func Open(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var db *sqlx.DB
	switch cfg.Driver {
	case DriverPostgres, "":
		pgCfg, err := pgx.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqldb: parse dsn: %w", err)
		}
		pgCfg.ConnectTimeout = timeout

		db = sqlx.NewDb(stdlib.OpenDB(*pgCfg), DriverPostgres)
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = defaultMaxOpenConns
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(maxOpen)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		var err error
		db, err = sqlx.Open(DriverSQLite, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqldb: open sqlite: %w", err)
		}
		// a single connection serialises writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("sqldb: unsupported driver %q", cfg.Driver)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqldb: ping: %w", err)
	}

	return db, nil
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	name          VARCHAR(255) NOT NULL,
	email         VARCHAR(255) NOT NULL UNIQUE,
	password_hash VARCHAR(255) NOT NULL,
	role          VARCHAR(50)  NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	created_at    TIMESTAMPTZ  NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
)`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT     NOT NULL,
	email         TEXT     NOT NULL UNIQUE,
	password_hash TEXT     NOT NULL,
	role          TEXT     NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// EnsureSchema creates the users table when it does not exist yet. It does
// not alter an existing table.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := postgresSchema
	if db.DriverName() == DriverSQLite {
		schema = sqliteSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqldb: ensure schema: %w", err)
	}
	return nil
}
