package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	Path            string // SQLite database file
	DSN             string // postgres:// URL; overrides Path when set
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB bundles the pooled handle with the ent driver and the SQL dialect in use.
type DB struct {
	SQL     *sql.DB
	Driver  *entsql.Driver
	Dialect string
}

func (c Config) postgres() bool {
	dsn := strings.ToLower(c.DSN)
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

// Open connects to SQLite (default) or PostgreSQL and wraps the handle for ent's SQL builder.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driverName, dsn, dia := "sqlite", sqliteDSN(cfg.Path), dialect.SQLite
	if cfg.postgres() {
		driverName, dsn, dia = "pgx", cfg.DSN, dialect.Postgres
	} else if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("database path is required")
	}
	logger.Info("connecting to database", "dialect", dia, "target", redact(cfg))

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}

	if dia == dialect.SQLite {
		// one connection: SQLite has a single writer, and :memory: is per-connection
		db.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MaxConnLifetime > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	}

	if err := HealthCheck(ctx, db, cfg.DialTimeout, logger); err != nil {
		logger.Error("failed to connect to database", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database", "dialect", dia)
	return &DB{SQL: db, Driver: entsql.OpenDB(dia, db), Dialect: dia}, nil
}

// Close closes the database connections gracefully
func Close(db *DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("closing database connections")
	if err := db.Driver.Close(); err != nil {
		logger.Error("failed to close database", "error", err)
		return
	}
	logger.Debug("database connections closed")
}

// HealthCheck pings the database to catch path/DSN issues early.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.PingContext(ctx); err != nil {
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)"
}

func redact(cfg Config) string {
	if !cfg.postgres() {
		return cfg.Path
	}
	if at := strings.LastIndex(cfg.DSN, "@"); at >= 0 {
		return "postgres://***" + cfg.DSN[at:]
	}
	return "postgres://"
}
