package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/iliyamo/auth-rbac/internal/config"
)

// DB wraps a sql.DB together with the SQL dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Querier is satisfied by both *sql.DB and *sql.Tx so repositories can run
// the same statements inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open connects to the configured database and verifies the connection.
func Open(cfg config.DBConfig) (*DB, error) {
	dialect, err := ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := cfg.DSN
	if dsn == "" {
		dsn, err = buildDSN(dialect, cfg)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if dialect == SQLite {
		// one writer at a time; avoids "database is locked" under load
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

func buildDSN(d Dialect, cfg config.DBConfig) (string, error) {
	switch d {
	case MySQL:
		auth := cfg.User
		if cfg.Pass != "" {
			auth = fmt.Sprintf("%s:%s", cfg.User, cfg.Pass)
		}
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		// clientFoundRows=true -> RowsAffected counts matched rows, not changed ones
		return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			auth, cfg.Host, port, cfg.Name), nil
	case Postgres:
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Pass),
			Host:     net.JoinHostPort(cfg.Host, port),
			Path:     "/" + cfg.Name,
			RawQuery: "sslmode=disable",
		}
		return u.String(), nil
	case SQLite:
		if dir := filepath.Dir(cfg.Path); dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return "", fmt.Errorf("creating database directory: %w", err)
			}
		}
		return "file:" + cfg.Path + "?_busy_timeout=5000&_foreign_keys=on", nil
	}
	return "", fmt.Errorf("database: unsupported dialect %q", d)
}

// InTx runs fn inside a transaction.  The transaction is committed when fn
// returns nil and rolled back otherwise.
func (db *DB) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
