package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgconn"
	"github.com/mattn/go-sqlite3"
)

// Dialect names one of the supported SQL backends.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// ParseDialect maps a DB_DRIVER value to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(driver))) {
	case MySQL:
		return MySQL, nil
	case Postgres, "pgx":
		return Postgres, nil
	case SQLite, "sqlite":
		return SQLite, nil
	}
	return "", fmt.Errorf("database: unsupported driver %q", driver)
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return string(d)
}

// Rebind rewrites '?' placeholders into the dialect's bind syntax.  Queries
// are written with '?' everywhere; only Postgres needs $N.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// InsertID executes an INSERT and returns the generated primary key.
// Postgres has no LastInsertId, so the statement gets a RETURNING clause.
func (d Dialect) InsertID(ctx context.Context, q Querier, query string, args ...any) (int64, error) {
	if d == Postgres {
		var id int64
		if err := q.QueryRowContext(ctx, d.Rebind(query)+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := q.ExecContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsUniqueViolation reports whether err is a unique/primary key violation
// from any of the supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// InsertIgnore rebinds an INSERT so that rows hitting a unique constraint
// are skipped instead of failing.  A failed INSERT aborts the whole
// transaction on Postgres, so duplicates must never reach the server as
// errors.
func (d Dialect) InsertIgnore(query string) string {
	if d == MySQL {
		return "INSERT IGNORE" + strings.TrimPrefix(query, "INSERT")
	}
	return d.Rebind(query) + " ON CONFLICT DO NOTHING"
}

// Upsert rebinds an INSERT and appends the dialect's update-on-conflict
// clause.  conflict lists the unique key columns (MySQL infers them);
// update lists the columns overwritten from the new row.
func (d Dialect) Upsert(query string, conflict, update []string) string {
	set := make([]string, len(update))
	if d == MySQL {
		for i, c := range update {
			set[i] = c + "=VALUES(" + c + ")"
		}
		return query + " ON DUPLICATE KEY UPDATE " + strings.Join(set, ", ")
	}
	for i, c := range update {
		set[i] = c + "=excluded." + c
	}
	return d.Rebind(query) + " ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(set, ", ")
}
