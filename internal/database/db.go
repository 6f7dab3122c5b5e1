// Package database opens the Postgres or SQLite connection pool and applies the schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/mdobak/go-xerrors"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

//go:embed schema/*.sql
var schemaFS embed.FS

var ErrUnknownDriver = xerrors.Message("Unknown database driver")

type Options struct {
	Driver       string
	DSN          string
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

func Open(ctx context.Context, opts Options, log *slog.Logger) (*sql.DB, error) {
	if opts.Driver != DriverPostgres && opts.Driver != DriverSQLite {
		return nil, xerrors.Newf("%w: %q", ErrUnknownDriver, opts.Driver)
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, xerrors.New(err)
	}

	db.SetMaxIdleConns(opts.MaxIdleConns)
	if opts.MaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.MaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, xerrors.New(err)
	}

	log.Info("Database connection established", "driver", opts.Driver)
	return db, nil
}

// Migrate applies the embedded schema for driver. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema, err := schemaFS.ReadFile(fmt.Sprintf("schema/%s.sql", driver))
	if err != nil {
		return xerrors.Newf("%w: %q", ErrUnknownDriver, driver)
	}

	if _, err := db.ExecContext(ctx, string(schema)); err != nil {
		return xerrors.Newf("apply %s schema: %w", driver, err)
	}

	return nil
}

// IsUniqueViolation reports whether err comes from a unique constraint in either driver.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}
