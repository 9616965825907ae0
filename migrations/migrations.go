// Package migrations embeds the companies/jobs schema for every supported
// dialect and applies it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Skryldev/jobly/sqlbuild"
)

//go:embed postgres/*.sql sqlite3/*.sql mysql/*.sql
var files embed.FS

// New returns a Migrate bound to sqldb using the schema files for d.
//
// The returned instance borrows sqldb. Closing it closes the pool on some
// drivers, so callers sharing the pool must not call Close.
func New(sqldb *sql.DB, d sqlbuild.Dialect, logger *slog.Logger) (*migrate.Migrate, error) {
	src, err := iofs.New(files, d.Name)
	if err != nil {
		return nil, fmt.Errorf("jobly/migrations: source %q: %w", d.Name, err)
	}

	var drv database.Driver
	switch d.Name {
	case sqlbuild.Postgres.Name:
		drv, err = postgres.WithInstance(sqldb, &postgres.Config{})
	case sqlbuild.MySQL.Name:
		drv, err = mysql.WithInstance(sqldb, &mysql.Config{})
	case sqlbuild.SQLite.Name:
		drv, err = sqlite3.WithInstance(sqldb, &sqlite3.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", d.Name)
	}
	if err != nil {
		return nil, fmt.Errorf("jobly/migrations: database: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.Name, drv)
	if err != nil {
		return nil, fmt.Errorf("jobly/migrations: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	m.Log = &migrateLogger{logger: logger}
	return m, nil
}

// Up applies every pending migration. An already current schema is not an
// error.
func Up(sqldb *sql.DB, d sqlbuild.Dialect, logger *slog.Logger) error {
	m, err := New(sqldb, d, logger)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("jobly/migrations: up: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────

type migrateLogger struct {
	logger *slog.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

func (l *migrateLogger) Verbose() bool { return false }
