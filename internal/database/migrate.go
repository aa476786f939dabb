package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Versioned migrations, named VERSION_name.up.sql and VERSION_name.down.sql.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// driverFunc wraps the pool in a golang-migrate database driver.
type driverFunc func(*sql.DB) (migratedb.Driver, error)

// mysqlDriver lets the driver split files on ';' so the DSN can keep
// multiStatements off.
func mysqlDriver(db *sql.DB) (migratedb.Driver, error) {
	return migratemysql.WithInstance(db, &migratemysql.Config{MultiStatementEnabled: true})
}

// Migrate applies every pending migration. An up-to-date schema is not an
// error. The migrator is never closed: closing it would close db.
func Migrate(db *sql.DB) error {
	return migrateUp(db, mysqlDriver)
}

func migrateUp(db *sql.DB, driver driverFunc) error {
	d, err := driver(db)
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", d)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}
