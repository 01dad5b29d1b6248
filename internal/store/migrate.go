package store

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator builds a migrate instance over the embedded migration set
// and the store's own connection. Used by MigrateUp and cmd/migrate.
func (s *Store) Migrator() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	var drv database.Driver
	switch s.driver {
	case DriverSQLite:
		drv, err = migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	case DriverPostgres:
		drv, err = migratepgx.WithInstance(s.db, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("unsupported driver: %s", s.driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open migration target: %w", err)
	}

	return migrate.NewWithInstance("iofs", src, string(s.driver), drv)
}

// MigrateUp applies all pending migrations.
func (s *Store) MigrateUp() error {
	m, err := s.Migrator()
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
