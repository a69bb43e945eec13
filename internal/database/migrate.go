package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mrmailer/mrmailer/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// NewMigrator builds a migrator for the embedded Postgres migrations.
// It owns its own connection pool; closing the migrator closes it.
func NewMigrator(cfg config.DatabaseConfig) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

func withMigrator(cfg config.DatabaseConfig, fn func(m *migrate.Migrate) error) error {
	m, err := NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()
	return fn(m)
}

// MigrateUp applies every pending migration
func MigrateUp(cfg config.DatabaseConfig) error {
	return withMigrator(cfg, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("migration failed: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back the last applied migration
func MigrateDown(cfg config.DatabaseConfig) error {
	return withMigrator(cfg, func(m *migrate.Migrate) error {
		if err := m.Steps(-1); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		return nil
	})
}

// MigrationVersion returns the applied schema version, 0 when none has been applied
func MigrationVersion(cfg config.DatabaseConfig) (version uint, dirty bool, err error) {
	err = withMigrator(cfg, func(m *migrate.Migrate) error {
		var verr error
		version, dirty, verr = m.Version()
		if errors.Is(verr, migrate.ErrNilVersion) {
			return nil
		}
		if verr != nil {
			return fmt.Errorf("failed to get version: %w", verr)
		}
		return nil
	})
	return version, dirty, err
}
