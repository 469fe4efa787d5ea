// Package migration wraps golang-migrate with the project's logging and a
// dedicated version table so schema history stays separate from any other
// tooling touching the same database.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// migrationsTable keeps the dashboard's schema version out of the default
// schema_migrations table
const migrationsTable = "dasbor_schema_migrations"

// Migrator applies SQL migrations from a directory against postgres
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New creates a Migrator on top of an open database connection
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("init postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("init migrator: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations
func (mg *Migrator) Up() error {
	mg.log.Info("applying pending migrations")

	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("schema already up to date")
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}
	return mg.report("schema migrated")
}

// Down rolls back every applied migration
func (mg *Migrator) Down() error {
	mg.log.Info("rolling back all migrations")

	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("nothing to roll back")
			return nil
		}
		return fmt.Errorf("roll back migrations: %w", err)
	}

	mg.log.Info("schema rolled back to empty")
	return nil
}

// Steps applies n migrations; a negative n rolls back
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("applying migration steps", zap.Int("steps", n))

	if err := mg.m.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("schema already up to date")
			return nil
		}
		return fmt.Errorf("apply %d migration steps: %w", n, err)
	}
	return mg.report("schema migrated")
}

// GoTo migrates up or down to the given version
func (mg *Migrator) GoTo(version uint) error {
	mg.log.Info("migrating to version", zap.Uint("target_version", version))

	if err := mg.m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("already at target version")
			return nil
		}
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}

	mg.log.Info("schema migrated", zap.Uint("version", version))
	return nil
}

// Version returns the current schema version. A fresh database reports
// version 0 and no error.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records a version without running migrations. Only for recovering a
// dirty schema after a failed migration.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("forcing schema version", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}

	mg.log.Info("schema version forced", zap.Int("version", version))
	return nil
}

// Drop removes every object in the database, data included
func (mg *Migrator) Drop() error {
	mg.log.Warn("dropping all database objects")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop database objects: %w", err)
	}
	return nil
}

// Close releases the migration source and database handles
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return fmt.Errorf("close migration source: %w", srcErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

// report logs msg with the schema version reached
func (mg *Migrator) report(msg string) error {
	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	mg.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
