package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file" //nolint:blankimports // File source driver

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// DefaultMigrationsPath is resolved relative to the working directory.
const DefaultMigrationsPath = "migrations"

// Migrator applies the SQL files in a migrations directory.
type Migrator struct {
	m    *migrate.Migrate
	path string
	log  logger.Logger
}

// NewMigrator wraps db with a golang-migrate instance reading from dir.
// The caller keeps ownership of db.
func NewMigrator(db *sql.DB, dir string, log logger.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create postgres driver: %w", err)
	}

	if dir == "" {
		dir = DefaultMigrationsPath
	}
	if absPath, absErr := filepath.Abs(dir); absErr == nil {
		dir = absPath
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}

	return &Migrator{m: m, path: dir, log: log}, nil
}

// Up applies all pending migrations.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("No pending migrations", logger.String("migrations_path", mg.path))
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}
	mg.log.Info("Migrations applied", logger.String("migrations_path", mg.path))
	return nil
}

// Down rolls back steps migrations, at least one.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}
	if err := mg.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("No migrations to roll back", logger.String("migrations_path", mg.path))
			return nil
		}
		return fmt.Errorf("rollback migrations: %w", err)
	}
	mg.log.Info("Migrations rolled back",
		logger.String("migrations_path", mg.path),
		logger.Int("steps", steps),
	)
	return nil
}

// Version returns the applied version. A fresh database reports 0.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the version without running migrations, clearing a dirty flag.
func (mg *Migrator) Force(version int) error {
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force migration version: %w", err)
	}
	mg.log.Info("Migration version forced", logger.Int("version", version))
	return nil
}
