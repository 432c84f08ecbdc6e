// Package dbpkg provides helpers to make db initialization and testing easier.
package dbpkg

import (
	"database/sql"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"

	// Migrations are read from the local filesystem.
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Setup sets up connection with database.
func Setup(driver, source string) (*sql.DB, error) {
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate applies all pending up migrations found at migrationURL.
//
// It returns the schema version before and after the run.
func Migrate(db *sql.DB, migrationURL string) (uint, uint, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return 0, 0, err
	}

	m, err := migrate.NewWithDatabaseInstance(migrationURL, "postgres", driver)
	if err != nil {
		return 0, 0, err
	}

	before, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, 0, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return before, 0, err
	}

	after, _, err := m.Version()
	if err != nil {
		return before, 0, err
	}

	return before, after, nil
}
