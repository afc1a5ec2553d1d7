package internal

import (
	"database/sql"
	"fmt"

	"github.com/futureaiitofficial/prosumeai-sub005/migrations"
	"github.com/pressly/goose/v3"
)

func useEmbeddedMigrations() error {
	goose.SetBaseFS(migrations.MigrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations applies the embedded billing schema migrations.
func RunMigrations(db *sql.DB) error {
	if err := useEmbeddedMigrations(); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion reports the schema version the database is at.
func MigrationVersion(db *sql.DB) (int64, error) {
	if err := useEmbeddedMigrations(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}
