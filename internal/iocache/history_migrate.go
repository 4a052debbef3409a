package iocache

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationsTable is the bookkeeping table golang-migrate maintains.
const migrationsTable = "schema_migrations"

// MigrateHistory runs database migrations for the history store.
// - If targetVersion < 0, it migrates to the latest version.
// - If targetVersion == 0, it rolls back all migrations (to initial state).
// - If targetVersion > 0, it migrates to the specified version.
func MigrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for NoneBackend")
	}

	db, err := openDB(backend, connStr, contract.GetHistoryDBFilePath())
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return withMigrator(db, backend, func(m *migrate.Migrate) error {
		return applyMigration(m, targetVersion)
	})
}

// migrateUp brings an open history database to the latest schema.
func migrateUp(db *sql.DB, backend schema.DatabaseBackend) error {
	return withMigrator(db, backend, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to latest version: %w", err)
		}
		return nil
	})
}

// withMigrator builds a migrate instance over db and the embedded migrations
// of the backend. The database itself is left open for the caller.
func withMigrator(db *sql.DB, backend schema.DatabaseBackend, fn func(m *migrate.Migrate) error) error {
	ctx := context.Background()

	var driver database.Driver
	var release func()
	var err error

	switch backend {
	case schema.SQLiteBackend:
		// Closing this driver would close db, so it is never closed here.
		driver, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
		if err != nil {
			return fmt.Errorf("failed to create SQLite migrate driver: %w", err)
		}
		release = func() {}

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		conn, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("failed to reserve connection: %w", err)
		}
		if backend == schema.MySQLBackend {
			driver, err = mysql.WithConnection(ctx, conn, &mysql.Config{MigrationsTable: migrationsTable})
		} else {
			driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{MigrationsTable: migrationsTable})
		}
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
		}
		release = func() { _ = driver.Close() }

	default:
		return fmt.Errorf("unsupported backend: %s", backend)
	}
	defer release()

	migrationFS, err := fs.Sub(migrationsFS, "migrations/"+string(backend))
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}
	sourceDriver, err := iofs.New(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "bootup", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return fn(m)
}

// applyMigration moves m to targetVersion and reports what happened.
func applyMigration(m *migrate.Migrate, targetVersion int) error {
	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", currentVersion)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to latest version: %w", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migration needed. Database is already at the latest version.")
		} else {
			newVersion, _, _ := m.Version()
			fmt.Printf("Successfully migrated from version %d to version %d\n", currentVersion, newVersion)
		}

	case targetVersion == 0:
		err = m.Down()
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to roll back to version 0: %w", err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("No migration needed. Database is already at version 0")
		} else {
			fmt.Printf("Successfully rolled back from version %d to version 0\n", currentVersion)
		}

	default:
		err = m.Migrate(uint(targetVersion))
		if err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Printf("No migration needed. Database is already at version %d\n", targetVersion)
		} else {
			fmt.Printf("Successfully migrated from version %d to version %d\n", currentVersion, targetVersion)
		}
	}
	return nil
}
