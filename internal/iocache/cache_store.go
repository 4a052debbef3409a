package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
)

// timingsDialect holds the backend-specific SQL of the timings table.
// Every statement has a single %s for the quoted table name.
type timingsDialect struct {
	create string
	upsert string
	size   string
}

var timingsDialects = map[schema.DatabaseBackend]timingsDialect{
	schema.SQLiteBackend: {
		create: `CREATE TABLE IF NOT EXISTS %s (
			digest TEXT PRIMARY KEY,
			timings BLOB NOT NULL,
			agg_version INTEGER NOT NULL,
			stored_at INTEGER NOT NULL
		)`,
		upsert: `INSERT OR REPLACE INTO %s (digest, timings, agg_version, stored_at) VALUES (?, ?, ?, ?)`,
	},
	schema.MySQLBackend: {
		create: `CREATE TABLE IF NOT EXISTS %s (
			digest CHAR(64) PRIMARY KEY,
			timings LONGBLOB NOT NULL,
			agg_version INT NOT NULL,
			stored_at BIGINT NOT NULL
		)`,
		upsert: `INSERT INTO %s (digest, timings, agg_version, stored_at) VALUES (?, ?, ?, ?) AS incoming
			ON DUPLICATE KEY UPDATE timings = incoming.timings, agg_version = incoming.agg_version, stored_at = incoming.stored_at`,
	},
	schema.PostgreSQLBackend: {
		create: `CREATE TABLE IF NOT EXISTS %s (
			digest TEXT PRIMARY KEY,
			timings BYTEA NOT NULL,
			agg_version INTEGER NOT NULL,
			stored_at BIGINT NOT NULL
		)`,
		upsert: `INSERT INTO %s (digest, timings, agg_version, stored_at) VALUES (?, ?, ?, ?)
			ON CONFLICT (digest) DO UPDATE SET timings = EXCLUDED.timings, agg_version = EXCLUDED.agg_version, stored_at = EXCLUDED.stored_at`,
	},
}

// TimingsStore keeps encoded per-URL timings keyed by bundle digest.
// A store without a database is a disabled cache: every lookup misses.
type TimingsStore struct {
	db      *sql.DB
	table   string
	backend schema.DatabaseBackend
	dialect timingsDialect
	dbName  string
}

var _ contract.CacheStore = &TimingsStore{} // Compile-time check

// NewTimingsStore opens the timings table of the backend, creating it when missing.
func NewTimingsStore(table string, backend schema.DatabaseBackend, connStr string) (*TimingsStore, error) {
	if err := validateTableName(table); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		return &TimingsStore{table: table, backend: backend}, nil
	}

	dialect, ok := timingsDialects[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	db, err := openDB(backend, connStr, contract.GetCacheDBFilePath())
	if err != nil {
		return nil, err
	}

	ts := &TimingsStore{db: db, table: table, backend: backend, dialect: dialect}
	if _, err := db.Exec(ts.statement(dialect.create)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", table, err)
	}
	if backend == schema.MySQLBackend {
		if dsn, err := mysql.ParseDSN(connStr); err == nil {
			ts.dbName = dsn.DBName
		}
	}
	return ts, nil
}

// statement fills the quoted table name into a dialect statement.
func (ts *TimingsStore) statement(format string) string {
	return rebind(fmt.Sprintf(format, quoteTableName(ts.table, ts.backend)), ts.backend)
}

// Get returns the encoded timings stored for digest, or sql.ErrNoRows.
func (ts *TimingsStore) Get(digest string) ([]byte, int, int64, error) {
	if ts.db == nil {
		return nil, 0, 0, sql.ErrNoRows
	}

	var (
		timings  []byte
		version  int
		storedAt int64
	)
	row := ts.db.QueryRow(ts.statement(`SELECT timings, agg_version, stored_at FROM %s WHERE digest = ?`), digest)
	if err := row.Scan(&timings, &version, &storedAt); err != nil {
		return nil, 0, 0, err
	}
	return timings, version, storedAt, nil
}

// Set stores timings for digest, replacing an older entry.
func (ts *TimingsStore) Set(digest string, timings []byte, version int, storedAt int64) error {
	if ts.db == nil {
		return nil
	}
	_, err := ts.db.Exec(ts.statement(ts.dialect.upsert), digest, timings, version, storedAt)
	return err
}

// Close closes the underlying DB connection.
func (ts *TimingsStore) Close() error {
	if ts.db == nil {
		return nil
	}
	return ts.db.Close()
}

// GetStatus reports entry counts, the entry time range and the table size.
func (ts *TimingsStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(ts.backend), Connected: ts.db != nil}
	if ts.db == nil {
		return status, nil
	}

	var newest, oldest sql.NullInt64
	row := ts.db.QueryRow(ts.statement(`SELECT COUNT(*), MAX(stored_at), MIN(stored_at) FROM %s`))
	if err := row.Scan(&status.TotalEntries, &newest, &oldest); err != nil {
		return status, fmt.Errorf("failed to read cache entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}
	status.LastEntryTime = time.Unix(newest.Int64, 0)
	status.OldestEntryTime = time.Unix(oldest.Int64, 0)
	status.TableSizeBytes = ts.tableSize(status.TotalEntries)
	return status, nil
}

// tableSize asks the backend for the on-disk size, falling back to a
// per-entry estimate when the backend cannot say.
func (ts *TimingsStore) tableSize(entries int) int64 {
	var (
		size int64
		err  error
	)
	switch ts.backend {
	case schema.SQLiteBackend:
		err = ts.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size)
	case schema.MySQLBackend:
		if ts.dbName == "" {
			return int64(entries) * 1000
		}
		err = ts.db.QueryRow(
			"SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			ts.dbName, ts.table).Scan(&size)
	case schema.PostgreSQLBackend:
		err = ts.db.QueryRow("SELECT pg_total_relation_size($1)", ts.table).Scan(&size)
	}
	if err != nil || size == 0 {
		return int64(entries) * 1000
	}
	return size
}
