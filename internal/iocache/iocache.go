// Package iocache persists aggregated timings and audit history.
package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// timingsTable is the name of the table for caching per-URL timings.
const timingsTable = "bootup_timings_cache"

// CacheStoreManager manages the timings cache and the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	history      contract.HistoryStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wraps already opened stores. Either may be nil.
func NewCacheStoreManager(activity contract.CacheStore, history contract.HistoryStore) *CacheStoreManager {
	return &CacheStoreManager{activity: activity, history: history}
}

// GetActivityStore returns the timings CacheStore.
func (mgr *CacheStoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetHistoryStore returns the HistoryStore, or nil when history is disabled.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// InitStores initializes the global manager with the timings cache and the history store.
// An empty historyBackend disables history tracking.
func InitStores(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) error {
	var initErr error

	initOnce.Do(func() {
		activity, err := NewTimingsStore(timingsTable, cacheBackend, cacheConnStr)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize timings cache: %w", err)
			return
		}

		var history contract.HistoryStore
		if historyBackend != "" && historyBackend != schema.NoneBackend {
			history, err = NewHistoryStore(historyBackend, historyConnStr)
			if err != nil {
				_ = activity.Close()
				initErr = fmt.Errorf("failed to initialize history store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.activity = activity
		Manager.history = history
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.activity != nil {
			_ = Manager.activity.Close()
		}
		if Manager.history != nil {
			_ = Manager.history.Close()
		}
	})
}

// backendDriver names the database/sql driver of a backend and what to
// check when it cannot connect.
type backendDriver struct {
	name string
	hint string
}

var backendDrivers = map[schema.DatabaseBackend]backendDriver{
	schema.SQLiteBackend: {"sqlite", "Ensure the directory is writable."},
	schema.MySQLBackend: {"mysql",
		"Check that MySQL is running and the connection string looks like user:password@tcp(host:port)/dbname?parseTime=true"},
	schema.PostgreSQLBackend: {"pgx",
		"Check that PostgreSQL is running and the connection string looks like host=localhost port=5432 user=postgres dbname=bootup"},
}

// openDB opens and pings a database for the backend. SQLite uses defaultPath
// when connStr is empty and is limited to one connection.
func openDB(backend schema.DatabaseBackend, connStr, defaultPath string) (*sql.DB, error) {
	driver, ok := backendDrivers[backend]
	if !ok {
		return nil, fmt.Errorf("unsupported backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = defaultPath
	}

	db, err := sql.Open(driver.name, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		// A single writer avoids "database is locked"
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, driver.hint)
	}
	return db, nil
}

// removeSQLiteFile deletes a SQLite database file; a missing file is not an error.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}
