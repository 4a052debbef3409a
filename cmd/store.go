package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/bootup/internal/contract"
	"github.com/huangsam/bootup/schema"
	"github.com/spf13/viper"
)

// storeTarget is a database the store subcommands operate on.
type storeTarget struct {
	name    string // "cache" or "history"
	backend schema.DatabaseBackend
	connStr string
}

// resolveStoreTarget reads <name>-backend and <name>-db-connect from viper.
// An unset backend resolves to fallback.
func resolveStoreTarget(name string, fallback schema.DatabaseBackend) (storeTarget, error) {
	if err := loadConfigFile(); err != nil {
		return storeTarget{}, err
	}

	t := storeTarget{
		name:    name,
		backend: fallback,
		connStr: viper.GetString(name + "-db-connect"),
	}
	if raw := strings.ToLower(viper.GetString(name + "-backend")); raw != "" {
		t.backend = schema.DatabaseBackend(raw)
	}
	if _, ok := schema.ValidDatabaseBackends[t.backend]; !ok {
		return storeTarget{}, fmt.Errorf("invalid %s backend '%s'. must be sqlite, mysql, postgresql, none", name, t.backend)
	}
	if err := contract.ValidateDatabaseConnectionString(t.backend, t.connStr); err != nil {
		return storeTarget{}, err
	}
	return t, nil
}

// sqliteFile is the file a SQLite target lives in. A SQLite connection
// string is a path and overrides the default location.
func (t storeTarget) sqliteFile(defaultPath string) string {
	if t.backend == schema.SQLiteBackend && t.connStr != "" {
		return t.connStr
	}
	return defaultPath
}
