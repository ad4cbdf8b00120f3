package db

import (
	"database/sql"
	"fmt"
)

// sqliteSchema is the full SQLite schema. Item ids come from AUTOINCREMENT
// so they are never reused, not even after an overwrite.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS items (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    owner     TEXT NOT NULL,
    name      TEXT NOT NULL,
    category  TEXT NOT NULL DEFAULT '',
    packed    BOOLEAN NOT NULL DEFAULT 0,
    deleted   BOOLEAN NOT NULL DEFAULT 0,
    notes     TEXT NOT NULL DEFAULT '',
    packed_at DATETIME,
    history   TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner)`,
	`CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`,
}

// mysqlSchema mirrors sqliteSchema for MySQL.
var mysqlSchema = []string{
	"CREATE TABLE IF NOT EXISTS items (" +
		"id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY," +
		"owner VARCHAR(191) NOT NULL," +
		"name TEXT NOT NULL," +
		"category VARCHAR(191) NOT NULL DEFAULT ''," +
		"packed BOOLEAN NOT NULL DEFAULT FALSE," +
		"deleted BOOLEAN NOT NULL DEFAULT FALSE," +
		"notes TEXT NOT NULL," +
		"packed_at DATETIME NULL," +
		"history TEXT NOT NULL," +
		"INDEX idx_items_owner (owner)" +
		") DEFAULT CHARSET=utf8mb4",
	"CREATE TABLE IF NOT EXISTS settings (" +
		"`key` VARCHAR(191) NOT NULL PRIMARY KEY," +
		"value TEXT NOT NULL" +
		") DEFAULT CHARSET=utf8mb4",
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB, driver string) error {
	var stmts []string
	switch driver {
	case DriverSQLite:
		stmts = sqliteSchema
	case DriverMySQL:
		stmts = mysqlSchema
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
