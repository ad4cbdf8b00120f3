package db

import (
	"database/sql"
	"fmt"
)

// column is a column added after the first release of the schema.
type column struct {
	table  string
	name   string
	sqlite string
	mysql  string
}

// migrations lists columns added to existing databases, in order. Lists
// created before packing history existed lack packed_at and history.
// Append new migrations at the end.
var migrations = []column{
	{"items", "packed_at", "DATETIME", "DATETIME NULL"},
	{"items", "history", "TEXT NOT NULL DEFAULT ''", "TEXT NOT NULL"},
}

// Migrate ensures the schema and adds any missing columns. It is idempotent.
func Migrate(db *sql.DB, driver string) error {
	if err := EnsureSchema(db, driver); err != nil {
		return err
	}

	for i, m := range migrations {
		exists, err := hasColumn(db, m.table, m.name)
		if err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
		if exists {
			continue
		}

		def := m.sqlite
		if driver == DriverMySQL {
			def = m.mysql
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", m.table, m.name, def)
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}

// hasColumn probes a column with an empty select, which works on every
// supported driver.
func hasColumn(db *sql.DB, table, name string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf("SELECT * FROM %s LIMIT 0", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if c == name {
			return true, nil
		}
	}
	return false, nil
}
