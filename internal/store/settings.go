package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/erazemk/paklijst/internal/db"
)

// SessionSecret retrieves the cookie signing secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses an insert-if-absent + re-SELECT to avoid a TOCTOU race on concurrent startup.
func SessionSecret(ctx context.Context, database *sql.DB, driver string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	insert := `INSERT OR IGNORE INTO settings (key, value) VALUES ('session_secret', ?)`
	query := `SELECT value FROM settings WHERE key = 'session_secret'`
	if driver == db.DriverMySQL {
		insert = "INSERT IGNORE INTO settings (`key`, value) VALUES ('session_secret', ?)"
		query = "SELECT value FROM settings WHERE `key` = 'session_secret'"
	}

	if _, err := database.ExecContext(ctx, insert, candidate); err != nil {
		return "", fmt.Errorf("storing session secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	if err := database.QueryRowContext(ctx, query).Scan(&secret); err != nil {
		return "", fmt.Errorf("querying session secret: %w", err)
	}

	return secret, nil
}
