// Package prefs persists per-session viewer preferences in SQLite.
package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	session_id TEXT PRIMARY KEY,
	dark_mode  INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store is the preference persistence used by the selection service.
type Store interface {
	DarkMode(sessionID string) (bool, error)
	SetDarkMode(sessionID string, dark bool) error
	Delete(sessionID string) error
	Close() error
}

var _ Store = (*DB)(nil)

// DB is a SQLite-backed Store.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("prefs: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("prefs: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("prefs: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// DarkMode returns the stored theme flag. Unknown sessions default to light.
func (db *DB) DarkMode(sessionID string) (bool, error) {
	var dark bool
	err := db.conn.QueryRow(`SELECT dark_mode FROM preferences WHERE session_id = ?`, sessionID).Scan(&dark)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prefs: get dark mode: %w", err)
	}
	return dark, nil
}

func (db *DB) SetDarkMode(sessionID string, dark bool) error {
	_, err := db.conn.Exec(`
		INSERT INTO preferences (session_id, dark_mode, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			dark_mode  = excluded.dark_mode,
			updated_at = excluded.updated_at
	`, sessionID, dark, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("prefs: set dark mode: %w", err)
	}
	return nil
}

func (db *DB) Delete(sessionID string) error {
	if _, err := db.conn.Exec(`DELETE FROM preferences WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("prefs: delete: %w", err)
	}
	return nil
}
