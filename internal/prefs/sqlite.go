package prefs

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS prefs (
	name TEXT PRIMARY KEY,
	val  TEXT NOT NULL
)`

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed creates) the preference database.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating preferences dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening preferences database: %w", err)
	}
	// A single connection keeps ":memory:" databases alive and serialises writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating preferences table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get implements Store. Query failures are logged and read as "not stored".
func (s *SQLite) Get(key string) (string, bool) {
	var v string
	err := s.db.QueryRow(`SELECT val FROM prefs WHERE name = ?`, key).Scan(&v)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("reading preference", "key", key, "error", err)
		}
		return "", false
	}
	return v, true
}

// Set implements Writable.
func (s *SQLite) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO prefs (name, val) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET val = excluded.val`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storing preference %s: %w", key, err)
	}
	return nil
}

// Keys implements Writable.
func (s *SQLite) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM prefs ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close implements Writable.
func (s *SQLite) Close() error {
	return s.db.Close()
}
