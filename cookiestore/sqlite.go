// cookiestore/sqlite.go
package cookiestore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists cookies in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and initialises the schema.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cookiestore: opening database: %w", err)
	}
	// A single connection serialises writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cookies (
			name        TEXT PRIMARY KEY,
			value       TEXT NOT NULL,
			path        TEXT NOT NULL,
			updated_at  INTEGER NOT NULL
		);`,
	); err != nil {
		return fmt.Errorf("cookiestore: failed to init 'cookies' table schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(name string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM cookies WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrCookieNotFound
	}
	if err != nil {
		return "", fmt.Errorf("cookiestore: reading cookie %q: %w", name, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(name, value string, opts Options) error {
	_, err := s.db.Exec(`
		INSERT INTO cookies (name, value, path, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			value = excluded.value,
			path = excluded.path,
			updated_at = excluded.updated_at`,
		name, value, pathOrDefault(opts.Path), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cookiestore: writing cookie %q: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(name string) error {
	if _, err := s.db.Exec(`DELETE FROM cookies WHERE name = ?`, name); err != nil {
		return fmt.Errorf("cookiestore: removing cookie %q: %w", name, err)
	}
	return nil
}
