package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// OpenDatabase opens (creating if needed) the local SQLite key-value database
func OpenDatabase(path string) (*sqlx.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, &StorageError{Path: path, Op: "open", Err: err}
		}
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, &StorageError{Path: path, Op: "open", Err: err}
	}
	// One connection: a second one would see a different :memory: database
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("database ping failed: %w", err)}
	}

	if _, err := db.Exec(kvSchema); err != nil {
		db.Close()
		return nil, &StorageError{Path: path, Op: "open", Err: fmt.Errorf("failed to create kv table: %w", err)}
	}

	return db, nil
}

// KeyValuePair represents a row of the kv table
type KeyValuePair struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	UpdatedAt int64  `db:"updated_at"`
}

// GetUpdatedAt returns a time.Time from the row timestamp
func (p KeyValuePair) GetUpdatedAt() time.Time {
	return time.UnixMilli(p.UpdatedAt)
}

// GetValue reads a key; ok is false when the key is absent
func GetValue(db *sqlx.DB, key string) (value string, ok bool, err error) {
	err = db.Get(&value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	return value, true, nil
}

// SetValue upserts a key
func SetValue(db *sqlx.DB, key, value string) error {
	_, err := db.Exec(
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// DeleteValues removes keys; absent keys are ignored
func DeleteValues(db *sqlx.DB, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM kv WHERE key IN (?)", keys)
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}
	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// ListValues returns every row, ordered by key
func ListValues(db *sqlx.DB) ([]KeyValuePair, error) {
	var pairs []KeyValuePair
	if err := db.Select(&pairs, "SELECT key, value, updated_at FROM kv ORDER BY key"); err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return pairs, nil
}
