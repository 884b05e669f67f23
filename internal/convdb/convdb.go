// Package convdb persists file conversion products in a SQLite database,
// so conversions that shell out to external tools or parse large files
// survive across invocations. It implements the cache.Store interface; a
// product is only served back while the file's size and mtime still
// match.
package convdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// nowUTC returns the current UTC time as an ISO 8601 string.
func nowUTC() string { return time.Now().UTC().Format(time.RFC3339) }

// mtimeKey renders a modification time for exact matching.
func mtimeKey(mtime time.Time) string {
	return mtime.UTC().Format(time.RFC3339Nano)
}

// Store is a SQLite-backed conversion cache.
type Store struct {
	db *sql.DB
}

// Open opens or creates the cache database at path, creating the parent
// directory if needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var v int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.Exec("INSERT INTO schema_version(version) VALUES(?)", schemaVersion); err != nil {
			return fmt.Errorf("set schema version: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	}

	if v != schemaVersion {
		// Stale cache layout: throw the contents away and start over.
		if _, err := s.db.Exec("DROP TABLE conversions"); err != nil {
			return fmt.Errorf("drop stale cache: %w", err)
		}
		if _, err := s.db.Exec(schema); err != nil {
			return fmt.Errorf("recreate schema: %w", err)
		}
		if _, err := s.db.Exec("UPDATE schema_version SET version = ?", schemaVersion); err != nil {
			return fmt.Errorf("update schema version: %w", err)
		}
	}
	return nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached product for the file state, or ok=false when
// there is none or the file has changed since it was stored.
func (s *Store) Get(name, key string, size int64, mtime time.Time) (string, bool, error) {
	var (
		storedSize  int64
		storedMtime string
		value       []byte
	)
	err := s.db.QueryRow(
		"SELECT file_size, file_mtime, value FROM conversions WHERE file_name = ? AND conv_key = ?",
		name, key,
	).Scan(&storedSize, &storedMtime, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query conversion: %w", err)
	}
	if storedSize != size || storedMtime != mtimeKey(mtime) {
		return "", false, nil
	}
	return string(value), true, nil
}

// Put stores a product for the file state, replacing any previous one for
// the same file and key.
func (s *Store) Put(name, key string, size int64, mtime time.Time, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO conversions(file_name, conv_key, file_size, file_mtime, value, created_at) VALUES(?, ?, ?, ?, ?, ?)",
		name, key, size, mtimeKey(mtime), []byte(value), nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("store conversion: %w", err)
	}
	return nil
}

// Prune deletes products stored before the cutoff and returns how many
// were removed. Stored timestamps are RFC 3339 UTC, so string order is
// time order.
func (s *Store) Prune(olderThan time.Time) (int, error) {
	res, err := s.db.Exec(
		"DELETE FROM conversions WHERE created_at < ?",
		olderThan.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune conversions: %w", err)
	}
	return int(n), nil
}

// Len returns the number of cached products.
func (s *Store) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM conversions").Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return n, nil
}
