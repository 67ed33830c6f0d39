package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS app_state(
	namespace TEXT NOT NULL,
	key TEXT NOT NULL,
	value BLOB NOT NULL,
	updated_at INTEGER,
	PRIMARY KEY (namespace, key)
);`

// implements Store on a local SQLite file
type SQLiteStore struct {
	db        *sql.DB
	namespace string
}

func (s *SQLiteStore) Write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("value is not JSON encodable: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO app_state(namespace, key, value, updated_at) VALUES (?, ?, ?, ?) ON CONFLICT(namespace, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`, s.namespace, key, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write state key: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Read(ctx context.Context, key string) (any, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE namespace = ? AND key = ?`, s.namespace, key)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read state key: %w", err)
	}

	var v any
	if err := json.Unmarshal(blob, &v); err != nil {
		return nil, false, fmt.Errorf("failed to decode value for %q: %w", key, err)
	}

	return v, true, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE namespace = ? AND key = ?`, s.namespace, key)
	return err
}

func (s *SQLiteStore) ReadAll(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM app_state WHERE namespace = ?`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make(map[string]any)

	for rows.Next() {
		var (
			key  string
			blob []byte
		)

		if err := rows.Scan(&key, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}

		var v any
		if err := json.Unmarshal(blob, &v); err != nil {
			return nil, fmt.Errorf("failed to decode value for %q: %w", key, err)
		}
		out[key] = v
	}

	return out, rows.Err()
}

func (s *SQLiteStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM app_state WHERE namespace = ? ORDER BY key`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	keys := []string{}

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, key)
	}

	return keys, rows.Err()
}

// opens SQLite-backed stores on a single database file
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// every connection to :memory: opens its own empty database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create state table: %w", err)
	}

	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Open(_ context.Context, namespace string) (Store, error) {
	return &SQLiteStore{db: b.db, namespace: namespace}, nil
}

func (b *SQLiteBackend) Drop(ctx context.Context, namespace string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM app_state WHERE namespace = ?`, namespace)
	return err
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
