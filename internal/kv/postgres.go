package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	createStateTableSQL = `
		CREATE TABLE IF NOT EXISTS app_state (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value JSONB NOT NULL,
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			PRIMARY KEY (namespace, key)
		);
	`

	upsertStateSQL = `
		INSERT INTO app_state (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	readStateSQL     = `SELECT value FROM app_state WHERE namespace = $1 AND key = $2`
	deleteStateSQL   = `DELETE FROM app_state WHERE namespace = $1 AND key = $2`
	readAllStateSQL  = `SELECT key, value FROM app_state WHERE namespace = $1`
	listStateKeysSQL = `SELECT key FROM app_state WHERE namespace = $1 ORDER BY key`
	dropNamespaceSQL = `DELETE FROM app_state WHERE namespace = $1`
)

// implements Store using PostgreSQL rows scoped to a namespace
type PostgresStore struct {
	db        *pgxpool.Pool
	namespace string
}

func (s *PostgresStore) Write(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("value is not JSON encodable: %w", err)
	}

	if _, err := s.db.Exec(ctx, upsertStateSQL, s.namespace, key, data); err != nil {
		return fmt.Errorf("failed to write state key: %w", err)
	}

	return nil
}

func (s *PostgresStore) Read(ctx context.Context, key string) (any, bool, error) {
	var data []byte

	err := s.db.QueryRow(ctx, readStateSQL, s.namespace, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to read state key: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("failed to decode value for %q: %w", key, err)
	}

	return v, true, nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.Exec(ctx, deleteStateSQL, s.namespace, key)
	return err
}

func (s *PostgresStore) ReadAll(ctx context.Context) (map[string]any, error) {
	rows, err := s.db.Query(ctx, readAllStateSQL, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	defer rows.Close()

	out := make(map[string]any)

	for rows.Next() {
		var (
			key  string
			data []byte
		)

		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}

		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to decode value for %q: %w", key, err)
		}
		out[key] = v
	}

	return out, rows.Err()
}

func (s *PostgresStore) ListKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, listStateKeysSQL, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}

	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect state keys: %w", err)
	}

	return keys, nil
}

// opens PostgreSQL-backed stores sharing one pool
type PostgresBackend struct {
	db *pgxpool.Pool
}

// connects to the database and creates the state table if it doesn't exist
func NewPostgresBackend(ctx context.Context, connString string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createStateTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create state table: %w", err)
	}

	return &PostgresBackend{db: pool}, nil
}

func (b *PostgresBackend) Open(_ context.Context, namespace string) (Store, error) {
	return &PostgresStore{db: b.db, namespace: namespace}, nil
}

func (b *PostgresBackend) Drop(ctx context.Context, namespace string) error {
	_, err := b.db.Exec(ctx, dropNamespaceSQL, namespace)
	return err
}

func (b *PostgresBackend) Close() error {
	b.db.Close()
	return nil
}
