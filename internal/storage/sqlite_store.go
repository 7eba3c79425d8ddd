package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// SQLiteStore persists entries in the kv_entries table.
type SQLiteStore struct {
	db *DB
}

// OpenSQLite opens the store at dbPath.
func OpenSQLite(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := Open(dbPath, logger)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.db.Path()
}

func (s *SQLiteStore) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRow(ctx,
		`SELECT value_json FROM kv_entries WHERE scope = ? AND key = ?`,
		scope, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return []byte(value), true, nil
}

func (s *SQLiteStore) Put(ctx context.Context, scope, key string, value []byte) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO kv_entries (scope, key, value_json, updated_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(scope, key) DO UPDATE SET value_json = excluded.value_json, updated_at = excluded.updated_at`,
			scope, key, string(value), time.Now().UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", key, err)
		}
		return nil
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, scope, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM kv_entries WHERE scope = ? AND key = ?`, scope, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
